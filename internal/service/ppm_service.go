package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hospital-equipment-tracker/internal/maintenance"
	"hospital-equipment-tracker/internal/models"
	"hospital-equipment-tracker/internal/repository"

	"go.uber.org/zap"
)

// PPMInput is the create/update payload for planned preventive maintenance
// equipment. Only Q1 is taken from the caller; Q2..Q4 are always derived.
type PPMInput struct {
	Serial           string `json:"serial" validate:"required,max=100"`
	Department       string `json:"department" validate:"required,max=100"`
	Name             string `json:"name" validate:"max=150"`
	Model            string `json:"model" validate:"required,max=100"`
	Manufacturer     string `json:"manufacturer" validate:"max=100"`
	LogNumber        string `json:"log_number" validate:"max=50"`
	InstallationDate string `json:"installation_date" validate:"omitempty,ddmmyyyy"`
	WarrantyEnd      string `json:"warranty_end" validate:"omitempty,ddmmyyyy"`
	Q1Date           string `json:"q1_date" validate:"omitempty,ddmmyyyy"`
	Q1Engineer       string `json:"q1_engineer" validate:"max=100"`
	Q2Engineer       string `json:"q2_engineer" validate:"max=100"`
	Q3Engineer       string `json:"q3_engineer" validate:"max=100"`
	Q4Engineer       string `json:"q4_engineer" validate:"max=100"`
}

// Engineers returns the engineer of each quarter in order
func (in PPMInput) Engineers() [maintenance.QuarterCount]string {
	return [maintenance.QuarterCount]string{in.Q1Engineer, in.Q2Engineer, in.Q3Engineer, in.Q4Engineer}
}

func (in *PPMInput) normalize() {
	for _, f := range []*string{
		&in.Serial, &in.Department, &in.Name, &in.Model, &in.Manufacturer, &in.LogNumber,
		&in.InstallationDate, &in.WarrantyEnd, &in.Q1Date,
		&in.Q1Engineer, &in.Q2Engineer, &in.Q3Engineer, &in.Q4Engineer,
	} {
		*f = strings.TrimSpace(*f)
	}
}

func (in PPMInput) apply(item *models.PPMEquipment) {
	item.Serial = in.Serial
	item.Department = in.Department
	item.Name = in.Name
	item.Model = in.Model
	item.Manufacturer = in.Manufacturer
	item.LogNumber = in.LogNumber
	item.InstallationDate = maintenance.ParseDatePtr(in.InstallationDate)
	item.WarrantyEnd = maintenance.ParseDatePtr(in.WarrantyEnd)
	item.SetSchedule(maintenance.ChainQuarters(in.Q1Date), in.Engineers())
}

// PPMView is a PPM record with freshly derived quarter and overall status
type PPMView struct {
	ID               uint                                                    `json:"id"`
	Serial           string                                                  `json:"serial"`
	Department       string                                                  `json:"department"`
	Name             string                                                  `json:"name"`
	Model            string                                                  `json:"model"`
	Manufacturer     string                                                  `json:"manufacturer"`
	LogNumber        string                                                  `json:"log_number"`
	InstallationDate string                                                  `json:"installation_date"`
	WarrantyEnd      string                                                  `json:"warranty_end"`
	Quarters         [maintenance.QuarterCount]maintenance.QuarterEvaluation `json:"quarters"`
	Status           maintenance.Status                                      `json:"status"`
	UpdatedAt        time.Time                                               `json:"updated_at"`
}

func newPPMView(item *models.PPMEquipment, today time.Time) PPMView {
	ev := item.Evaluate(today)
	return PPMView{
		ID:               item.ID,
		Serial:           item.Serial,
		Department:       item.Department,
		Name:             item.Name,
		Model:            item.Model,
		Manufacturer:     item.Manufacturer,
		LogNumber:        item.LogNumber,
		InstallationDate: maintenance.FormatDatePtr(item.InstallationDate),
		WarrantyEnd:      maintenance.FormatDatePtr(item.WarrantyEnd),
		Quarters:         ev.Quarters,
		Status:           ev.Status,
		UpdatedAt:        item.UpdatedAt,
	}
}

// ListParams extends the repository query with a status filter. The filter is
// applied to the status computed for today, not the cached column.
type ListParams struct {
	repository.ListQuery
	Status string
}

type PPMService struct {
	ppmRepo *repository.PPMRepository
	audit   auditor
	log     *zap.Logger
	clock
}

func NewPPMService(ppmRepo *repository.PPMRepository, auditRepo *repository.AuditRepository, log *zap.Logger) *PPMService {
	return &PPMService{
		ppmRepo: ppmRepo,
		audit:   auditor{repo: auditRepo, log: log},
		log:     log,
	}
}

// Create stores a new PPM record with its quarter schedule
func (s *PPMService) Create(in PPMInput, userID uint) (*PPMView, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	exists, err := s.ppmRepo.ExistsBySerial(in.Serial)
	if err != nil {
		return nil, fmt.Errorf("failed to check serial: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSerial
	}

	today := s.today()
	item := &models.PPMEquipment{}
	in.apply(item)
	item.Status = string(item.Evaluate(today).Status)

	if err := s.ppmRepo.Create(item); err != nil {
		return nil, fmt.Errorf("failed to create PPM equipment: %w", err)
	}

	s.audit.record(userID, "ppm_create", "Created PPM equipment %s (%s)", item.Serial, item.Department)

	view := newPPMView(item, today)
	return &view, nil
}

// Update replaces the record identified by serial. The serial itself is immutable.
func (s *PPMService) Update(serial string, in PPMInput, userID uint) (*PPMView, error) {
	in.normalize()
	if in.Serial == "" {
		in.Serial = serial
	}
	if in.Serial != serial {
		return nil, ErrSerialImmutable
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	item, err := s.ppmRepo.FindBySerial(serial)
	if err != nil {
		return nil, err
	}

	today := s.today()
	in.apply(item)
	item.Status = string(item.Evaluate(today).Status)

	if err := s.ppmRepo.Update(item); err != nil {
		return nil, fmt.Errorf("failed to update PPM equipment: %w", err)
	}

	s.audit.record(userID, "ppm_update", "Updated PPM equipment %s", item.Serial)

	view := newPPMView(item, today)
	return &view, nil
}

// Upsert creates the record or updates it when the serial already exists
func (s *PPMService) Upsert(in PPMInput, userID uint) (created bool, err error) {
	in.normalize()
	exists, err := s.ppmRepo.ExistsBySerial(in.Serial)
	if err != nil {
		return false, fmt.Errorf("failed to check serial: %w", err)
	}
	if exists {
		_, err = s.Update(in.Serial, in, userID)
		return false, err
	}
	_, err = s.Create(in, userID)
	return err == nil, err
}

func (s *PPMService) Get(serial string) (*PPMView, error) {
	item, err := s.ppmRepo.FindBySerial(serial)
	if err != nil {
		return nil, err
	}
	view := newPPMView(item, s.today())
	return &view, nil
}

// List returns a page of PPM records, optionally filtered by derived status
func (s *PPMService) List(p ListParams) (*Page[PPMView], error) {
	today := s.today()

	if strings.TrimSpace(p.Status) == "" {
		items, total, err := s.ppmRepo.List(p.ListQuery)
		if err != nil {
			return nil, fmt.Errorf("failed to list PPM equipment: %w", err)
		}
		views := make([]PPMView, 0, len(items))
		for i := range items {
			views = append(views, newPPMView(&items[i], today))
		}
		return newPage(views, total, p.ListQuery), nil
	}

	status, ok := maintenance.ParseStatus(p.Status)
	if !ok {
		return nil, invalidInput("unknown status %q", p.Status)
	}

	all := p.ListQuery
	all.Page, all.PerPage = 0, 0
	items, _, err := s.ppmRepo.List(all)
	if err != nil {
		return nil, fmt.Errorf("failed to list PPM equipment: %w", err)
	}

	var views []PPMView
	for i := range items {
		view := newPPMView(&items[i], today)
		if view.Status == status {
			views = append(views, view)
		}
	}
	return newPage(paginate(views, p.ListQuery), int64(len(views)), p.ListQuery), nil
}

// All returns every PPM record with derived status
func (s *PPMService) All() ([]PPMView, error) {
	items, err := s.ppmRepo.All()
	if err != nil {
		return nil, err
	}
	today := s.today()
	views := make([]PPMView, 0, len(items))
	for i := range items {
		views = append(views, newPPMView(&items[i], today))
	}
	return views, nil
}

func (s *PPMService) Delete(serial string, userID uint) error {
	if err := s.ppmRepo.DeleteBySerial(serial); err != nil {
		return err
	}
	s.audit.record(userID, "ppm_delete", "Deleted PPM equipment %s", serial)
	return nil
}

func (s *PPMService) BulkDelete(serials []string, userID uint) (int64, error) {
	n, err := s.ppmRepo.DeleteBySerials(serials)
	if err != nil {
		return 0, fmt.Errorf("failed to delete PPM equipment: %w", err)
	}
	s.audit.record(userID, "ppm_bulk_delete", "Deleted %d PPM equipment records", n)
	return n, nil
}

// Preview computes the schedule a form submission would produce without saving it
func (s *PPMService) Preview(in PPMInput) maintenance.Evaluation {
	in.normalize()
	return maintenance.Schedule(in.Q1Date, in.Engineers(), s.today())
}

// RefreshStatuses rewrites the cached status of every record whose derived
// status has changed and returns the number of rows updated
func (s *PPMService) RefreshStatuses(ctx context.Context) (int, error) {
	items, err := s.ppmRepo.All()
	if err != nil {
		return 0, fmt.Errorf("failed to load PPM equipment: %w", err)
	}

	today := s.today()
	changed := 0
	for i := range items {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		status := string(items[i].Evaluate(today).Status)
		if status == items[i].Status {
			continue
		}
		if err := s.ppmRepo.UpdateStatus(items[i].ID, status); err != nil {
			return changed, fmt.Errorf("failed to update status of %s: %w", items[i].Serial, err)
		}
		changed++
	}

	if changed > 0 {
		s.log.Info("PPM statuses refreshed", zap.Int("changed", changed))
	}
	return changed, nil
}
