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

// OCMInput is the create/update payload for on-call maintenance equipment
type OCMInput struct {
	// No is the register number; zero allocates the next free one
	No               int    `json:"no" validate:"min=0"`
	Serial           string `json:"serial" validate:"required,max=100"`
	Department       string `json:"department" validate:"required,max=100"`
	Name             string `json:"name" validate:"max=150"`
	Model            string `json:"model" validate:"required,max=100"`
	Manufacturer     string `json:"manufacturer" validate:"max=100"`
	LogNumber        string `json:"log_number" validate:"max=50"`
	InstallationDate string `json:"installation_date" validate:"omitempty,ddmmyyyy"`
	WarrantyEnd      string `json:"warranty_end" validate:"omitempty,ddmmyyyy"`
	ServiceDate      string `json:"service_date" validate:"omitempty,ddmmyyyy"`
	Engineer         string `json:"engineer" validate:"max=100"`
	NextMaintenance  string `json:"next_maintenance" validate:"omitempty,ddmmyyyy"`
}

func (in *OCMInput) normalize() {
	for _, f := range []*string{
		&in.Serial, &in.Department, &in.Name, &in.Model, &in.Manufacturer, &in.LogNumber,
		&in.InstallationDate, &in.WarrantyEnd, &in.ServiceDate, &in.Engineer, &in.NextMaintenance,
	} {
		*f = strings.TrimSpace(*f)
	}
}

func (in OCMInput) apply(item *models.OCMEquipment) {
	item.Serial = in.Serial
	item.Department = in.Department
	item.Name = in.Name
	item.Model = in.Model
	item.Manufacturer = in.Manufacturer
	item.LogNumber = in.LogNumber
	item.InstallationDate = maintenance.ParseDatePtr(in.InstallationDate)
	item.WarrantyEnd = maintenance.ParseDatePtr(in.WarrantyEnd)
	item.ServiceDate = maintenance.ParseDatePtr(in.ServiceDate)
	item.Engineer = in.Engineer
	item.NextMaintenance = maintenance.ParseDatePtr(in.NextMaintenance)
}

// OCMView is an OCM record with freshly derived status
type OCMView struct {
	ID               uint               `json:"id"`
	No               int                `json:"no"`
	Serial           string             `json:"serial"`
	Department       string             `json:"department"`
	Name             string             `json:"name"`
	Model            string             `json:"model"`
	Manufacturer     string             `json:"manufacturer"`
	LogNumber        string             `json:"log_number"`
	InstallationDate string             `json:"installation_date"`
	WarrantyEnd      string             `json:"warranty_end"`
	ServiceDate      string             `json:"service_date"`
	Engineer         string             `json:"engineer"`
	NextMaintenance  string             `json:"next_maintenance"`
	Status           maintenance.Status `json:"status"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func newOCMView(item *models.OCMEquipment, today time.Time) OCMView {
	return OCMView{
		ID:               item.ID,
		No:               item.No,
		Serial:           item.Serial,
		Department:       item.Department,
		Name:             item.Name,
		Model:            item.Model,
		Manufacturer:     item.Manufacturer,
		LogNumber:        item.LogNumber,
		InstallationDate: maintenance.FormatDatePtr(item.InstallationDate),
		WarrantyEnd:      maintenance.FormatDatePtr(item.WarrantyEnd),
		ServiceDate:      maintenance.FormatDatePtr(item.ServiceDate),
		Engineer:         item.Engineer,
		NextMaintenance:  maintenance.FormatDatePtr(item.NextMaintenance),
		Status:           item.ComputeStatus(today),
		UpdatedAt:        item.UpdatedAt,
	}
}

type OCMService struct {
	ocmRepo *repository.OCMRepository
	audit   auditor
	log     *zap.Logger
	clock
}

func NewOCMService(ocmRepo *repository.OCMRepository, auditRepo *repository.AuditRepository, log *zap.Logger) *OCMService {
	return &OCMService{
		ocmRepo: ocmRepo,
		audit:   auditor{repo: auditRepo, log: log},
		log:     log,
	}
}

func (s *OCMService) Create(in OCMInput, userID uint) (*OCMView, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	exists, err := s.ocmRepo.ExistsBySerial(in.Serial)
	if err != nil {
		return nil, fmt.Errorf("failed to check serial: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSerial
	}

	no := in.No
	if no == 0 {
		if no, err = s.ocmRepo.NextNo(); err != nil {
			return nil, fmt.Errorf("failed to allocate number: %w", err)
		}
	}

	today := s.today()
	item := &models.OCMEquipment{No: no}
	in.apply(item)
	item.Status = string(item.ComputeStatus(today))

	if err := s.ocmRepo.Create(item); err != nil {
		return nil, fmt.Errorf("failed to create OCM equipment: %w", err)
	}

	s.audit.record(userID, "ocm_create", "Created OCM equipment %s (%s)", item.Serial, item.Department)

	view := newOCMView(item, today)
	return &view, nil
}

func (s *OCMService) Update(serial string, in OCMInput, userID uint) (*OCMView, error) {
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

	item, err := s.ocmRepo.FindBySerial(serial)
	if err != nil {
		return nil, err
	}

	today := s.today()
	in.apply(item)
	if in.No > 0 {
		item.No = in.No
	}
	item.Status = string(item.ComputeStatus(today))

	if err := s.ocmRepo.Update(item); err != nil {
		return nil, fmt.Errorf("failed to update OCM equipment: %w", err)
	}

	s.audit.record(userID, "ocm_update", "Updated OCM equipment %s", item.Serial)

	view := newOCMView(item, today)
	return &view, nil
}

func (s *OCMService) Upsert(in OCMInput, userID uint) (created bool, err error) {
	in.normalize()
	exists, err := s.ocmRepo.ExistsBySerial(in.Serial)
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

func (s *OCMService) Get(serial string) (*OCMView, error) {
	item, err := s.ocmRepo.FindBySerial(serial)
	if err != nil {
		return nil, err
	}
	view := newOCMView(item, s.today())
	return &view, nil
}

func (s *OCMService) List(p ListParams) (*Page[OCMView], error) {
	today := s.today()

	if strings.TrimSpace(p.Status) == "" {
		items, total, err := s.ocmRepo.List(p.ListQuery)
		if err != nil {
			return nil, fmt.Errorf("failed to list OCM equipment: %w", err)
		}
		views := make([]OCMView, 0, len(items))
		for i := range items {
			views = append(views, newOCMView(&items[i], today))
		}
		return newPage(views, total, p.ListQuery), nil
	}

	status, ok := maintenance.ParseStatus(p.Status)
	if !ok {
		return nil, invalidInput("unknown status %q", p.Status)
	}

	all := p.ListQuery
	all.Page, all.PerPage = 0, 0
	items, _, err := s.ocmRepo.List(all)
	if err != nil {
		return nil, fmt.Errorf("failed to list OCM equipment: %w", err)
	}

	var views []OCMView
	for i := range items {
		view := newOCMView(&items[i], today)
		if view.Status == status {
			views = append(views, view)
		}
	}
	return newPage(paginate(views, p.ListQuery), int64(len(views)), p.ListQuery), nil
}

func (s *OCMService) All() ([]OCMView, error) {
	items, err := s.ocmRepo.All()
	if err != nil {
		return nil, err
	}
	today := s.today()
	views := make([]OCMView, 0, len(items))
	for i := range items {
		views = append(views, newOCMView(&items[i], today))
	}
	return views, nil
}

func (s *OCMService) Delete(serial string, userID uint) error {
	if err := s.ocmRepo.DeleteBySerial(serial); err != nil {
		return err
	}
	s.audit.record(userID, "ocm_delete", "Deleted OCM equipment %s", serial)
	return nil
}

func (s *OCMService) BulkDelete(serials []string, userID uint) (int64, error) {
	n, err := s.ocmRepo.DeleteBySerials(serials)
	if err != nil {
		return 0, fmt.Errorf("failed to delete OCM equipment: %w", err)
	}
	s.audit.record(userID, "ocm_bulk_delete", "Deleted %d OCM equipment records", n)
	return n, nil
}

// RefreshStatuses rewrites cached statuses that no longer match today
func (s *OCMService) RefreshStatuses(ctx context.Context) (int, error) {
	items, err := s.ocmRepo.All()
	if err != nil {
		return 0, fmt.Errorf("failed to load OCM equipment: %w", err)
	}

	today := s.today()
	changed := 0
	for i := range items {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		status := string(items[i].ComputeStatus(today))
		if status == items[i].Status {
			continue
		}
		if err := s.ocmRepo.UpdateStatus(items[i].ID, status); err != nil {
			return changed, fmt.Errorf("failed to update status of %s: %w", items[i].Serial, err)
		}
		changed++
	}

	if changed > 0 {
		s.log.Info("OCM statuses refreshed", zap.Int("changed", changed))
	}
	return changed, nil
}
