package service

import (
	"errors"
	"fmt"
	"strings"

	"hospital-equipment-tracker/internal/maintenance"
	"hospital-equipment-tracker/internal/models"
	"hospital-equipment-tracker/internal/repository"

	"go.uber.org/zap"
)

type AssignmentInput struct {
	Machine     string `json:"machine" validate:"required,max=150"`
	Trainer     string `json:"trainer" validate:"max=100"`
	TrainedDate string `json:"trained_date" validate:"omitempty,ddmmyyyy"`
}

type TrainingInput struct {
	EmployeeID      string            `json:"employee_id" validate:"required,max=50"`
	Name            string            `json:"name" validate:"required,max=150"`
	Department      string            `json:"department" validate:"max=100"`
	LastTrainedDate string            `json:"last_trained_date" validate:"omitempty,ddmmyyyy"`
	NextDueDate     string            `json:"next_due_date" validate:"omitempty,ddmmyyyy"`
	Assignments     []AssignmentInput `json:"assignments" validate:"dive"`
}

func (in *TrainingInput) normalize() {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Name = strings.TrimSpace(in.Name)
	in.Department = strings.TrimSpace(in.Department)
	in.LastTrainedDate = strings.TrimSpace(in.LastTrainedDate)
	in.NextDueDate = strings.TrimSpace(in.NextDueDate)
	for i := range in.Assignments {
		a := &in.Assignments[i]
		a.Machine = strings.TrimSpace(a.Machine)
		a.Trainer = strings.TrimSpace(a.Trainer)
		a.TrainedDate = strings.TrimSpace(a.TrainedDate)
	}
}

func (in TrainingInput) apply(record *models.TrainingRecord) {
	record.EmployeeID = in.EmployeeID
	record.Name = in.Name
	record.Department = in.Department
	record.LastTrainedDate = maintenance.ParseDatePtr(in.LastTrainedDate)
	record.NextDueDate = maintenance.ParseDatePtr(in.NextDueDate)
	record.Assignments = make([]models.TrainingAssignment, 0, len(in.Assignments))
	for _, a := range in.Assignments {
		record.Assignments = append(record.Assignments, models.TrainingAssignment{
			Machine:     a.Machine,
			Trainer:     a.Trainer,
			TrainedDate: maintenance.ParseDatePtr(a.TrainedDate),
		})
	}
}

type AssignmentView struct {
	Machine     string `json:"machine"`
	Trainer     string `json:"trainer"`
	TrainedDate string `json:"trained_date"`
}

type TrainingView struct {
	ID              uint             `json:"id"`
	EmployeeID      string           `json:"employee_id"`
	Name            string           `json:"name"`
	Department      string           `json:"department"`
	LastTrainedDate string           `json:"last_trained_date"`
	NextDueDate     string           `json:"next_due_date"`
	Assignments     []AssignmentView `json:"assignments"`
}

func newTrainingView(r *models.TrainingRecord) TrainingView {
	view := TrainingView{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		Name:            r.Name,
		Department:      r.Department,
		LastTrainedDate: maintenance.FormatDatePtr(r.LastTrainedDate),
		NextDueDate:     maintenance.FormatDatePtr(r.NextDueDate),
		Assignments:     make([]AssignmentView, 0, len(r.Assignments)),
	}
	for _, a := range r.Assignments {
		view.Assignments = append(view.Assignments, AssignmentView{
			Machine:     a.Machine,
			Trainer:     a.Trainer,
			TrainedDate: maintenance.FormatDatePtr(a.TrainedDate),
		})
	}
	return view
}

type TrainingService struct {
	trainingRepo *repository.TrainingRepository
	audit        auditor
}

func NewTrainingService(trainingRepo *repository.TrainingRepository, auditRepo *repository.AuditRepository, log *zap.Logger) *TrainingService {
	return &TrainingService{
		trainingRepo: trainingRepo,
		audit:        auditor{repo: auditRepo, log: log},
	}
}

func (s *TrainingService) Create(in TrainingInput, userID uint) (*TrainingView, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.trainingRepo.FindByEmployeeID(in.EmployeeID); err == nil {
		return nil, invalidInput("employee %s already has a training record", in.EmployeeID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	record := &models.TrainingRecord{}
	in.apply(record)
	if err := s.trainingRepo.Create(record); err != nil {
		return nil, fmt.Errorf("failed to create training record: %w", err)
	}

	s.audit.record(userID, "training_create", "Created training record for %s (%s)", record.Name, record.EmployeeID)

	view := newTrainingView(record)
	return &view, nil
}

func (s *TrainingService) Update(id uint, in TrainingInput, userID uint) (*TrainingView, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	record, err := s.trainingRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if record.EmployeeID != in.EmployeeID {
		other, err := s.trainingRepo.FindByEmployeeID(in.EmployeeID)
		if err == nil && other.ID != id {
			return nil, invalidInput("employee %s already has a training record", in.EmployeeID)
		}
	}

	in.apply(record)
	if err := s.trainingRepo.Update(record); err != nil {
		return nil, fmt.Errorf("failed to update training record: %w", err)
	}

	s.audit.record(userID, "training_update", "Updated training record %d", id)

	view := newTrainingView(record)
	return &view, nil
}

// Upsert matches records by employee ID
func (s *TrainingService) Upsert(in TrainingInput, userID uint) (created bool, err error) {
	in.normalize()
	existing, err := s.trainingRepo.FindByEmployeeID(in.EmployeeID)
	if err == nil {
		_, err = s.Update(existing.ID, in, userID)
		return false, err
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	_, err = s.Create(in, userID)
	return err == nil, err
}

func (s *TrainingService) Get(id uint) (*TrainingView, error) {
	record, err := s.trainingRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	view := newTrainingView(record)
	return &view, nil
}

func (s *TrainingService) List(q repository.ListQuery) (*Page[TrainingView], error) {
	records, total, err := s.trainingRepo.List(q)
	if err != nil {
		return nil, fmt.Errorf("failed to list training records: %w", err)
	}
	views := make([]TrainingView, 0, len(records))
	for i := range records {
		views = append(views, newTrainingView(&records[i]))
	}
	return newPage(views, total, q), nil
}

func (s *TrainingService) All() ([]TrainingView, error) {
	records, err := s.trainingRepo.All()
	if err != nil {
		return nil, err
	}
	views := make([]TrainingView, 0, len(records))
	for i := range records {
		views = append(views, newTrainingView(&records[i]))
	}
	return views, nil
}

func (s *TrainingService) Delete(id uint, userID uint) error {
	if err := s.trainingRepo.Delete(id); err != nil {
		return err
	}
	s.audit.record(userID, "training_delete", "Deleted training record %d", id)
	return nil
}
