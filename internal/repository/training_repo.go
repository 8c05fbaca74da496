package repository

import (
	"hospital-equipment-tracker/internal/models"

	"gorm.io/gorm"
)

var trainingSortColumns = map[string]string{
	"name":              "name",
	"employee_id":       "employee_id",
	"department":        "department",
	"next_due_date":     "next_due_date",
	"last_trained_date": "last_trained_date",
}

type TrainingRepository struct {
	db *gorm.DB
}

func NewTrainingRepo(db *gorm.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

// List returns one page of training records with their assignments
func (r *TrainingRepository) List(q ListQuery) ([]models.TrainingRecord, int64, error) {
	var total int64
	base := applyFilters(r.db.Model(&models.TrainingRecord{}), q, []string{"name", "employee_id", "department"}).
		Session(&gorm.Session{})
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.TrainingRecord
	err := applyPage(applyOrder(base, q, trainingSortColumns, "name"), q).
		Preload("Assignments").
		Find(&records).Error
	return records, total, err
}

func (r *TrainingRepository) All() ([]models.TrainingRecord, error) {
	var records []models.TrainingRecord
	err := r.db.Preload("Assignments").Order("name ASC").Find(&records).Error
	return records, err
}

func (r *TrainingRepository) FindByID(id uint) (*models.TrainingRecord, error) {
	var record models.TrainingRecord
	if err := r.db.Preload("Assignments").First(&record, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &record, nil
}

func (r *TrainingRepository) FindByEmployeeID(employeeID string) (*models.TrainingRecord, error) {
	var record models.TrainingRecord
	if err := r.db.Preload("Assignments").Where("employee_id = ?", employeeID).First(&record).Error; err != nil {
		return nil, notFound(err)
	}
	return &record, nil
}

// Create inserts the record together with its assignments
func (r *TrainingRepository) Create(record *models.TrainingRecord) error {
	return r.db.Create(record).Error
}

// Update saves the record and replaces its assignments in one transaction
func (r *TrainingRepository) Update(record *models.TrainingRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("training_record_id = ?", record.ID).Delete(&models.TrainingAssignment{}).Error; err != nil {
			return err
		}
		for i := range record.Assignments {
			record.Assignments[i].ID = 0
			record.Assignments[i].TrainingRecordID = record.ID
		}
		if err := tx.Omit("Assignments").Save(record).Error; err != nil {
			return err
		}
		if len(record.Assignments) == 0 {
			return nil
		}
		return tx.Create(&record.Assignments).Error
	})
}

// Delete removes the record and its assignments
func (r *TrainingRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("training_record_id = ?", id).Delete(&models.TrainingAssignment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.TrainingRecord{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
