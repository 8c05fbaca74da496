package models

import "time"

// TrainingRecord represents the training_records table
type TrainingRecord struct {
	ID              uint                 `gorm:"primaryKey" json:"id"`
	EmployeeID      string               `gorm:"uniqueIndex;not null;size:50" json:"employee_id"`
	Name            string               `gorm:"not null;size:150" json:"name"`
	Department      string               `gorm:"size:100;index" json:"department"`
	LastTrainedDate *time.Time           `json:"last_trained_date"`
	NextDueDate     *time.Time           `json:"next_due_date"`
	Assignments     []TrainingAssignment `gorm:"foreignKey:TrainingRecordID" json:"assignments"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// TableName specifies the table name for TrainingRecord model
func (TrainingRecord) TableName() string {
	return "training_records"
}

// TrainingAssignment links a trainee to a machine and the trainer who covered it
type TrainingAssignment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TrainingRecordID uint       `gorm:"not null;index" json:"training_record_id"`
	Machine          string     `gorm:"not null;size:150" json:"machine"`
	Trainer          string     `gorm:"size:100" json:"trainer"`
	TrainedDate      *time.Time `json:"trained_date"`
}

// TableName specifies the table name for TrainingAssignment model
func (TrainingAssignment) TableName() string {
	return "training_assignments"
}
