package models

import (
	"time"

	"hospital-equipment-tracker/internal/maintenance"
)

// PPMEquipment represents the ppm_equipment table.
// Status is a cache of the derived status used for filtering in SQL; reads
// always recompute it from the quarter columns.
type PPMEquipment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Serial           string     `gorm:"uniqueIndex;not null;size:100" json:"serial"`
	Department       string     `gorm:"size:100;index" json:"department"`
	Name             string     `gorm:"size:150" json:"name"`
	Model            string     `gorm:"size:100" json:"model"`
	Manufacturer     string     `gorm:"size:100" json:"manufacturer"`
	LogNumber        string     `gorm:"size:50" json:"log_number"`
	InstallationDate *time.Time `json:"installation_date"`
	WarrantyEnd      *time.Time `json:"warranty_end"`
	Q1Date           *time.Time `json:"q1_date"`
	Q1Engineer       string     `gorm:"size:100" json:"q1_engineer"`
	Q2Date           *time.Time `json:"q2_date"`
	Q2Engineer       string     `gorm:"size:100" json:"q2_engineer"`
	Q3Date           *time.Time `json:"q3_date"`
	Q3Engineer       string     `gorm:"size:100" json:"q3_engineer"`
	Q4Date           *time.Time `json:"q4_date"`
	Q4Engineer       string     `gorm:"size:100" json:"q4_engineer"`
	Status           string     `gorm:"size:20;index" json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for PPMEquipment model
func (PPMEquipment) TableName() string {
	return "ppm_equipment"
}

// QuarterDates returns Q1..Q4 target dates as DD/MM/YYYY strings
func (e *PPMEquipment) QuarterDates() [maintenance.QuarterCount]string {
	return [maintenance.QuarterCount]string{
		maintenance.FormatDatePtr(e.Q1Date),
		maintenance.FormatDatePtr(e.Q2Date),
		maintenance.FormatDatePtr(e.Q3Date),
		maintenance.FormatDatePtr(e.Q4Date),
	}
}

// Engineers returns the engineer recorded for each quarter
func (e *PPMEquipment) Engineers() [maintenance.QuarterCount]string {
	return [maintenance.QuarterCount]string{e.Q1Engineer, e.Q2Engineer, e.Q3Engineer, e.Q4Engineer}
}

// SetSchedule stores the quarter dates and engineers
func (e *PPMEquipment) SetSchedule(dates, engineers [maintenance.QuarterCount]string) {
	e.Q1Date = maintenance.ParseDatePtr(dates[0])
	e.Q2Date = maintenance.ParseDatePtr(dates[1])
	e.Q3Date = maintenance.ParseDatePtr(dates[2])
	e.Q4Date = maintenance.ParseDatePtr(dates[3])
	e.Q1Engineer = engineers[0]
	e.Q2Engineer = engineers[1]
	e.Q3Engineer = engineers[2]
	e.Q4Engineer = engineers[3]
}

// Evaluate derives per-quarter and overall status as of today
func (e *PPMEquipment) Evaluate(today time.Time) maintenance.Evaluation {
	return maintenance.Evaluate(e.QuarterDates(), e.Engineers(), today)
}

// OCMEquipment represents the ocm_equipment table
type OCMEquipment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	No               int        `json:"no"`
	Serial           string     `gorm:"uniqueIndex;not null;size:100" json:"serial"`
	Department       string     `gorm:"size:100;index" json:"department"`
	Name             string     `gorm:"size:150" json:"name"`
	Model            string     `gorm:"size:100" json:"model"`
	Manufacturer     string     `gorm:"size:100" json:"manufacturer"`
	LogNumber        string     `gorm:"size:50" json:"log_number"`
	InstallationDate *time.Time `json:"installation_date"`
	WarrantyEnd      *time.Time `json:"warranty_end"`
	ServiceDate      *time.Time `json:"service_date"`
	Engineer         string     `gorm:"size:100" json:"engineer"`
	NextMaintenance  *time.Time `json:"next_maintenance"`
	Status           string     `gorm:"size:20;index" json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for OCMEquipment model
func (OCMEquipment) TableName() string {
	return "ocm_equipment"
}

// ComputeStatus derives the OCM status as of today
func (e *OCMEquipment) ComputeStatus(today time.Time) maintenance.Status {
	return maintenance.ComputeOCMStatus(e.ServiceDate, e.NextMaintenance, today)
}
