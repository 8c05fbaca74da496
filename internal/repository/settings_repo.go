package repository

import (
	"errors"

	"hospital-equipment-tracker/internal/models"

	"gorm.io/gorm"
)

const settingsRowID = 1

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get loads the settings row. ok is false when nothing has been saved yet.
func (r *SettingsRepository) Get() (setting *models.Setting, ok bool, err error) {
	var s models.Setting
	err = r.db.First(&s, settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

// Save writes the single settings row
func (r *SettingsRepository) Save(s *models.Setting) error {
	s.ID = settingsRowID
	return r.db.Save(s).Error
}
