package repository

import (
	"hospital-equipment-tracker/internal/models"

	"gorm.io/gorm"
)

var equipmentSearchColumns = []string{"serial", "name", "model", "department", "manufacturer"}

var equipmentSortColumns = map[string]string{
	"serial":       "serial",
	"name":         "name",
	"model":        "model",
	"department":   "department",
	"manufacturer": "manufacturer",
	"status":       "status",
	"created_at":   "created_at",
}

type PPMRepository struct {
	db *gorm.DB
}

func NewPPMRepo(db *gorm.DB) *PPMRepository {
	return &PPMRepository{db: db}
}

// List returns one page of PPM equipment and the total number of matches
func (r *PPMRepository) List(q ListQuery) ([]models.PPMEquipment, int64, error) {
	var total int64
	base := applyFilters(r.db.Model(&models.PPMEquipment{}), q, equipmentSearchColumns).Session(&gorm.Session{})
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.PPMEquipment
	err := applyPage(applyOrder(base, q, equipmentSortColumns, "serial"), q).Find(&items).Error
	return items, total, err
}

// All returns every PPM record ordered by serial
func (r *PPMRepository) All() ([]models.PPMEquipment, error) {
	var items []models.PPMEquipment
	err := r.db.Order("serial ASC").Find(&items).Error
	return items, err
}

// FindBySerial retrieves a PPM record by its serial number
func (r *PPMRepository) FindBySerial(serial string) (*models.PPMEquipment, error) {
	var item models.PPMEquipment
	if err := r.db.Where("serial = ?", serial).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// ExistsBySerial reports whether a record with the serial exists
func (r *PPMRepository) ExistsBySerial(serial string) (bool, error) {
	var count int64
	err := r.db.Model(&models.PPMEquipment{}).Where("serial = ?", serial).Count(&count).Error
	return count > 0, err
}

func (r *PPMRepository) Create(item *models.PPMEquipment) error {
	return r.db.Create(item).Error
}

func (r *PPMRepository) Update(item *models.PPMEquipment) error {
	return r.db.Save(item).Error
}

// UpdateStatus rewrites only the cached status column
func (r *PPMRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.PPMEquipment{}).Where("id = ?", id).Update("status", status).Error
}

// DeleteBySerial removes a record, returning ErrNotFound when nothing matched
func (r *PPMRepository) DeleteBySerial(serial string) error {
	res := r.db.Where("serial = ?", serial).Delete(&models.PPMEquipment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBySerials removes every listed serial and returns how many rows went
func (r *PPMRepository) DeleteBySerials(serials []string) (int64, error) {
	if len(serials) == 0 {
		return 0, nil
	}
	res := r.db.Where("serial IN ?", serials).Delete(&models.PPMEquipment{})
	return res.RowsAffected, res.Error
}
