package repository

import (
	"hospital-equipment-tracker/internal/models"

	"gorm.io/gorm"
)

type OCMRepository struct {
	db *gorm.DB
}

func NewOCMRepo(db *gorm.DB) *OCMRepository {
	return &OCMRepository{db: db}
}

// List returns one page of OCM equipment and the total number of matches
func (r *OCMRepository) List(q ListQuery) ([]models.OCMEquipment, int64, error) {
	var total int64
	base := applyFilters(r.db.Model(&models.OCMEquipment{}), q, equipmentSearchColumns).Session(&gorm.Session{})
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.OCMEquipment
	err := applyPage(applyOrder(base, q, equipmentSortColumns, "serial"), q).Find(&items).Error
	return items, total, err
}

// All returns every OCM record ordered by serial
func (r *OCMRepository) All() ([]models.OCMEquipment, error) {
	var items []models.OCMEquipment
	err := r.db.Order("serial ASC").Find(&items).Error
	return items, err
}

// FindBySerial retrieves an OCM record by its serial number
func (r *OCMRepository) FindBySerial(serial string) (*models.OCMEquipment, error) {
	var item models.OCMEquipment
	if err := r.db.Where("serial = ?", serial).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *OCMRepository) ExistsBySerial(serial string) (bool, error) {
	var count int64
	err := r.db.Model(&models.OCMEquipment{}).Where("serial = ?", serial).Count(&count).Error
	return count > 0, err
}

// NextNo returns the next running number for a new OCM record
func (r *OCMRepository) NextNo() (int, error) {
	var max *int
	if err := r.db.Model(&models.OCMEquipment{}).Select("MAX(no)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

func (r *OCMRepository) Create(item *models.OCMEquipment) error {
	return r.db.Create(item).Error
}

func (r *OCMRepository) Update(item *models.OCMEquipment) error {
	return r.db.Save(item).Error
}

func (r *OCMRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.OCMEquipment{}).Where("id = ?", id).Update("status", status).Error
}

func (r *OCMRepository) DeleteBySerial(serial string) error {
	res := r.db.Where("serial = ?", serial).Delete(&models.OCMEquipment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OCMRepository) DeleteBySerials(serials []string) (int64, error) {
	if len(serials) == 0 {
		return 0, nil
	}
	res := r.db.Where("serial IN ?", serials).Delete(&models.OCMEquipment{})
	return res.RowsAffected, res.Error
}
