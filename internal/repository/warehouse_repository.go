package repository

import (
	"errors"
	"time"

	"github.com/cangchu-next/internal/models"

	"gorm.io/gorm"
)

// WarehouseRepository 仓库数据访问接口
type WarehouseRepository interface {
	Create(warehouse *models.Warehouse) error
	GetByID(id uint) (*models.Warehouse, error)
	GetByCode(code string) (*models.Warehouse, error)
	GetDefault() (*models.Warehouse, error)
	List(filter WarehouseListFilter) ([]models.Warehouse, int64, error)
	Update(id uint, updates map[string]interface{}) error
	ClearDefault(exceptID uint) error
	CreateLocation(location *models.WarehouseLocation) error
	GetLocationByID(id uint) (*models.WarehouseLocation, error)
	GetLocationByCode(warehouseID uint, code string) (*models.WarehouseLocation, error)
	ListLocations(warehouseID uint) ([]models.WarehouseLocation, error)
	SetDefaultLocation(warehouseID, locationID uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormWarehouseRepository
}

// GormWarehouseRepository GORM 实现
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewWarehouseRepository 创建仓库仓储
func NewWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWarehouseRepository) WithTx(tx *gorm.DB) *GormWarehouseRepository {
	if tx == nil {
		return r
	}
	return &GormWarehouseRepository{db: tx}
}

// Transaction 执行事务
func (r *GormWarehouseRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建仓库
func (r *GormWarehouseRepository) Create(warehouse *models.Warehouse) error {
	return r.db.Create(warehouse).Error
}

// GetByID 根据 ID 获取仓库
func (r *GormWarehouseRepository) GetByID(id uint) (*models.Warehouse, error) {
	if id == 0 {
		return nil, nil
	}
	var warehouse models.Warehouse
	if err := r.db.First(&warehouse, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

// GetByCode 根据编码获取仓库
func (r *GormWarehouseRepository) GetByCode(code string) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := r.db.Where("code = ?", code).First(&warehouse).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

// GetDefault 获取默认仓库
func (r *GormWarehouseRepository) GetDefault() (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := r.db.Where("is_default = ?", true).Order("id asc").First(&warehouse).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

// List 仓库列表
func (r *GormWarehouseRepository) List(filter WarehouseListFilter) ([]models.Warehouse, int64, error) {
	query := r.db.Model(&models.Warehouse{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	query = applyKeywordSearch(query, filter.Search, "code", "name")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var warehouses []models.Warehouse
	if err := query.Order("is_default desc, id asc").Find(&warehouses).Error; err != nil {
		return nil, 0, err
	}
	return warehouses, total, nil
}

// Update 更新仓库字段
func (r *GormWarehouseRepository) Update(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Warehouse{}).Where("id = ?", id).Updates(updates).Error
}

// ClearDefault 取消除指定仓库外的默认标记
func (r *GormWarehouseRepository) ClearDefault(exceptID uint) error {
	return r.db.Model(&models.Warehouse{}).
		Where("is_default = ? AND id <> ?", true, exceptID).
		Updates(map[string]interface{}{"is_default": false, "updated_at": time.Now()}).Error
}

// CreateLocation 创建库位
func (r *GormWarehouseRepository) CreateLocation(location *models.WarehouseLocation) error {
	return r.db.Create(location).Error
}

// GetLocationByID 根据 ID 获取库位
func (r *GormWarehouseRepository) GetLocationByID(id uint) (*models.WarehouseLocation, error) {
	if id == 0 {
		return nil, nil
	}
	var location models.WarehouseLocation
	if err := r.db.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

// GetLocationByCode 根据仓内编码获取库位
func (r *GormWarehouseRepository) GetLocationByCode(warehouseID uint, code string) (*models.WarehouseLocation, error) {
	var location models.WarehouseLocation
	if err := r.db.Where("warehouse_id = ? AND code = ?", warehouseID, code).First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

// ListLocations 获取仓库下的库位
func (r *GormWarehouseRepository) ListLocations(warehouseID uint) ([]models.WarehouseLocation, error) {
	var locations []models.WarehouseLocation
	if err := r.db.Where("warehouse_id = ?", warehouseID).Order("is_default desc, id asc").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// SetDefaultLocation 设置仓内默认库位
func (r *GormWarehouseRepository) SetDefaultLocation(warehouseID, locationID uint) error {
	now := time.Now()
	if err := r.db.Model(&models.WarehouseLocation{}).
		Where("warehouse_id = ? AND id <> ? AND is_default = ?", warehouseID, locationID, true).
		Updates(map[string]interface{}{"is_default": false, "updated_at": now}).Error; err != nil {
		return err
	}
	return r.db.Model(&models.WarehouseLocation{}).
		Where("warehouse_id = ? AND id = ?", warehouseID, locationID).
		Updates(map[string]interface{}{"is_default": true, "updated_at": now}).Error
}
