package service

import (
	"strings"
	"time"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"

	"gorm.io/gorm"
)

// WarehouseService 仓库与库位服务
type WarehouseService struct {
	repo        repository.WarehouseRepository
	defaultCode string
	defaultName string
}

// NewWarehouseService 创建仓库服务
func NewWarehouseService(repo repository.WarehouseRepository, stockCfg *config.StockConfig) *WarehouseService {
	code := constants.DefaultWarehouseCode
	name := constants.DefaultWarehouseName
	if stockCfg != nil {
		if trimmed := strings.TrimSpace(stockCfg.DefaultWarehouseCode); trimmed != "" {
			code = strings.ToUpper(trimmed)
		}
		if trimmed := strings.TrimSpace(stockCfg.DefaultWarehouseName); trimmed != "" {
			name = trimmed
		}
	}
	return &WarehouseService{
		repo:        repo,
		defaultCode: code,
		defaultName: name,
	}
}

// CreateWarehouseInput 创建仓库输入
type CreateWarehouseInput struct {
	Code      string
	Name      string
	IsDefault bool
}

// CreateLocationInput 创建库位输入
type CreateLocationInput struct {
	Code      string
	Name      string
	IsDefault bool
}

// DefaultWarehouse 获取默认仓库，不存在时按配置自动创建
func (s *WarehouseService) DefaultWarehouse() (*models.Warehouse, error) {
	warehouse, err := s.repo.GetDefault()
	if err != nil {
		return nil, err
	}
	if warehouse != nil {
		return warehouse, nil
	}

	now := time.Now()
	existing, err := s.repo.GetByCode(s.defaultCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.repo.Update(existing.ID, map[string]interface{}{
			"is_default": true,
			"is_active":  true,
			"updated_at": now,
		}); err != nil {
			return nil, err
		}
		existing.IsDefault = true
		existing.IsActive = true
		logger.Infow("default_warehouse_restored", "warehouse_id", existing.ID, "code", existing.Code)
		return existing, nil
	}

	warehouse = &models.Warehouse{
		Code:      s.defaultCode,
		Name:      s.defaultName,
		IsDefault: true,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(warehouse); err != nil {
		created, queryErr := s.repo.GetByCode(s.defaultCode)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, err
	}
	logger.Infow("default_warehouse_provisioned", "warehouse_id", warehouse.ID, "code", warehouse.Code)
	return warehouse, nil
}

// ResolveWarehouse 解析仓库，id 为 0 时返回默认仓库
func (s *WarehouseService) ResolveWarehouse(id uint) (*models.Warehouse, error) {
	if id == 0 {
		return s.DefaultWarehouse()
	}
	return s.Get(id)
}

// Get 获取仓库
func (s *WarehouseService) Get(id uint) (*models.Warehouse, error) {
	warehouse, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, ErrWarehouseNotFound
	}
	return warehouse, nil
}

// List 仓库列表
func (s *WarehouseService) List(filter repository.WarehouseListFilter) ([]models.Warehouse, int64, error) {
	return s.repo.List(filter)
}

// Create 创建仓库
func (s *WarehouseService) Create(input CreateWarehouseInput) (*models.Warehouse, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, validationError("warehouse code and name are required")
	}
	existing, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrWarehouseCodeExists
	}

	now := time.Now()
	warehouse := &models.Warehouse{
		Code:      code,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(warehouse); err != nil {
			return err
		}
		if !input.IsDefault {
			return nil
		}
		if err := repo.ClearDefault(warehouse.ID); err != nil {
			return err
		}
		warehouse.IsDefault = true
		return repo.Update(warehouse.ID, map[string]interface{}{"is_default": true, "updated_at": now})
	}); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// SetDefault 设置默认仓库，同一事务内取消旧默认
func (s *WarehouseService) SetDefault(id uint) (*models.Warehouse, error) {
	var result *models.Warehouse
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		warehouse, err := repo.GetByID(id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return ErrWarehouseNotFound
		}
		if !warehouse.IsActive {
			return ErrWarehouseInactive
		}
		if err := repo.ClearDefault(warehouse.ID); err != nil {
			return err
		}
		if err := repo.Update(warehouse.ID, map[string]interface{}{"is_default": true, "updated_at": time.Now()}); err != nil {
			return err
		}
		warehouse.IsDefault = true
		result = warehouse
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("default_warehouse_changed", "warehouse_id", result.ID, "code", result.Code)
	return result, nil
}

// Deactivate 停用仓库，默认仓库不可停用
func (s *WarehouseService) Deactivate(id uint) error {
	warehouse, err := s.Get(id)
	if err != nil {
		return err
	}
	if warehouse.IsDefault {
		return ErrWarehouseIsDefault
	}
	if !warehouse.IsActive {
		return nil
	}
	return s.repo.Update(warehouse.ID, map[string]interface{}{"is_active": false, "updated_at": time.Now()})
}

// CreateLocation 创建库位
func (s *WarehouseService) CreateLocation(warehouseID uint, input CreateLocationInput) (*models.WarehouseLocation, error) {
	warehouse, err := s.Get(warehouseID)
	if err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, validationError("location code is required")
	}
	existing, err := s.repo.GetLocationByCode(warehouse.ID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLocationCodeExists
	}

	now := time.Now()
	location := &models.WarehouseLocation{
		WarehouseID: warehouse.ID,
		Code:        code,
		Name:        strings.TrimSpace(input.Name),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateLocation(location); err != nil {
			return err
		}
		if !input.IsDefault {
			return nil
		}
		location.IsDefault = true
		return repo.SetDefaultLocation(warehouse.ID, location.ID)
	}); err != nil {
		return nil, err
	}
	return location, nil
}

// ListLocations 获取仓库库位
func (s *WarehouseService) ListLocations(warehouseID uint) ([]models.WarehouseLocation, error) {
	if _, err := s.Get(warehouseID); err != nil {
		return nil, err
	}
	return s.repo.ListLocations(warehouseID)
}

// SetDefaultLocation 设置仓内默认库位
func (s *WarehouseService) SetDefaultLocation(warehouseID, locationID uint) (*models.WarehouseLocation, error) {
	location, err := s.GetLocation(warehouseID, locationID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).SetDefaultLocation(warehouseID, locationID)
	}); err != nil {
		return nil, err
	}
	location.IsDefault = true
	return location, nil
}

// GetLocation 获取库位并校验归属仓库
func (s *WarehouseService) GetLocation(warehouseID, locationID uint) (*models.WarehouseLocation, error) {
	location, err := s.repo.GetLocationByID(locationID)
	if err != nil {
		return nil, err
	}
	if location == nil || location.WarehouseID != warehouseID {
		return nil, ErrLocationNotFound
	}
	return location, nil
}
