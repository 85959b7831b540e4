package repository

import (
	"errors"

	"github.com/cangchu-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockDocumentRepository 库存单据数据访问接口
type StockDocumentRepository interface {
	Create(document *models.StockDocument, lines []models.StockDocumentLine) error
	GetByID(id uint) (*models.StockDocument, error)
	GetByIDForUpdate(id uint) (*models.StockDocument, error)
	FindByReference(refType, refID, docType string) (*models.StockDocument, error)
	List(filter StockDocumentListFilter) ([]models.StockDocument, int64, error)
	Update(id uint, updates map[string]interface{}) error
	ReplaceLines(documentID uint, lines []models.StockDocumentLine) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormStockDocumentRepository
}

// GormStockDocumentRepository GORM 实现
type GormStockDocumentRepository struct {
	db *gorm.DB
}

// NewStockDocumentRepository 创建库存单据仓储
func NewStockDocumentRepository(db *gorm.DB) *GormStockDocumentRepository {
	return &GormStockDocumentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockDocumentRepository) WithTx(tx *gorm.DB) *GormStockDocumentRepository {
	if tx == nil {
		return r
	}
	return &GormStockDocumentRepository{db: tx}
}

// Transaction 执行事务
func (r *GormStockDocumentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建单据与单据行
func (r *GormStockDocumentRepository) Create(document *models.StockDocument, lines []models.StockDocumentLine) error {
	if err := r.db.Omit("Lines").Create(document).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].DocumentID = document.ID
	}
	if len(lines) > 0 {
		if err := r.db.Create(&lines).Error; err != nil {
			return err
		}
	}
	document.Lines = lines
	return nil
}

func (r *GormStockDocumentRepository) withLines(query *gorm.DB) *gorm.DB {
	return query.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	})
}

// GetByID 根据 ID 获取单据（含单据行）
func (r *GormStockDocumentRepository) GetByID(id uint) (*models.StockDocument, error) {
	if id == 0 {
		return nil, nil
	}
	var document models.StockDocument
	if err := r.withLines(r.db).First(&document, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &document, nil
}

// GetByIDForUpdate 加锁获取单据（含单据行）
func (r *GormStockDocumentRepository) GetByIDForUpdate(id uint) (*models.StockDocument, error) {
	if id == 0 {
		return nil, nil
	}
	var document models.StockDocument
	if err := r.withLines(r.db.Clauses(clause.Locking{Strength: "UPDATE"})).First(&document, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &document, nil
}

// FindByReference 按关联来源与单据类型查找最近的非作废单据
func (r *GormStockDocumentRepository) FindByReference(refType, refID, docType string) (*models.StockDocument, error) {
	var document models.StockDocument
	err := r.withLines(r.db).
		Where("reference_type = ? AND reference_id = ? AND type = ? AND status <> ?", refType, refID, docType, "VOID").
		Order("id desc").
		First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &document, nil
}

// List 单据列表（不含单据行）
func (r *GormStockDocumentRepository) List(filter StockDocumentListFilter) ([]models.StockDocument, int64, error) {
	query := r.db.Model(&models.StockDocument{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.WarehouseID != 0 {
		query = query.Where("warehouse_id = ? OR target_warehouse_id = ?", filter.WarehouseID, filter.WarehouseID)
	}
	if filter.ReferenceType != "" {
		query = query.Where("reference_type = ?", filter.ReferenceType)
	}
	if filter.ReferenceID != "" {
		query = query.Where("reference_id = ?", filter.ReferenceID)
	}
	query = applyKeywordSearch(query, filter.Search, "code", "note")
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var documents []models.StockDocument
	if err := query.Order("id desc").Find(&documents).Error; err != nil {
		return nil, 0, err
	}
	return documents, total, nil
}

// Update 更新单据字段
func (r *GormStockDocumentRepository) Update(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.StockDocument{}).Where("id = ?", id).Updates(updates).Error
}

// ReplaceLines 替换草稿单据的全部行
func (r *GormStockDocumentRepository) ReplaceLines(documentID uint, lines []models.StockDocumentLine) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&models.StockDocumentLine{}).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].DocumentID = documentID
	}
	if len(lines) == 0 {
		return nil
	}
	return r.db.Create(&lines).Error
}
