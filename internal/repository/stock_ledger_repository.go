package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cangchu-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInsufficientStock 过账后实物、预留或可用数量将小于 0
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidMovement 流水计划不合法
	ErrInvalidMovement = errors.New("invalid movement plan")
)

// StockShortageError 库存不足明细
type StockShortageError struct {
	ProductID      uint
	WarehouseID    uint
	LocationID     *uint
	OnHandAfter    int
	ReservedAfter  int
	AvailableAfter int
}

func (e *StockShortageError) Error() string {
	location := "-"
	if e.LocationID != nil {
		location = fmt.Sprintf("%d", *e.LocationID)
	}
	return fmt.Sprintf("insufficient stock: product=%d warehouse=%d location=%s on_hand_after=%d reserved_after=%d available_after=%d",
		e.ProductID, e.WarehouseID, location, e.OnHandAfter, e.ReservedAfter, e.AvailableAfter)
}

// Is 使 errors.Is(err, ErrInsufficientStock) 成立
func (e *StockShortageError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// MovementPlan 待写入的库存流水
type MovementPlan struct {
	IdempotencyKey    string
	DocumentID        uint
	LineID            *uint
	ProductID         uint
	WarehouseID       uint
	LocationID        *uint
	MovementType      string
	QtyChangeOnHand   int
	QtyChangeReserved int
	// ClampReserved 为 true 时，负的预留变动最多扣到 0
	ClampReserved bool
	CreatedBy     uint
}

// AppliedMovement 写入结果；Existing 表示幂等键已存在，未产生余额变动
type AppliedMovement struct {
	Movement models.StockMovement
	Existing bool
}

// StockLedgerRepository 库存账本数据访问接口
type StockLedgerRepository interface {
	ApplyMovements(plans []MovementPlan, allowNegative bool) ([]AppliedMovement, error)
	GetMovementByKey(key string) (*models.StockMovement, error)
	ListMovementsByDocument(documentID uint) ([]models.StockMovement, error)
	ListMovements(filter StockMovementListFilter) ([]models.StockMovement, int64, error)
	GetItem(productID, warehouseID uint, locationID *uint) (*models.InventoryItem, error)
	GetItemByID(id uint) (*models.InventoryItem, error)
	ListItems(filter InventoryItemListFilter) ([]models.InventoryItem, int64, error)
	ListItemsByProduct(productID uint) ([]models.InventoryItem, error)
	SetReorderPoint(id uint, reorderPoint int) error
	SumAvailableByProduct(productID uint) (int, error)
	RecomputeProductAggregate(productID uint) (int, error)
	ListStockedProductIDs() ([]uint, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormStockLedgerRepository
}

// GormStockLedgerRepository GORM 实现
type GormStockLedgerRepository struct {
	db *gorm.DB
}

// NewStockLedgerRepository 创建库存账本仓储
func NewStockLedgerRepository(db *gorm.DB) *GormStockLedgerRepository {
	return &GormStockLedgerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockLedgerRepository) WithTx(tx *gorm.DB) *GormStockLedgerRepository {
	if tx == nil {
		return r
	}
	return &GormStockLedgerRepository{db: tx}
}

// Transaction 执行事务
func (r *GormStockLedgerRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// ApplyMovements 原子写入一批流水并更新余额
// 已存在的幂等键原样返回且不改动余额；任一条导致负库存（且不允许负库存）时整批回滚
func (r *GormStockLedgerRepository) ApplyMovements(plans []MovementPlan, allowNegative bool) ([]AppliedMovement, error) {
	if len(plans) == 0 {
		return []AppliedMovement{}, nil
	}
	for i := range plans {
		plans[i].IdempotencyKey = strings.TrimSpace(plans[i].IdempotencyKey)
		if plans[i].IdempotencyKey == "" {
			return nil, fmt.Errorf("%w: idempotency key is required", ErrInvalidMovement)
		}
		if plans[i].ProductID == 0 || plans[i].WarehouseID == 0 {
			return nil, fmt.Errorf("%w: product and warehouse are required", ErrInvalidMovement)
		}
	}

	var results []AppliedMovement
	err := r.db.Transaction(func(tx *gorm.DB) error {
		applied, err := r.WithTx(tx).applyInTx(plans, allowNegative)
		if err != nil {
			return err
		}
		results = applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *GormStockLedgerRepository) applyInTx(plans []MovementPlan, allowNegative bool) ([]AppliedMovement, error) {
	now := time.Now()
	existing, err := r.getMovementsByKeys(plans)
	if err != nil {
		return nil, err
	}

	// 仅为新流水加锁；按 (商品, 仓库, 库位) 固定顺序加锁
	items, err := r.lockItems(plans, existing, now)
	if err != nil {
		return nil, err
	}
	// 等锁期间并发批次可能已写入相同幂等键
	existing, err = r.getMovementsByKeys(plans)
	if err != nil {
		return nil, err
	}

	results := make([]AppliedMovement, 0, len(plans))
	touchedProducts := make(map[uint]struct{})
	for _, plan := range plans {
		if movement, ok := existing[plan.IdempotencyKey]; ok {
			results = append(results, AppliedMovement{Movement: movement, Existing: true})
			continue
		}

		item := items[itemKeyOf(plan.ProductID, plan.WarehouseID, plan.LocationID)]
		reservedDelta := plan.QtyChangeReserved
		if plan.ClampReserved && reservedDelta < 0 {
			if item.ReservedQty <= 0 {
				reservedDelta = 0
			} else if -reservedDelta > item.ReservedQty {
				reservedDelta = -item.ReservedQty
			}
		}
		newOnHand := item.OnHandQty + plan.QtyChangeOnHand
		newReserved := item.ReservedQty + reservedDelta
		newAvailable := newOnHand - newReserved
		if !allowNegative && (newOnHand < 0 || newReserved < 0 || newAvailable < 0) {
			return nil, &StockShortageError{
				ProductID:      plan.ProductID,
				WarehouseID:    plan.WarehouseID,
				LocationID:     plan.LocationID,
				OnHandAfter:    newOnHand,
				ReservedAfter:  newReserved,
				AvailableAfter: newAvailable,
			}
		}

		if err := r.db.Model(&models.InventoryItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"on_hand_qty":   newOnHand,
			"reserved_qty":  newReserved,
			"available_qty": newAvailable,
			"updated_at":    now,
		}).Error; err != nil {
			return nil, err
		}
		item.OnHandQty = newOnHand
		item.ReservedQty = newReserved
		item.AvailableQty = newAvailable
		item.UpdatedAt = now

		movement := models.StockMovement{
			DocumentID:           plan.DocumentID,
			LineID:               plan.LineID,
			ProductID:            plan.ProductID,
			WarehouseID:          plan.WarehouseID,
			LocationID:           plan.LocationID,
			MovementType:         plan.MovementType,
			QtyChangeOnHand:      plan.QtyChangeOnHand,
			QtyChangeReserved:    reservedDelta,
			BalanceOnHandAfter:   newOnHand,
			BalanceReservedAfter: newReserved,
			IdempotencyKey:       plan.IdempotencyKey,
			CreatedBy:            plan.CreatedBy,
			CreatedAt:            now,
		}
		if err := r.db.Create(&movement).Error; err != nil {
			return nil, err
		}
		// 同批次内重复的幂等键视为已存在
		existing[plan.IdempotencyKey] = movement
		results = append(results, AppliedMovement{Movement: movement})
		touchedProducts[plan.ProductID] = struct{}{}
	}

	for productID := range touchedProducts {
		if _, err := r.RecomputeProductAggregate(productID); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *GormStockLedgerRepository) getMovementsByKeys(plans []MovementPlan) (map[string]models.StockMovement, error) {
	keys := make([]string, 0, len(plans))
	for _, plan := range plans {
		keys = append(keys, plan.IdempotencyKey)
	}
	var movements []models.StockMovement
	if err := r.db.Where("idempotency_key IN ?", keys).Find(&movements).Error; err != nil {
		return nil, err
	}
	result := make(map[string]models.StockMovement, len(movements))
	for _, movement := range movements {
		result[movement.IdempotencyKey] = movement
	}
	return result, nil
}

type inventoryItemKey struct {
	ProductID   uint
	WarehouseID uint
	LocationKey uint
}

func itemKeyOf(productID, warehouseID uint, locationID *uint) inventoryItemKey {
	return inventoryItemKey{ProductID: productID, WarehouseID: warehouseID, LocationKey: models.LocationKeyOf(locationID)}
}

func (r *GormStockLedgerRepository) lockItems(plans []MovementPlan, existing map[string]models.StockMovement, now time.Time) (map[inventoryItemKey]*models.InventoryItem, error) {
	locations := make(map[inventoryItemKey]*uint)
	for _, plan := range plans {
		if _, ok := existing[plan.IdempotencyKey]; ok {
			continue
		}
		locations[itemKeyOf(plan.ProductID, plan.WarehouseID, plan.LocationID)] = plan.LocationID
	}
	keys := make([]inventoryItemKey, 0, len(locations))
	for key := range locations {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID < keys[j].ProductID
		}
		if keys[i].WarehouseID != keys[j].WarehouseID {
			return keys[i].WarehouseID < keys[j].WarehouseID
		}
		return keys[i].LocationKey < keys[j].LocationKey
	})

	items := make(map[inventoryItemKey]*models.InventoryItem, len(keys))
	for _, key := range keys {
		item, err := r.lockOrCreateItem(key.ProductID, key.WarehouseID, locations[key], now)
		if err != nil {
			return nil, err
		}
		items[key] = item
	}
	return items, nil
}

func (r *GormStockLedgerRepository) lockOrCreateItem(productID, warehouseID uint, locationID *uint, now time.Time) (*models.InventoryItem, error) {
	item, err := r.getItemForUpdate(productID, warehouseID, locationID)
	if err != nil {
		return nil, err
	}
	if item != nil {
		return item, nil
	}
	created := &models.InventoryItem{
		ProductID:   productID,
		WarehouseID: warehouseID,
		LocationID:  locationID,
		LocationKey: models.LocationKeyOf(locationID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// 并发首次入库时由唯一索引兜底，冲突方重新读取
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(created).Error; err != nil {
		return nil, err
	}
	item, err = r.getItemForUpdate(productID, warehouseID, locationID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("inventory item not found after create: product=%d warehouse=%d", productID, warehouseID)
	}
	return item, nil
}

func (r *GormStockLedgerRepository) getItemForUpdate(productID, warehouseID uint, locationID *uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND warehouse_id = ? AND location_key = ?", productID, warehouseID, models.LocationKeyOf(locationID)).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetMovementByKey 按幂等键获取流水
func (r *GormStockLedgerRepository) GetMovementByKey(key string) (*models.StockMovement, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var movement models.StockMovement
	if err := r.db.Where("idempotency_key = ?", key).First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movement, nil
}

// ListMovementsByDocument 获取单据的全部流水（按写入顺序）
func (r *GormStockLedgerRepository) ListMovementsByDocument(documentID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.db.Where("document_id = ?", documentID).Order("id asc").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// ListMovements 分页查询流水
func (r *GormStockLedgerRepository) ListMovements(filter StockMovementListFilter) ([]models.StockMovement, int64, error) {
	query := r.db.Model(&models.StockMovement{})
	if filter.DocumentID != 0 {
		query = query.Where("document_id = ?", filter.DocumentID)
	}
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.WarehouseID != 0 {
		query = query.Where("warehouse_id = ?", filter.WarehouseID)
	}
	if filter.MovementType != "" {
		query = query.Where("movement_type = ?", filter.MovementType)
	}
	if prefix := strings.TrimSpace(filter.KeyPrefix); prefix != "" {
		query = query.Where("idempotency_key LIKE ?", prefix+"%")
	}
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

	var movements []models.StockMovement
	if err := query.Order("id desc").Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// GetItem 获取指定维度的库存余额
func (r *GormStockLedgerRepository) GetItem(productID, warehouseID uint, locationID *uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.Where("product_id = ? AND warehouse_id = ? AND location_key = ?", productID, warehouseID, models.LocationKeyOf(locationID)).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetItemByID 按 ID 获取库存余额
func (r *GormStockLedgerRepository) GetItemByID(id uint) (*models.InventoryItem, error) {
	if id == 0 {
		return nil, nil
	}
	var item models.InventoryItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListItems 分页查询库存余额
func (r *GormStockLedgerRepository) ListItems(filter InventoryItemListFilter) ([]models.InventoryItem, int64, error) {
	query := r.db.Model(&models.InventoryItem{})
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.WarehouseID != 0 {
		query = query.Where("warehouse_id = ?", filter.WarehouseID)
	}
	if filter.LowStockOnly {
		query = query.Where("reorder_point > 0 AND available_qty <= reorder_point")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var items []models.InventoryItem
	if err := query.Order("product_id asc, warehouse_id asc, location_key asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListItemsByProduct 获取商品在各仓的余额
func (r *GormStockLedgerRepository) ListItemsByProduct(productID uint) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.Where("product_id = ?", productID).Order("warehouse_id asc, location_key asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SetReorderPoint 设置补货阈值
func (r *GormStockLedgerRepository) SetReorderPoint(id uint, reorderPoint int) error {
	return r.db.Model(&models.InventoryItem{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reorder_point": reorderPoint,
		"updated_at":    time.Now(),
	}).Error
}

// SumAvailableByProduct 汇总商品跨仓可用库存
func (r *GormStockLedgerRepository) SumAvailableByProduct(productID uint) (int, error) {
	var total int64
	if err := r.db.Model(&models.InventoryItem{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(available_qty), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

// RecomputeProductAggregate 重算商品跨仓可用库存汇总
func (r *GormStockLedgerRepository) RecomputeProductAggregate(productID uint) (int, error) {
	total, err := r.SumAvailableByProduct(productID)
	if err != nil {
		return 0, err
	}
	if err := r.db.Model(&models.Product{}).Where("id = ?", productID).Updates(map[string]interface{}{
		"stock_available": total,
		"updated_at":      time.Now(),
	}).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ListStockedProductIDs 列出存在库存记录的商品
func (r *GormStockLedgerRepository) ListStockedProductIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.InventoryItem{}).Distinct("product_id").Order("product_id asc").Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
