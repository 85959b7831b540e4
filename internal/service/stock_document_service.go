package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/cangchu-next/internal/cache"
	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"

	"gorm.io/gorm"
)

// 流水幂等键：过账为 <前缀>:post，冲销为 void:<原键>
const (
	movementKeyPostSuffix = ":post"
	movementKeyVoidPrefix = "void:"
)

var stockDocumentTypes = map[string]struct{}{
	constants.StockDocTypeGRN:        {},
	constants.StockDocTypeIssue:      {},
	constants.StockDocTypeAdjustment: {},
	constants.StockDocTypeTransfer:   {},
	constants.StockDocTypeReserve:    {},
	constants.StockDocTypeRelease:    {},
	constants.StockDocTypeDeduct:     {},
	constants.StockDocTypeRestock:    {},
}

// StockDocumentService 库存单据服务
type StockDocumentService struct {
	docRepo          repository.StockDocumentRepository
	ledgerRepo       repository.StockLedgerRepository
	productRepo      repository.ProductRepository
	warehouseService *WarehouseService
}

// NewStockDocumentService 创建库存单据服务
func NewStockDocumentService(docRepo repository.StockDocumentRepository, ledgerRepo repository.StockLedgerRepository, productRepo repository.ProductRepository, warehouseService *WarehouseService) *StockDocumentService {
	return &StockDocumentService{
		docRepo:          docRepo,
		ledgerRepo:       ledgerRepo,
		productRepo:      productRepo,
		warehouseService: warehouseService,
	}
}

// StockDocumentLineInput 单据行输入
type StockDocumentLineInput struct {
	ProductID        uint
	Quantity         int
	Direction        string
	LocationID       *uint
	TargetLocationID *uint
	MovementKey      string
	ReservedQty      *int
}

// CreateStockDocumentInput 创建单据输入
type CreateStockDocumentInput struct {
	Type              string
	WarehouseID       uint
	TargetWarehouseID *uint
	ReferenceType     string
	ReferenceID       string
	Note              string
	CreatedBy         uint
	Lines             []StockDocumentLineInput
}

// UpdateStockDocumentInput 编辑草稿输入，nil 字段不修改
type UpdateStockDocumentInput struct {
	Note          *string
	ReferenceType *string
	ReferenceID   *string
	Lines         []StockDocumentLineInput
}

// Create 创建草稿单据
func (s *StockDocumentService) Create(input CreateStockDocumentInput) (*models.StockDocument, error) {
	docType := strings.ToUpper(strings.TrimSpace(input.Type))
	if _, ok := stockDocumentTypes[docType]; !ok {
		return nil, ErrUnknownDocumentType
	}
	warehouse, target, err := s.resolveWarehouses(docType, input.WarehouseID, input.TargetWarehouseID)
	if err != nil {
		return nil, err
	}
	lines, err := s.prepareLines(docType, warehouse, target, input.Lines)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	document := &models.StockDocument{
		Code:          generateStockDocumentCode(docType, now),
		Type:          docType,
		Status:        constants.StockDocStatusDraft,
		WarehouseID:   warehouse.ID,
		ReferenceType: strings.TrimSpace(input.ReferenceType),
		ReferenceID:   strings.TrimSpace(input.ReferenceID),
		Note:          strings.TrimSpace(input.Note),
		CreatedBy:     input.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if target != nil {
		targetID := target.ID
		document.TargetWarehouseID = &targetID
	}
	for i := range lines {
		lines[i].CreatedAt = now
	}
	if err := s.docRepo.Transaction(func(tx *gorm.DB) error {
		return s.docRepo.WithTx(tx).Create(document, lines)
	}); err != nil {
		return nil, err
	}
	logger.Infow("stock_document_created",
		"document_id", document.ID,
		"code", document.Code,
		"type", document.Type,
		"lines", len(lines),
	)
	return document, nil
}

// UpdateDraft 编辑草稿单据
func (s *StockDocumentService) UpdateDraft(id uint, input UpdateStockDocumentInput) (*models.StockDocument, error) {
	var result *models.StockDocument
	err := s.docRepo.Transaction(func(tx *gorm.DB) error {
		docRepo := s.docRepo.WithTx(tx)
		document, err := docRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if document == nil {
			return ErrDocumentNotFound
		}
		if err := ensureDraft(document); err != nil {
			return err
		}

		now := time.Now()
		var lines []models.StockDocumentLine
		if input.Lines != nil {
			warehouse, target, err := s.resolveWarehouses(document.Type, document.WarehouseID, document.TargetWarehouseID)
			if err != nil {
				return err
			}
			lines, err = s.prepareLines(document.Type, warehouse, target, input.Lines)
			if err != nil {
				return err
			}
			for i := range lines {
				lines[i].CreatedAt = now
			}
		}

		updates := map[string]interface{}{"updated_at": now}
		if input.Note != nil {
			updates["note"] = strings.TrimSpace(*input.Note)
		}
		if input.ReferenceType != nil {
			updates["reference_type"] = strings.TrimSpace(*input.ReferenceType)
		}
		if input.ReferenceID != nil {
			updates["reference_id"] = strings.TrimSpace(*input.ReferenceID)
		}
		if err := docRepo.Update(document.ID, updates); err != nil {
			return err
		}
		if lines != nil {
			if err := docRepo.ReplaceLines(document.ID, lines); err != nil {
				return err
			}
		}
		result, err = docRepo.GetByID(document.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Post 过账：DRAFT -> POSTED，已过账时原样返回
func (s *StockDocumentService) Post(id uint, actorID uint) (*models.StockDocument, error) {
	var result *models.StockDocument
	var applied []repository.AppliedMovement
	err := s.docRepo.Transaction(func(tx *gorm.DB) error {
		docRepo := s.docRepo.WithTx(tx)
		document, err := docRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if document == nil {
			return ErrDocumentNotFound
		}
		switch document.Status {
		case constants.StockDocStatusPosted:
			result = document
			return nil
		case constants.StockDocStatusVoid:
			return ErrDocumentAlreadyVoid
		}

		plans, err := buildPostPlans(document, actorID)
		if err != nil {
			return err
		}
		allowNegative := document.Type == constants.StockDocTypeAdjustment
		applied, err = s.ledgerRepo.WithTx(tx).ApplyMovements(plans, allowNegative)
		if err != nil {
			return err
		}
		if postedElsewhere(document.ID, applied) {
			return ErrDuplicateStockPosting
		}

		now := time.Now()
		postedBy := actorID
		if err := docRepo.Update(document.ID, map[string]interface{}{
			"status":     constants.StockDocStatusPosted,
			"posted_by":  postedBy,
			"posted_at":  now,
			"updated_at": now,
		}); err != nil {
			return err
		}
		document.Status = constants.StockDocStatusPosted
		document.PostedBy = &postedBy
		document.PostedAt = &now
		document.UpdatedAt = now
		result = document
		return nil
	})
	if err != nil {
		return nil, err
	}
	if applied != nil {
		s.afterLedgerWrite(applied)
		logger.Infow("stock_document_posted",
			"document_id", result.ID,
			"type", result.Type,
			"movements", len(applied),
			"actor_id", actorID,
		)
	}
	return result, nil
}

// Void 作废：DRAFT 仅改状态，POSTED 写入冲销流水
func (s *StockDocumentService) Void(id uint, actorID uint) (*models.StockDocument, error) {
	var result *models.StockDocument
	var applied []repository.AppliedMovement
	err := s.docRepo.Transaction(func(tx *gorm.DB) error {
		docRepo := s.docRepo.WithTx(tx)
		document, err := docRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if document == nil {
			return ErrDocumentNotFound
		}
		if document.Status == constants.StockDocStatusVoid {
			return ErrDocumentAlreadyVoid
		}

		if document.Status == constants.StockDocStatusPosted {
			ledgerRepo := s.ledgerRepo.WithTx(tx)
			movements, err := ledgerRepo.ListMovementsByDocument(document.ID)
			if err != nil {
				return err
			}
			plans := buildReversalPlans(movements, actorID)
			allowNegative := document.Type == constants.StockDocTypeAdjustment
			applied, err = ledgerRepo.ApplyMovements(plans, allowNegative)
			if err != nil {
				return err
			}
		}

		now := time.Now()
		voidedBy := actorID
		if err := docRepo.Update(document.ID, map[string]interface{}{
			"status":     constants.StockDocStatusVoid,
			"voided_by":  voidedBy,
			"voided_at":  now,
			"updated_at": now,
		}); err != nil {
			return err
		}
		document.Status = constants.StockDocStatusVoid
		document.VoidedBy = &voidedBy
		document.VoidedAt = &now
		document.UpdatedAt = now
		result = document
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterLedgerWrite(applied)
	logger.Infow("stock_document_voided",
		"document_id", result.ID,
		"type", result.Type,
		"reversals", len(applied),
		"actor_id", actorID,
	)
	return result, nil
}

// Get 获取单据（含单据行）
func (s *StockDocumentService) Get(id uint) (*models.StockDocument, error) {
	document, err := s.docRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, ErrDocumentNotFound
	}
	return document, nil
}

// List 单据列表
func (s *StockDocumentService) List(filter repository.StockDocumentListFilter) ([]models.StockDocument, int64, error) {
	filter.Type = strings.ToUpper(strings.TrimSpace(filter.Type))
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	return s.docRepo.List(filter)
}

// Movements 获取单据产生的流水
func (s *StockDocumentService) Movements(id uint) ([]models.StockMovement, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListMovementsByDocument(id)
}

// FindByReference 按来源查找非作废单据
func (s *StockDocumentService) FindByReference(refType, refID, docType string) (*models.StockDocument, error) {
	return s.docRepo.FindByReference(refType, refID, docType)
}

func (s *StockDocumentService) afterLedgerWrite(applied []repository.AppliedMovement) {
	productIDs := make([]uint, 0, len(applied))
	seen := make(map[uint]struct{}, len(applied))
	for _, item := range applied {
		if item.Existing {
			continue
		}
		if _, ok := seen[item.Movement.ProductID]; ok {
			continue
		}
		seen[item.Movement.ProductID] = struct{}{}
		productIDs = append(productIDs, item.Movement.ProductID)
	}
	if len(productIDs) == 0 {
		return
	}
	if err := cache.InvalidateStockSummaries(context.Background(), productIDs...); err != nil {
		logger.Warnw("stock_summary_invalidate_failed", "product_ids", productIDs, "error", err)
	}
}

func (s *StockDocumentService) resolveWarehouses(docType string, warehouseID uint, targetID *uint) (*models.Warehouse, *models.Warehouse, error) {
	warehouse, err := s.warehouseService.ResolveWarehouse(warehouseID)
	if err != nil {
		return nil, nil, err
	}
	if !warehouse.IsActive {
		return nil, nil, ErrWarehouseInactive
	}
	if docType != constants.StockDocTypeTransfer {
		return warehouse, nil, nil
	}
	if targetID == nil || *targetID == 0 {
		return nil, nil, validationError("transfer requires a target warehouse")
	}
	if *targetID == warehouse.ID {
		return nil, nil, validationError("transfer target warehouse must differ from source")
	}
	target, err := s.warehouseService.Get(*targetID)
	if err != nil {
		return nil, nil, err
	}
	if !target.IsActive {
		return nil, nil, ErrWarehouseInactive
	}
	return warehouse, target, nil
}

func (s *StockDocumentService) prepareLines(docType string, warehouse, target *models.Warehouse, inputs []StockDocumentLineInput) ([]models.StockDocumentLine, error) {
	if len(inputs) == 0 {
		return nil, validationError("at least one line is required")
	}
	productIDs := make([]uint, 0, len(inputs))
	for idx, input := range inputs {
		if input.ProductID == 0 {
			return nil, validationError("line %d: product is required", idx+1)
		}
		productIDs = append(productIDs, input.ProductID)
	}
	products, err := s.productRepo.ListByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uint]models.Product, len(products))
	for _, product := range products {
		productMap[product.ID] = product
	}

	lines := make([]models.StockDocumentLine, 0, len(inputs))
	for idx, input := range inputs {
		product, ok := productMap[input.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: id=%d", ErrProductNotFound, input.ProductID)
		}
		quantity, direction, err := normalizeLineQuantity(docType, input.Quantity, input.Direction)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", idx+1, err)
		}
		if input.LocationID != nil && *input.LocationID != 0 {
			if _, err := s.warehouseService.GetLocation(warehouse.ID, *input.LocationID); err != nil {
				return nil, err
			}
		}
		line := models.StockDocumentLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductSKU:  product.SKU,
			Quantity:    quantity,
			Direction:   direction,
			LocationID:  normalizeOptionalID(input.LocationID),
			MovementKey: strings.TrimSpace(input.MovementKey),
		}
		if input.ReservedQty != nil {
			if docType != constants.StockDocTypeDeduct {
				return nil, validationError("line %d: reserved quantity is only allowed on deduct documents", idx+1)
			}
			if *input.ReservedQty < 0 || *input.ReservedQty > quantity {
				return nil, validationError("line %d: reserved quantity must be between 0 and %d", idx+1, quantity)
			}
			reserved := *input.ReservedQty
			line.ReservedQty = &reserved
		}
		if target != nil && input.TargetLocationID != nil && *input.TargetLocationID != 0 {
			if _, err := s.warehouseService.GetLocation(target.ID, *input.TargetLocationID); err != nil {
				return nil, err
			}
			line.TargetLocationID = normalizeOptionalID(input.TargetLocationID)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// normalizeLineQuantity 调整单返回带符号数量与方向，其余类型要求正数
func normalizeLineQuantity(docType string, quantity int, direction string) (int, string, error) {
	direction = strings.ToUpper(strings.TrimSpace(direction))
	if docType != constants.StockDocTypeAdjustment {
		if quantity <= 0 {
			return 0, "", validationError("quantity must be positive")
		}
		return quantity, "", nil
	}
	if quantity == 0 {
		return 0, "", validationError("adjustment quantity must not be zero")
	}
	abs := quantity
	if abs < 0 {
		abs = -abs
	}
	switch direction {
	case constants.StockDirectionIn:
		return abs, constants.StockDirectionIn, nil
	case constants.StockDirectionOut:
		return -abs, constants.StockDirectionOut, nil
	case "":
		if quantity < 0 {
			return quantity, constants.StockDirectionOut, nil
		}
		return quantity, constants.StockDirectionIn, nil
	default:
		return 0, "", validationError("unknown adjustment direction %q", direction)
	}
}

// buildPostPlans 将单据行展开为流水计划
func buildPostPlans(document *models.StockDocument, actorID uint) ([]repository.MovementPlan, error) {
	plans := make([]repository.MovementPlan, 0, len(document.Lines))
	for _, line := range document.Lines {
		lineID := line.ID
		keyBase := strings.TrimSpace(line.MovementKey)
		if keyBase == "" {
			keyBase = fmt.Sprintf("doc:%d:line:%d", document.ID, line.ID)
		}
		base := repository.MovementPlan{
			DocumentID:   document.ID,
			LineID:       &lineID,
			ProductID:    line.ProductID,
			WarehouseID:  document.WarehouseID,
			LocationID:   line.LocationID,
			MovementType: document.Type,
			CreatedBy:    actorID,
		}
		q := line.Quantity
		switch document.Type {
		case constants.StockDocTypeGRN, constants.StockDocTypeRestock:
			base.QtyChangeOnHand = q
		case constants.StockDocTypeIssue:
			base.QtyChangeOnHand = -q
		case constants.StockDocTypeDeduct:
			base.QtyChangeOnHand = -q
			if line.ReservedQty != nil {
				base.QtyChangeReserved = -*line.ReservedQty
			} else {
				base.QtyChangeReserved = -q
				base.ClampReserved = true
			}
		case constants.StockDocTypeAdjustment:
			base.QtyChangeOnHand = q
		case constants.StockDocTypeReserve:
			base.QtyChangeReserved = q
		case constants.StockDocTypeRelease:
			base.QtyChangeReserved = -q
			base.ClampReserved = true
		case constants.StockDocTypeTransfer:
			if document.TargetWarehouseID == nil {
				return nil, validationError("transfer document %d has no target warehouse", document.ID)
			}
			source := base
			source.IdempotencyKey = keyBase + movementKeyPostSuffix + ":src"
			source.QtyChangeOnHand = -q
			target := base
			target.IdempotencyKey = keyBase + movementKeyPostSuffix + ":tgt"
			target.WarehouseID = *document.TargetWarehouseID
			target.LocationID = line.TargetLocationID
			target.QtyChangeOnHand = q
			plans = append(plans, source, target)
			continue
		default:
			return nil, ErrUnknownDocumentType
		}
		base.IdempotencyKey = keyBase + movementKeyPostSuffix
		plans = append(plans, base)
	}
	return plans, nil
}

// buildReversalPlans 为已过账流水生成冲销计划
func buildReversalPlans(movements []models.StockMovement, actorID uint) []repository.MovementPlan {
	plans := make([]repository.MovementPlan, 0, len(movements))
	for _, movement := range movements {
		if movement.MovementType == constants.StockMovementTypeReversal {
			continue
		}
		plans = append(plans, repository.MovementPlan{
			IdempotencyKey:    movementKeyVoidPrefix + movement.IdempotencyKey,
			DocumentID:        movement.DocumentID,
			LineID:            movement.LineID,
			ProductID:         movement.ProductID,
			WarehouseID:       movement.WarehouseID,
			LocationID:        movement.LocationID,
			MovementType:      constants.StockMovementTypeReversal,
			QtyChangeOnHand:   -movement.QtyChangeOnHand,
			QtyChangeReserved: -movement.QtyChangeReserved,
			CreatedBy:         actorID,
		})
	}
	return plans
}

// postedElsewhere 全部流水均已存在且归属其他单据
func postedElsewhere(documentID uint, applied []repository.AppliedMovement) bool {
	if len(applied) == 0 {
		return false
	}
	for _, item := range applied {
		if !item.Existing || item.Movement.DocumentID == documentID {
			return false
		}
	}
	return true
}

// MovementByKey 按幂等键查找流水，不存在时返回 nil
func (s *StockDocumentService) MovementByKey(key string) (*models.StockMovement, error) {
	return s.ledgerRepo.GetMovementByKey(key)
}

func ensureDraft(document *models.StockDocument) error {
	switch document.Status {
	case constants.StockDocStatusDraft:
		return nil
	case constants.StockDocStatusVoid:
		return ErrDocumentAlreadyVoid
	default:
		return ErrDocumentAlreadyPosted
	}
}

func normalizeOptionalID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	value := *id
	return &value
}

// sortedProductIDs 返回按 ID 升序的商品列表
func sortedProductIDs(quantities map[uint]int) []uint {
	ids := make([]uint, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func generateStockDocumentCode(docType string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", docType, now.Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
