package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/queue"
	"github.com/cangchu-next/internal/repository"
)

// 订单库存动作，与单据类型同名
const (
	StockActionNone    = ""
	StockActionReserve = constants.StockDocTypeReserve
	StockActionRelease = constants.StockDocTypeRelease
	StockActionDeduct  = constants.StockDocTypeDeduct
	StockActionRestock = constants.StockDocTypeRestock
)

// StockActionFor 计算订单状态流转对应的库存动作
func StockActionFor(from, to string) string {
	switch {
	case to == constants.OrderStatusConfirmed && from != constants.OrderStatusConfirmed:
		return StockActionReserve
	case to == constants.OrderStatusShipped && from != constants.OrderStatusShipped:
		return StockActionDeduct
	case (to == constants.OrderStatusCanceled || to == constants.OrderStatusFailed) &&
		(from == constants.OrderStatusConfirmed || from == constants.OrderStatusPacking):
		return StockActionRelease
	case to == constants.OrderStatusReturned &&
		(from == constants.OrderStatusShipped || from == constants.OrderStatusDelivered || from == constants.OrderStatusReturnRequested):
		return StockActionRestock
	default:
		return StockActionNone
	}
}

// StockActionService 将订单库存动作落为库存单据
type StockActionService struct {
	orderRepo        repository.OrderRepository
	documentService  *StockDocumentService
	warehouseService *WarehouseService
	queueClient      *queue.Client
}

// NewStockActionService 创建订单库存动作服务
func NewStockActionService(orderRepo repository.OrderRepository, documentService *StockDocumentService, warehouseService *WarehouseService, queueClient *queue.Client) *StockActionService {
	return &StockActionService{
		orderRepo:        orderRepo,
		documentService:  documentService,
		warehouseService: warehouseService,
		queueClient:      queueClient,
	}
}

// Apply 执行订单库存动作
// 同一订单同一动作只会生效一次：已过账单据直接返回，草稿单据补过账
// 出库与释放只消耗本订单仍持有的预留，不触碰其他订单的预留
func (s *StockActionService) Apply(orderID uint, action string, actorID uint) (*models.StockDocument, error) {
	switch action {
	case StockActionReserve, StockActionRelease, StockActionDeduct, StockActionRestock:
	default:
		return nil, ErrUnknownStockAction
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	refID := strconv.FormatUint(uint64(order.ID), 10)
	existing, err := s.documentService.FindByReference(constants.StockRefTypeOrder, refID, action)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == constants.StockDocStatusPosted {
		return existing, nil
	}
	if !stockActionMatchesStatus(action, order.OrderStatus) {
		logger.Infow("order_stock_action_skipped",
			"order_id", orderID,
			"action", action,
			"order_status", order.OrderStatus,
			"reason", "status_moved_on",
		)
		if existing != nil {
			if _, err := s.documentService.Void(existing.ID, actorID); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
	if existing != nil {
		return s.postOrderDocument(existing.ID, actorID)
	}

	quantities := summarizeOrderItems(order.Items)
	if len(quantities) == 0 {
		logger.Debugw("order_stock_action_skipped", "order_id", orderID, "action", action, "reason", "no_items")
		return nil, nil
	}

	var held map[uint]int
	if action == StockActionDeduct || action == StockActionRelease {
		held, err = s.heldReservations(order.ID, quantities)
		if err != nil {
			return nil, err
		}
	}

	var warehouseID uint
	if order.FulfillmentWarehouseID != nil {
		warehouseID = *order.FulfillmentWarehouseID
	} else {
		warehouse, err := s.warehouseService.DefaultWarehouse()
		if err != nil {
			return nil, err
		}
		warehouseID = warehouse.ID
	}

	lines := make([]StockDocumentLineInput, 0, len(quantities))
	for _, productID := range sortedProductIDs(quantities) {
		line := StockDocumentLineInput{
			ProductID:   productID,
			Quantity:    quantities[productID],
			MovementKey: orderStockMovementKey(order.ID, productID, action),
		}
		switch action {
		case StockActionDeduct:
			reserved := min(held[productID], line.Quantity)
			line.ReservedQty = &reserved
		case StockActionRelease:
			if held[productID] <= 0 {
				continue
			}
			line.Quantity = min(held[productID], line.Quantity)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		logger.Infow("order_stock_action_skipped", "order_id", orderID, "action", action, "reason", "no_reservation")
		return nil, nil
	}

	document, err := s.documentService.Create(CreateStockDocumentInput{
		Type:          action,
		WarehouseID:   warehouseID,
		ReferenceType: constants.StockRefTypeOrder,
		ReferenceID:   refID,
		Note:          fmt.Sprintf("order %s %s", order.OrderNo, action),
		CreatedBy:     actorID,
		Lines:         lines,
	})
	if err != nil {
		return nil, err
	}
	return s.postOrderDocument(document.ID, actorID)
}

// postOrderDocument 过账订单单据；流水已由并发请求写入时作废本草稿并返回已过账单据
func (s *StockActionService) postOrderDocument(documentID uint, actorID uint) (*models.StockDocument, error) {
	posted, err := s.documentService.Post(documentID, actorID)
	if !errors.Is(err, ErrDuplicateStockPosting) {
		return posted, err
	}
	draft, getErr := s.documentService.Get(documentID)
	if getErr != nil {
		return nil, getErr
	}
	if _, voidErr := s.documentService.Void(documentID, actorID); voidErr != nil {
		return nil, voidErr
	}
	for _, line := range draft.Lines {
		movement, err := s.documentService.MovementByKey(line.MovementKey + movementKeyPostSuffix)
		if err != nil {
			return nil, err
		}
		if movement != nil {
			logger.Infow("order_stock_action_duplicate_voided",
				"document_id", documentID,
				"posted_document_id", movement.DocumentID,
			)
			return s.documentService.Get(movement.DocumentID)
		}
	}
	return nil, err
}

// heldReservations 统计订单在各商品上仍持有的预留数量
// 由本订单 RESERVE/DEDUCT/RELEASE 流水及其冲销累加得出
func (s *StockActionService) heldReservations(orderID uint, quantities map[uint]int) (map[uint]int, error) {
	held := make(map[uint]int, len(quantities))
	for productID := range quantities {
		total := 0
		for _, action := range []string{StockActionReserve, StockActionDeduct, StockActionRelease} {
			key := orderStockMovementKey(orderID, productID, action) + movementKeyPostSuffix
			for _, candidate := range []string{key, movementKeyVoidPrefix + key} {
				movement, err := s.documentService.MovementByKey(candidate)
				if err != nil {
					return nil, err
				}
				if movement != nil {
					total += movement.QtyChangeReserved
				}
			}
		}
		if total > 0 {
			held[productID] = total
		}
	}
	return held, nil
}

// stockActionMatchesStatus 订单当前状态是否仍需要该库存动作（用于重试）
func stockActionMatchesStatus(action, status string) bool {
	switch action {
	case StockActionReserve:
		return status == constants.OrderStatusConfirmed || status == constants.OrderStatusPacking
	case StockActionDeduct:
		return status == constants.OrderStatusShipped ||
			status == constants.OrderStatusDelivered ||
			status == constants.OrderStatusReturnRequested
	case StockActionRelease:
		return status == constants.OrderStatusCanceled || status == constants.OrderStatusFailed
	case StockActionRestock:
		return status == constants.OrderStatusReturned
	}
	return false
}

// ScheduleRetry 推送库存动作重试任务，队列未启用时忽略
func (s *StockActionService) ScheduleRetry(orderID uint, action string, actorID uint) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueStockActionRetry(queue.StockActionRetryPayload{
		OrderID: orderID,
		Action:  action,
		ActorID: actorID,
	}); err != nil {
		logger.Warnw("order_stock_action_retry_enqueue_failed",
			"order_id", orderID,
			"action", action,
			"error", err,
		)
	}
}

// summarizeOrderItems 按商品汇总订单数量
func summarizeOrderItems(items []models.OrderItem) map[uint]int {
	result := make(map[uint]int)
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			continue
		}
		result[item.ProductID] += item.Quantity
	}
	return result
}

func orderStockMovementKey(orderID, productID uint, action string) string {
	return fmt.Sprintf("order:%d:product:%d:%s", orderID, productID, action)
}
