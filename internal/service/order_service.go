package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultCancelReasonMinLength = 3

// OrderService 订单状态机服务
type OrderService struct {
	orderRepo             repository.OrderRepository
	productRepo           repository.ProductRepository
	stockActions          *StockActionService
	cancelReasonMinLength int
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, stockActions *StockActionService, cancelReasonMinLength int) *OrderService {
	if cancelReasonMinLength <= 0 {
		cancelReasonMinLength = defaultCancelReasonMinLength
	}
	return &OrderService{
		orderRepo:             orderRepo,
		productRepo:           productRepo,
		stockActions:          stockActions,
		cancelReasonMinLength: cancelReasonMinLength,
	}
}

// TransitionOptions 状态流转选项
type TransitionOptions struct {
	ActorID      uint
	NoteInternal string
	NoteCustomer string
	CancelReason string
	Force        bool
}

// TransitionResult 状态流转结果
type TransitionResult struct {
	Changed         bool   `json:"changed"`
	From            string `json:"from"`
	To              string `json:"to"`
	StockAction     string `json:"stock_action,omitempty"`
	StockDocumentID uint   `json:"stock_document_id,omitempty"`
	StockWarning    string `json:"stock_warning,omitempty"`
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	OrderNo                string
	Status                 string
	Currency               string
	FulfillmentWarehouseID *uint
	Items                  []CreateOrderItemInput
}

// CreateOrderItemInput 订单项输入
type CreateOrderItemInput struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateOrder 创建订单（DRAFT 或 PENDING_CONFIRMATION）
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	status := constants.OrderStatusDraft
	if strings.TrimSpace(input.Status) != "" {
		normalized, ok := NormalizeOrderStatus(input.Status)
		if !ok {
			return nil, ErrUnknownOrderStatus
		}
		status = normalized
	}
	if status != constants.OrderStatusDraft && status != constants.OrderStatusPendingConfirmation {
		return nil, validationError("order must start as %s or %s", constants.OrderStatusDraft, constants.OrderStatusPendingConfirmation)
	}
	if len(input.Items) == 0 {
		return nil, validationError("order requires at least one item")
	}

	productIDs := make([]uint, 0, len(input.Items))
	for idx, item := range input.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, validationError("item %d: product and positive quantity are required", idx+1)
		}
		if item.UnitPrice.IsNegative() {
			return nil, validationError("item %d: unit price must not be negative", idx+1)
		}
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productRepo.ListByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uint]models.Product, len(products))
	for _, product := range products {
		productMap[product.ID] = product
	}

	now := time.Now()
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		product, ok := productMap[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: id=%d", ErrProductNotFound, item.ProductID)
		}
		unitPrice := item.UnitPrice.Round(2)
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		total = total.Add(lineTotal)
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   models.NewMoneyFromDecimal(unitPrice),
			TotalPrice:  models.NewMoneyFromDecimal(lineTotal),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "CNY"
	}
	orderNo := strings.TrimSpace(input.OrderNo)
	if orderNo == "" {
		orderNo = generateOrderNo(now)
	}
	order := &models.Order{
		OrderNo:                orderNo,
		OrderStatus:            status,
		FulfillmentStatus:      FulfillmentStatusFor(status),
		Status:                 LegacyStatusFor(status),
		FulfillmentWarehouseID: normalizeOptionalID(input.FulfillmentWarehouseID),
		Currency:               currency,
		TotalAmount:            models.NewMoneyFromDecimal(total),
		PaidAmount:             models.NewMoneyFromDecimal(decimal.Zero),
		OutstandingAmount:      models.NewMoneyFromDecimal(total),
		PaymentState:           constants.PaymentStateUnpaid,
		AccountingStatus:       constants.AccountingStatusOpen,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).Create(order, items)
	}); err != nil {
		return nil, err
	}
	logger.Infow("order_created", "order_id", order.ID, "order_no", order.OrderNo, "status", order.OrderStatus)
	return order, nil
}

// GetOrder 获取订单（含订单项）
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders 订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if strings.TrimSpace(filter.Status) != "" {
		status, ok := NormalizeOrderStatus(filter.Status)
		if !ok {
			return nil, 0, ErrUnknownOrderStatus
		}
		filter.Status = status
	}
	return s.orderRepo.ListAdmin(filter)
}

// ListHistory 获取订单状态流转记录
func (s *OrderService) ListHistory(orderID uint) ([]models.OrderStatusHistory, error) {
	if _, err := s.GetOrder(orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.ListStatusHistory(orderID)
}

// AllowedTransitionsFor 获取订单当前可流转的目标状态
func (s *OrderService) AllowedTransitionsFor(orderID uint) (string, []string, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return "", nil, err
	}
	return order.OrderStatus, AllowedTransitions(order.OrderStatus), nil
}

// Transition 订单状态流转
// 状态写入与库存动作分属两个事务，库存动作失败不回滚已提交的状态
func (s *OrderService) Transition(orderID uint, newStatus string, opts TransitionOptions) (*TransitionResult, error) {
	to, ok := NormalizeOrderStatus(newStatus)
	if !ok {
		return nil, ErrUnknownOrderStatus
	}
	noteInternal := strings.TrimSpace(opts.NoteInternal)
	noteCustomer := strings.TrimSpace(opts.NoteCustomer)
	cancelReason := strings.TrimSpace(opts.CancelReason)

	result := &TransitionResult{To: to}
	forced := false
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		from := order.OrderStatus
		result.From = from
		if from == to && noteInternal == "" && noteCustomer == "" {
			return nil
		}

		if !IsTransitionAllowed(from, to) {
			if !opts.Force {
				return &TransitionError{From: from, To: to}
			}
			forced = true
		}
		if to == constants.OrderStatusCanceled && from != constants.OrderStatusCanceled &&
			utf8.RuneCountInString(cancelReason) < s.cancelReasonMinLength {
			if !opts.Force {
				return ErrCancelReasonRequired
			}
			forced = true
		}

		now := time.Now()
		if from != to {
			updates := map[string]interface{}{
				"order_status":       to,
				"fulfillment_status": FulfillmentStatusFor(to),
				"status":             LegacyStatusFor(to),
				"updated_at":         now,
			}
			switch to {
			case constants.OrderStatusShipped:
				updates["shipped_at"] = now
			case constants.OrderStatusDelivered:
				updates["delivered_at"] = now
			case constants.OrderStatusCanceled:
				updates["canceled_at"] = now
				updates["cancel_reason"] = cancelReason
			}
			if err := orderRepo.UpdateFields(order.ID, updates); err != nil {
				return err
			}
		}

		history := &models.OrderStatusHistory{
			OrderID:      order.ID,
			FromStatus:   from,
			ToStatus:     to,
			ActorID:      opts.ActorID,
			NoteInternal: noteInternal,
			NoteCustomer: noteCustomer,
			CancelReason: cancelReason,
			Forced:       forced,
			CreatedAt:    now,
		}
		if err := orderRepo.CreateStatusHistory(history); err != nil {
			return err
		}
		result.Changed = from != to
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Changed {
		return result, nil
	}

	if forced {
		logger.Warnw("order_transition_forced",
			"order_id", orderID,
			"from", result.From,
			"to", result.To,
			"actor_id", opts.ActorID,
		)
	}
	logger.Infow("order_status_changed",
		"order_id", orderID,
		"from", result.From,
		"to", result.To,
		"actor_id", opts.ActorID,
	)

	action := StockActionFor(result.From, result.To)
	if action == StockActionNone || s.stockActions == nil {
		return result, nil
	}
	result.StockAction = action
	document, err := s.stockActions.Apply(orderID, action, opts.ActorID)
	if err != nil {
		logger.Warnw("order_stock_action_failed",
			"order_id", orderID,
			"action", action,
			"from", result.From,
			"to", result.To,
			"error", err,
		)
		result.StockWarning = err.Error()
		s.stockActions.ScheduleRetry(orderID, action, opts.ActorID)
		return result, nil
	}
	if document != nil {
		result.StockDocumentID = document.ID
	}
	return result, nil
}

func generateOrderNo(now time.Time) string {
	return fmt.Sprintf("CC%s%s", now.Format("20060102150405"), randNumeric(6))
}
