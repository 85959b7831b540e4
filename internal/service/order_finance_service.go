package service

import (
	"strings"
	"time"

	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/queue"
	"github.com/cangchu-next/internal/repository"

	"github.com/shopspring/decimal"
)

// FinancialRecalculator 订单财务重算
type FinancialRecalculator interface {
	Recalc(orderID uint) (*OrderFinancials, error)
}

// OrderFinancials 订单财务汇总
type OrderFinancials struct {
	OrderID           uint         `json:"order_id"`
	TotalAmount       models.Money `json:"total_amount"`
	PaidAmount        models.Money `json:"paid_amount"`
	OutstandingAmount models.Money `json:"outstanding_amount"`
	PaymentState      string       `json:"payment_state"`
	AccountingStatus  string       `json:"accounting_status"`
}

// OrderFinanceService 基于支付记录的财务重算实现
type OrderFinanceService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	queueClient *queue.Client
}

// NewOrderFinanceService 创建财务重算服务
func NewOrderFinanceService(orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, queueClient *queue.Client) *OrderFinanceService {
	return &OrderFinanceService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		queueClient: queueClient,
	}
}

// RecordPaymentInput 登记收退款输入
type RecordPaymentInput struct {
	OrderID     uint
	Direction   string
	Amount      decimal.Decimal
	Status      string
	ProviderRef string
}

// RecordPaymentResult 登记结果；Financials 为空表示重算已交给队列
type RecordPaymentResult struct {
	Payment    *models.Payment  `json:"payment"`
	Financials *OrderFinancials `json:"financials,omitempty"`
	Queued     bool             `json:"queued"`
}

// Recalc 重算订单已收/待收金额与收款状态，只写财务列
func (s *OrderFinanceService) Recalc(orderID uint) (*OrderFinancials, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	payments, err := s.paymentRepo.ListByOrderAndStatus(orderID, constants.PaymentStatusSuccess)
	if err != nil {
		return nil, err
	}

	financials := computeOrderFinancials(order, payments)
	if err := s.orderRepo.UpdateFields(order.ID, map[string]interface{}{
		"paid_amount":        financials.PaidAmount,
		"outstanding_amount": financials.OutstandingAmount,
		"payment_state":      financials.PaymentState,
		"accounting_status":  financials.AccountingStatus,
		"updated_at":         time.Now(),
	}); err != nil {
		return nil, err
	}
	return financials, nil
}

// RecordPayment 登记收退款并触发重算
func (s *OrderFinanceService) RecordPayment(input RecordPaymentInput) (*RecordPaymentResult, error) {
	direction := strings.ToLower(strings.TrimSpace(input.Direction))
	if direction == "" {
		direction = constants.PaymentDirectionIn
	}
	if direction != constants.PaymentDirectionIn && direction != constants.PaymentDirectionOut {
		return nil, validationError("unknown payment direction %q", input.Direction)
	}
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}
	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = constants.PaymentStatusSuccess
	}
	switch status {
	case constants.PaymentStatusPending, constants.PaymentStatusSuccess, constants.PaymentStatusFailed:
	default:
		return nil, validationError("unknown payment status %q", input.Status)
	}

	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	providerRef := strings.TrimSpace(input.ProviderRef)
	if providerRef != "" {
		existing, err := s.paymentRepo.GetLatestByProviderRef(providerRef)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.OrderID == order.ID {
			financials, err := s.Recalc(order.ID)
			if err != nil {
				return nil, err
			}
			return &RecordPaymentResult{Payment: existing, Financials: financials}, nil
		}
	}

	now := time.Now()
	payment := &models.Payment{
		OrderID:     order.ID,
		Direction:   direction,
		Amount:      models.NewMoneyFromDecimal(input.Amount.Round(2)),
		Currency:    order.Currency,
		Status:      status,
		ProviderRef: providerRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == constants.PaymentStatusSuccess {
		payment.PaidAt = &now
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}
	logger.Infow("order_payment_recorded",
		"order_id", order.ID,
		"payment_id", payment.ID,
		"direction", direction,
		"amount", payment.Amount.String(),
		"status", status,
	)

	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueOrderFinanceRecalc(queue.OrderFinanceRecalcPayload{OrderID: order.ID}, 0); err == nil {
			return &RecordPaymentResult{Payment: payment, Queued: true}, nil
		} else {
			logger.Warnw("order_finance_recalc_enqueue_failed", "order_id", order.ID, "error", err)
		}
	}
	financials, err := s.Recalc(order.ID)
	if err != nil {
		return nil, err
	}
	return &RecordPaymentResult{Payment: payment, Financials: financials}, nil
}

// computeOrderFinancials 按成功的收退款计算财务状态
// 已取消/失败/已退货订单不再有待收金额，已收款需退回
func computeOrderFinancials(order *models.Order, payments []models.Payment) *OrderFinancials {
	captured := decimal.Zero
	refunded := decimal.Zero
	for _, payment := range payments {
		if payment.Status != constants.PaymentStatusSuccess {
			continue
		}
		switch payment.Direction {
		case constants.PaymentDirectionIn:
			captured = captured.Add(payment.Amount.Decimal)
		case constants.PaymentDirectionOut:
			refunded = refunded.Add(payment.Amount.Decimal)
		}
	}
	total := order.TotalAmount.Decimal.Round(2)
	paid := captured.Sub(refunded).Round(2)
	outstanding := total.Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	paymentState := constants.PaymentStateUnpaid
	switch {
	case refunded.IsPositive() && !paid.IsPositive():
		paymentState = constants.PaymentStateRefunded
	case !paid.IsPositive():
		paymentState = constants.PaymentStateUnpaid
	case paid.LessThan(total):
		paymentState = constants.PaymentStatePartiallyPaid
	case paid.Equal(total):
		paymentState = constants.PaymentStatePaid
	default:
		paymentState = constants.PaymentStateOverpaid
	}

	accountingStatus := constants.AccountingStatusOpen
	switch order.OrderStatus {
	case constants.OrderStatusCanceled, constants.OrderStatusFailed, constants.OrderStatusReturned:
		outstanding = decimal.Zero
		if paid.IsPositive() {
			accountingStatus = constants.AccountingStatusRefundDue
		} else {
			accountingStatus = constants.AccountingStatusSettled
		}
	default:
		switch {
		case paid.GreaterThan(total):
			accountingStatus = constants.AccountingStatusRefundDue
		case paid.Equal(total):
			accountingStatus = constants.AccountingStatusSettled
		}
	}

	return &OrderFinancials{
		OrderID:           order.ID,
		TotalAmount:       models.NewMoneyFromDecimal(total),
		PaidAmount:        models.NewMoneyFromDecimal(paid),
		OutstandingAmount: models.NewMoneyFromDecimal(outstanding),
		PaymentState:      paymentState,
		AccountingStatus:  accountingStatus,
	}
}
