package constants

// 订单状态常量（状态机取值）
const (
	OrderStatusDraft               = "DRAFT"
	OrderStatusPendingConfirmation = "PENDING_CONFIRMATION"
	OrderStatusConfirmed           = "CONFIRMED"
	OrderStatusPacking             = "PACKING"
	OrderStatusShipped             = "SHIPPED"
	OrderStatusDelivered           = "DELIVERED"
	OrderStatusReturnRequested     = "RETURN_REQUESTED"
	OrderStatusReturned            = "RETURNED"
	OrderStatusCanceled            = "CANCELED"
	OrderStatusFailed              = "FAILED"
)

// 履约状态常量（由订单状态派生）
const (
	FulfillmentStatusUnfulfilled = "UNFULFILLED"
	FulfillmentStatusPacking     = "PACKING"
	FulfillmentStatusShipped     = "SHIPPED"
	FulfillmentStatusDelivered   = "DELIVERED"
	FulfillmentStatusReturned    = "RETURNED"
)

// 旧版粗粒度订单状态（兼容字段）
const (
	LegacyOrderStatusPending   = "PENDING"
	LegacyOrderStatusShipped   = "SHIPPED"
	LegacyOrderStatusDelivered = "DELIVERED"
	LegacyOrderStatusCancelled = "CANCELLED"
)

// 库存单据类型
const (
	StockDocTypeGRN        = "GRN"
	StockDocTypeIssue      = "ISSUE"
	StockDocTypeAdjustment = "ADJUSTMENT"
	StockDocTypeTransfer   = "TRANSFER"
	StockDocTypeReserve    = "RESERVE"
	StockDocTypeRelease    = "RELEASE"
	StockDocTypeDeduct     = "DEDUCT"
	StockDocTypeRestock    = "RESTOCK"
)

// 库存单据状态
const (
	StockDocStatusDraft  = "DRAFT"
	StockDocStatusPosted = "POSTED"
	StockDocStatusVoid   = "VOID"
)

// 单据行方向（调整单使用）
const (
	StockDirectionIn  = "IN"
	StockDirectionOut = "OUT"
)

// 单据关联来源
const (
	StockRefTypeOrder = "order"
)

// 库存流水类型（作废冲销使用独立类型）
const (
	StockMovementTypeReversal = "REVERSAL"
)

// 支付方向与状态
const (
	PaymentDirectionIn  = "in"
	PaymentDirectionOut = "out"

	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// 订单收款状态
const (
	PaymentStateUnpaid        = "UNPAID"
	PaymentStatePartiallyPaid = "PARTIALLY_PAID"
	PaymentStatePaid          = "PAID"
	PaymentStateOverpaid      = "OVERPAID"
	PaymentStateRefunded      = "REFUNDED"
)

// 订单对账状态
const (
	AccountingStatusOpen      = "OPEN"
	AccountingStatusSettled   = "SETTLED"
	AccountingStatusRefundDue = "REFUND_DUE"
)

// 默认仓库
const (
	DefaultWarehouseCode = "MAIN"
	DefaultWarehouseName = "主仓"
)

// 队列与任务
const (
	QueueDefault           = "default"
	QueueCritical          = "critical"
	TaskStockActionRetry   = "stock:action:retry"
	TaskOrderFinanceRecalc = "order:finance:recalc"
)
