package service

import (
	"errors"
	"fmt"

	"github.com/cangchu-next/internal/repository"
)

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("not found")
	// ErrValidation 参数校验失败
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition 订单状态流转不合法
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrCancelReasonRequired 取消订单需要填写原因
	ErrCancelReasonRequired = errors.New("cancel reason is required")
	// ErrDocumentAlreadyVoid 单据已作废
	ErrDocumentAlreadyVoid = errors.New("stock document already void")
	// ErrDocumentAlreadyPosted 单据已过账，不能再编辑
	ErrDocumentAlreadyPosted = errors.New("stock document already posted")
	// ErrDuplicateStockPosting 单据流水已由其他单据过账
	ErrDuplicateStockPosting = errors.New("stock movements already posted by another document")
	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = repository.ErrInsufficientStock
)

var (
	ErrOrderNotFound         = fmt.Errorf("%w: order", ErrNotFound)
	ErrDocumentNotFound      = fmt.Errorf("%w: stock document", ErrNotFound)
	ErrWarehouseNotFound     = fmt.Errorf("%w: warehouse", ErrNotFound)
	ErrLocationNotFound      = fmt.Errorf("%w: warehouse location", ErrNotFound)
	ErrProductNotFound       = fmt.Errorf("%w: product", ErrNotFound)
	ErrInventoryItemNotFound = fmt.Errorf("%w: inventory item", ErrNotFound)
)

var (
	ErrWarehouseCodeExists  = fmt.Errorf("%w: warehouse code already exists", ErrValidation)
	ErrLocationCodeExists   = fmt.Errorf("%w: location code already exists", ErrValidation)
	ErrWarehouseIsDefault   = fmt.Errorf("%w: default warehouse cannot be deactivated", ErrValidation)
	ErrWarehouseInactive    = fmt.Errorf("%w: warehouse is inactive", ErrValidation)
	ErrUnknownOrderStatus   = fmt.Errorf("%w: unknown order status", ErrValidation)
	ErrUnknownStockAction   = fmt.Errorf("%w: unknown stock action", ErrValidation)
	ErrUnknownDocumentType  = fmt.Errorf("%w: unknown stock document type", ErrValidation)
	ErrInvalidPaymentAmount = fmt.Errorf("%w: payment amount must be positive", ErrValidation)
)

// StockShortageError 库存不足明细
type StockShortageError = repository.StockShortageError

// TransitionError 订单状态流转错误
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition: %s -> %s", e.From, e.To)
}

// Is 使 errors.Is(err, ErrInvalidTransition) 成立
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
