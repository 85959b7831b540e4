package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/provider"
	"github.com/cangchu-next/internal/queue"
	"github.com/cangchu-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskStockActionRetry, c.handleStockActionRetry)
	mux.HandleFunc(queue.TaskOrderFinanceRecalc, c.handleOrderFinanceRecalc)
}

func (c *Consumer) handleStockActionRetry(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_stock_action_retry_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StockActionRetryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_stock_action_retry_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 || payload.Action == "" {
		logger.Debugw("worker_stock_action_retry_skip_invalid_payload", "order_id", payload.OrderID, "action", payload.Action)
		return nil
	}
	if c.Container == nil || c.StockActionService == nil {
		logger.Warnw("worker_stock_action_retry_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	document, err := c.StockActionService.Apply(payload.OrderID, payload.Action, payload.ActorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_stock_action_retry_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrUnknownStockAction):
			logger.Warnw("worker_stock_action_retry_skip_unknown_action", "order_id", payload.OrderID, "action", payload.Action)
			return nil
		default:
			logger.Warnw("worker_stock_action_retry_failed",
				"order_id", payload.OrderID,
				"action", payload.Action,
				"retry_count", retryCount(ctx),
				"error", err,
			)
			return err
		}
	}
	if document != nil {
		logger.Infow("worker_stock_action_retry_applied",
			"order_id", payload.OrderID,
			"action", payload.Action,
			"document_id", document.ID,
			"document_code", document.Code,
		)
	}
	return nil
}

func (c *Consumer) handleOrderFinanceRecalc(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_finance_recalc_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderFinanceRecalcPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_finance_recalc_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_finance_recalc_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.Container == nil || c.OrderFinanceService == nil {
		logger.Warnw("worker_order_finance_recalc_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	financials, err := c.OrderFinanceService.Recalc(payload.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Debugw("worker_order_finance_recalc_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_finance_recalc_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	logger.Debugw("worker_order_finance_recalc_done",
		"order_id", payload.OrderID,
		"payment_state", financials.PaymentState,
		"accounting_status", financials.AccountingStatus,
	)
	return nil
}

func retryCount(ctx context.Context) int {
	if ctx == nil {
		return 0
	}
	count, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return 0
	}
	return count
}
