package queue

import (
	"encoding/json"

	"github.com/cangchu-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskStockActionRetry 订单库存动作重试任务
	TaskStockActionRetry = constants.TaskStockActionRetry
	// TaskOrderFinanceRecalc 订单财务重算任务
	TaskOrderFinanceRecalc = constants.TaskOrderFinanceRecalc
)

// StockActionRetryPayload 库存动作重试载荷
type StockActionRetryPayload struct {
	OrderID uint   `json:"order_id"`
	Action  string `json:"action"`
	ActorID uint   `json:"actor_id"`
}

// OrderFinanceRecalcPayload 财务重算载荷
type OrderFinanceRecalcPayload struct {
	OrderID uint `json:"order_id"`
}

// NewStockActionRetryTask 创建库存动作重试任务
func NewStockActionRetryTask(payload StockActionRetryPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockActionRetry, body), nil
}

// NewOrderFinanceRecalcTask 创建财务重算任务
func NewOrderFinanceRecalcTask(payload OrderFinanceRecalcPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderFinanceRecalc, body), nil
}
