package service

import (
	"strings"

	"github.com/cangchu-next/internal/constants"
)

// orderStatusTransitions 订单状态邻接表；未出现的状态为终态
var orderStatusTransitions = map[string][]string{
	constants.OrderStatusDraft: {
		constants.OrderStatusPendingConfirmation,
		constants.OrderStatusCanceled,
	},
	constants.OrderStatusPendingConfirmation: {
		constants.OrderStatusConfirmed,
		constants.OrderStatusCanceled,
		constants.OrderStatusFailed,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusPacking,
		constants.OrderStatusCanceled,
		constants.OrderStatusFailed,
	},
	constants.OrderStatusPacking: {
		constants.OrderStatusShipped,
		constants.OrderStatusCanceled,
		constants.OrderStatusFailed,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered,
		constants.OrderStatusReturnRequested,
	},
	constants.OrderStatusDelivered: {
		constants.OrderStatusReturnRequested,
	},
	constants.OrderStatusReturnRequested: {
		constants.OrderStatusReturned,
	},
}

var knownOrderStatuses = []string{
	constants.OrderStatusDraft,
	constants.OrderStatusPendingConfirmation,
	constants.OrderStatusConfirmed,
	constants.OrderStatusPacking,
	constants.OrderStatusShipped,
	constants.OrderStatusDelivered,
	constants.OrderStatusReturnRequested,
	constants.OrderStatusReturned,
	constants.OrderStatusCanceled,
	constants.OrderStatusFailed,
}

// KnownOrderStatuses 返回全部订单状态
func KnownOrderStatuses() []string {
	result := make([]string, len(knownOrderStatuses))
	copy(result, knownOrderStatuses)
	return result
}

// NormalizeOrderStatus 归一化状态值，未知状态返回 false
func NormalizeOrderStatus(raw string) (string, bool) {
	status := strings.ToUpper(strings.TrimSpace(raw))
	for _, known := range knownOrderStatuses {
		if status == known {
			return status, true
		}
	}
	return "", false
}

// IsTransitionAllowed 判断状态流转是否在邻接表内，同状态总是允许
func IsTransitionAllowed(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range orderStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions 返回可流转的目标状态
func AllowedTransitions(from string) []string {
	nexts := orderStatusTransitions[from]
	result := make([]string, len(nexts))
	copy(result, nexts)
	return result
}

// IsTerminalOrderStatus 判断是否终态
func IsTerminalOrderStatus(status string) bool {
	return len(orderStatusTransitions[status]) == 0
}

// FulfillmentStatusFor 由订单状态派生履约状态
func FulfillmentStatusFor(orderStatus string) string {
	switch orderStatus {
	case constants.OrderStatusPacking:
		return constants.FulfillmentStatusPacking
	case constants.OrderStatusShipped:
		return constants.FulfillmentStatusShipped
	case constants.OrderStatusDelivered:
		return constants.FulfillmentStatusDelivered
	case constants.OrderStatusReturned:
		return constants.FulfillmentStatusReturned
	default:
		return constants.FulfillmentStatusUnfulfilled
	}
}

// LegacyStatusFor 由订单状态派生旧版粗粒度状态
func LegacyStatusFor(orderStatus string) string {
	switch orderStatus {
	case constants.OrderStatusShipped:
		return constants.LegacyOrderStatusShipped
	case constants.OrderStatusDelivered:
		return constants.LegacyOrderStatusDelivered
	case constants.OrderStatusCanceled, constants.OrderStatusFailed:
		return constants.LegacyOrderStatusCancelled
	default:
		return constants.LegacyOrderStatusPending
	}
}
