package service

import (
	"testing"

	"github.com/cangchu-next/internal/constants"
)

func TestDerivedStatusMapping(t *testing.T) {
	cases := []struct {
		status      string
		fulfillment string
		legacy      string
	}{
		{constants.OrderStatusDraft, constants.FulfillmentStatusUnfulfilled, constants.LegacyOrderStatusPending},
		{constants.OrderStatusPendingConfirmation, constants.FulfillmentStatusUnfulfilled, constants.LegacyOrderStatusPending},
		{constants.OrderStatusConfirmed, constants.FulfillmentStatusUnfulfilled, constants.LegacyOrderStatusPending},
		{constants.OrderStatusPacking, constants.FulfillmentStatusPacking, constants.LegacyOrderStatusPending},
		{constants.OrderStatusShipped, constants.FulfillmentStatusShipped, constants.LegacyOrderStatusShipped},
		{constants.OrderStatusDelivered, constants.FulfillmentStatusDelivered, constants.LegacyOrderStatusDelivered},
		{constants.OrderStatusReturnRequested, constants.FulfillmentStatusUnfulfilled, constants.LegacyOrderStatusPending},
		{constants.OrderStatusReturned, constants.FulfillmentStatusReturned, constants.LegacyOrderStatusPending},
		{constants.OrderStatusCanceled, constants.FulfillmentStatusUnfulfilled, constants.LegacyOrderStatusCancelled},
		{constants.OrderStatusFailed, constants.FulfillmentStatusUnfulfilled, constants.LegacyOrderStatusCancelled},
	}
	for _, tc := range cases {
		if got := FulfillmentStatusFor(tc.status); got != tc.fulfillment {
			t.Fatalf("fulfillment for %s want %s got %s", tc.status, tc.fulfillment, got)
		}
		if got := LegacyStatusFor(tc.status); got != tc.legacy {
			t.Fatalf("legacy for %s want %s got %s", tc.status, tc.legacy, got)
		}
	}
}

func TestStockActionFor(t *testing.T) {
	cases := []struct {
		from string
		to   string
		want string
	}{
		{constants.OrderStatusPendingConfirmation, constants.OrderStatusConfirmed, StockActionReserve},
		{constants.OrderStatusConfirmed, constants.OrderStatusConfirmed, StockActionNone},
		{constants.OrderStatusPacking, constants.OrderStatusShipped, StockActionDeduct},
		{constants.OrderStatusPendingConfirmation, constants.OrderStatusShipped, StockActionDeduct},
		{constants.OrderStatusConfirmed, constants.OrderStatusCanceled, StockActionRelease},
		{constants.OrderStatusPacking, constants.OrderStatusFailed, StockActionRelease},
		{constants.OrderStatusPendingConfirmation, constants.OrderStatusCanceled, StockActionNone},
		{constants.OrderStatusShipped, constants.OrderStatusReturned, StockActionRestock},
		{constants.OrderStatusDelivered, constants.OrderStatusReturned, StockActionRestock},
		{constants.OrderStatusReturnRequested, constants.OrderStatusReturned, StockActionRestock},
		{constants.OrderStatusConfirmed, constants.OrderStatusReturned, StockActionNone},
		{constants.OrderStatusConfirmed, constants.OrderStatusPacking, StockActionNone},
		{constants.OrderStatusShipped, constants.OrderStatusDelivered, StockActionNone},
	}
	for _, tc := range cases {
		if got := StockActionFor(tc.from, tc.to); got != tc.want {
			t.Fatalf("stock action %s -> %s want %q got %q", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestNormalizeOrderStatus(t *testing.T) {
	status, ok := NormalizeOrderStatus(" shipped ")
	if !ok || status != constants.OrderStatusShipped {
		t.Fatalf("normalize want SHIPPED got %q ok=%v", status, ok)
	}
	if _, ok := NormalizeOrderStatus("lost"); ok {
		t.Fatalf("unknown status should not normalize")
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, status := range []string{constants.OrderStatusCanceled, constants.OrderStatusFailed, constants.OrderStatusReturned} {
		if !IsTerminalOrderStatus(status) {
			t.Fatalf("%s should be terminal", status)
		}
		if len(AllowedTransitions(status)) != 0 {
			t.Fatalf("%s should have no outbound transitions", status)
		}
	}
	if IsTerminalOrderStatus(constants.OrderStatusShipped) {
		t.Fatalf("SHIPPED should not be terminal")
	}
	if !IsTransitionAllowed(constants.OrderStatusCanceled, constants.OrderStatusCanceled) {
		t.Fatalf("same-state transition should always be allowed")
	}
}
