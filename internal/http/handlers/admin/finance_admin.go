package admin

import (
	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/repository"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest 登记支付请求
type RecordPaymentRequest struct {
	Direction   string          `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	ProviderRef string          `json:"provider_ref"`
}

// ListOrderPayments 订单支付流水
func (h *Handler) ListOrderPayments(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.order_id_invalid")
	if !ok {
		return
	}
	page, pageSize := readPagination(c)
	payments, total, err := h.PaymentRepo.ListAdmin(repository.PaymentListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderID:  id,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.payment_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, payments, buildPagination(page, pageSize, total))
}

// RecordOrderPayment 登记支付并触发财务重算
func (h *Handler) RecordOrderPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.order_id_invalid")
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.OrderFinanceService.RecordPayment(service.RecordPaymentInput{
		OrderID:     id,
		Direction:   req.Direction,
		Amount:      req.Amount,
		Status:      req.Status,
		ProviderRef: req.ProviderRef,
	})
	if err != nil {
		respondServiceError(c, err, "error.payment_save_failed")
		return
	}
	response.Success(c, result)
}

// RecalcOrderFinance 手动重算订单财务字段
func (h *Handler) RecalcOrderFinance(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.order_id_invalid")
	if !ok {
		return
	}
	financials, err := h.OrderFinanceService.Recalc(id)
	if err != nil {
		respondServiceError(c, err, "error.order_finance_recalc_failed")
		return
	}
	response.Success(c, financials)
}
