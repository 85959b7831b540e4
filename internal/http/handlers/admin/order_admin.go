package admin

import (
	"strings"

	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/repository"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateOrderItemRequest 订单项请求
type CreateOrderItemRequest struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	OrderNo                string                   `json:"order_no"`
	Status                 string                   `json:"status"`
	Currency               string                   `json:"currency"`
	FulfillmentWarehouseID *uint                    `json:"fulfillment_warehouse_id"`
	Items                  []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest 订单状态流转请求
type UpdateOrderStatusRequest struct {
	Status       string `json:"status" binding:"required"`
	NoteInternal string `json:"note_internal"`
	NoteCustomer string `json:"note_customer"`
	CancelReason string `json:"cancel_reason"`
	Force        bool   `json:"force"`
}

// ListOrders 订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := readPagination(c)
	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	status := strings.TrimSpace(c.Query("status"))
	if status != "" {
		normalized, ok := service.NormalizeOrderStatus(status)
		if !ok {
			respondError(c, response.CodeBadRequest, "error.order_status_invalid", nil)
			return
		}
		status = normalized
	}
	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		Status:      status,
		OrderNo:     strings.TrimSpace(c.Query("order_no")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, buildPagination(page, pageSize, total))
}

// CreateOrder 录入订单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	items := make([]service.CreateOrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		OrderNo:                req.OrderNo,
		Status:                 req.Status,
		Currency:               req.Currency,
		FulfillmentWarehouseID: req.FulfillmentWarehouseID,
		Items:                  items,
	})
	if err != nil {
		respondServiceError(c, err, "error.order_create_failed")
		return
	}
	response.Success(c, order)
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.order_id_invalid")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(id)
	if err != nil {
		respondServiceError(c, err, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 订单状态流转
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "error.order_id_invalid")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	result, err := h.OrderService.Transition(id, req.Status, service.TransitionOptions{
		ActorID:      adminID,
		NoteInternal: req.NoteInternal,
		NoteCustomer: req.NoteCustomer,
		CancelReason: req.CancelReason,
		Force:        req.Force,
	})
	if err != nil {
		respondServiceError(c, err, "error.order_update_failed")
		return
	}
	if result.StockWarning != "" {
		requestLog(c).Warnw("admin_order_transition_stock_warning",
			"order_id", id,
			"stock_action", result.StockAction,
			"warning", result.StockWarning,
		)
	}
	response.Success(c, result)
}

// ListOrderStatusHistory 订单状态流转记录
func (h *Handler) ListOrderStatusHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.order_id_invalid")
	if !ok {
		return
	}
	histories, err := h.OrderService.ListHistory(id)
	if err != nil {
		respondServiceError(c, err, "error.order_fetch_failed")
		return
	}
	response.Success(c, histories)
}

// GetOrderTransitions 当前状态可流转的目标状态
func (h *Handler) GetOrderTransitions(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.order_id_invalid")
	if !ok {
		return
	}
	current, allowed, err := h.OrderService.AllowedTransitionsFor(id)
	if err != nil {
		respondServiceError(c, err, "error.order_fetch_failed")
		return
	}
	response.Success(c, gin.H{
		"order_status": current,
		"allowed":      allowed,
		"terminal":     service.IsTerminalOrderStatus(current),
	})
}
