package admin

import (
	"strings"

	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateReorderPointRequest 设置补货点请求
type UpdateReorderPointRequest struct {
	ReorderPoint *int `json:"reorder_point" binding:"required"`
}

// ListInventory 库存余额列表
func (h *Handler) ListInventory(c *gin.Context) {
	page, pageSize := readPagination(c)
	items, total, err := h.InventoryService.ListItems(repository.InventoryItemListFilter{
		Page:         page,
		PageSize:     pageSize,
		ProductID:    parseQueryUint(c, "product_id"),
		WarehouseID:  parseQueryUint(c, "warehouse_id"),
		LowStockOnly: parseQueryBool(c, "low_stock"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.inventory_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, buildPagination(page, pageSize, total))
}

// UpdateReorderPoint 设置补货点
func (h *Handler) UpdateReorderPoint(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.inventory_item_id_invalid")
	if !ok {
		return
	}
	var req UpdateReorderPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	item, err := h.InventoryService.SetReorderPoint(id, *req.ReorderPoint)
	if err != nil {
		respondServiceError(c, err, "error.inventory_save_failed")
		return
	}
	response.Success(c, item)
}

// GetProductStockSummary 商品库存汇总（带缓存）
func (h *Handler) GetProductStockSummary(c *gin.Context) {
	productID, ok := parseIDParam(c, "product_id", "error.product_id_invalid")
	if !ok {
		return
	}
	summary, err := h.InventoryService.ProductSummary(c.Request.Context(), productID)
	if err != nil {
		respondServiceError(c, err, "error.inventory_fetch_failed")
		return
	}
	response.Success(c, summary)
}

// ListStockMovements 库存流水列表
func (h *Handler) ListStockMovements(c *gin.Context) {
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
	movements, total, err := h.InventoryService.ListMovements(repository.StockMovementListFilter{
		Page:         page,
		PageSize:     pageSize,
		DocumentID:   parseQueryUint(c, "document_id"),
		ProductID:    parseQueryUint(c, "product_id"),
		WarehouseID:  parseQueryUint(c, "warehouse_id"),
		MovementType: strings.ToUpper(strings.TrimSpace(c.Query("movement_type"))),
		KeyPrefix:    strings.TrimSpace(c.Query("key_prefix")),
		CreatedFrom:  createdFrom,
		CreatedTo:    createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.inventory_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, movements, buildPagination(page, pageSize, total))
}
