package admin

import (
	"strings"

	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/repository"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateWarehouseRequest 创建仓库请求
type CreateWarehouseRequest struct {
	Code      string `json:"code" binding:"required"`
	Name      string `json:"name" binding:"required"`
	IsDefault bool   `json:"is_default"`
}

// CreateLocationRequest 创建库位请求
type CreateLocationRequest struct {
	Code      string `json:"code" binding:"required"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// ListWarehouses 仓库列表
func (h *Handler) ListWarehouses(c *gin.Context) {
	page, pageSize := readPagination(c)
	warehouses, total, err := h.WarehouseService.List(repository.WarehouseListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     strings.TrimSpace(c.Query("search")),
		OnlyActive: parseQueryBool(c, "only_active"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.warehouse_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, warehouses, buildPagination(page, pageSize, total))
}

// CreateWarehouse 创建仓库
func (h *Handler) CreateWarehouse(c *gin.Context) {
	var req CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	warehouse, err := h.WarehouseService.Create(service.CreateWarehouseInput{
		Code:      req.Code,
		Name:      req.Name,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondServiceError(c, err, "error.warehouse_save_failed")
		return
	}
	response.Success(c, warehouse)
}

// SetDefaultWarehouse 设为默认仓库
func (h *Handler) SetDefaultWarehouse(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.warehouse_id_invalid")
	if !ok {
		return
	}
	warehouse, err := h.WarehouseService.SetDefault(id)
	if err != nil {
		respondServiceError(c, err, "error.warehouse_save_failed")
		return
	}
	response.Success(c, warehouse)
}

// DeactivateWarehouse 停用仓库（仓库不做物理删除）
func (h *Handler) DeactivateWarehouse(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.warehouse_id_invalid")
	if !ok {
		return
	}
	if err := h.WarehouseService.Deactivate(id); err != nil {
		respondServiceError(c, err, "error.warehouse_save_failed")
		return
	}
	response.Success(c, gin.H{"id": id, "is_active": false})
}

// ListWarehouseLocations 库位列表
func (h *Handler) ListWarehouseLocations(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.warehouse_id_invalid")
	if !ok {
		return
	}
	locations, err := h.WarehouseService.ListLocations(id)
	if err != nil {
		respondServiceError(c, err, "error.warehouse_fetch_failed")
		return
	}
	response.Success(c, locations)
}

// CreateWarehouseLocation 创建库位
func (h *Handler) CreateWarehouseLocation(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.warehouse_id_invalid")
	if !ok {
		return
	}
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	location, err := h.WarehouseService.CreateLocation(id, service.CreateLocationInput{
		Code:      req.Code,
		Name:      req.Name,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondServiceError(c, err, "error.warehouse_save_failed")
		return
	}
	response.Success(c, location)
}

// SetDefaultWarehouseLocation 设为默认库位
func (h *Handler) SetDefaultWarehouseLocation(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.warehouse_id_invalid")
	if !ok {
		return
	}
	locationID, ok := parseIDParam(c, "location_id", "error.location_id_invalid")
	if !ok {
		return
	}
	location, err := h.WarehouseService.SetDefaultLocation(id, locationID)
	if err != nil {
		respondServiceError(c, err, "error.warehouse_save_failed")
		return
	}
	response.Success(c, location)
}
