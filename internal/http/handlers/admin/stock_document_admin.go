package admin

import (
	"strings"

	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/repository"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
)

// StockDocumentLineRequest 单据行请求
type StockDocumentLineRequest struct {
	ProductID        uint   `json:"product_id" binding:"required"`
	Quantity         int    `json:"quantity"`
	Direction        string `json:"direction"`
	LocationID       *uint  `json:"location_id"`
	TargetLocationID *uint  `json:"target_location_id"`
}

// CreateStockDocumentRequest 创建单据请求
type CreateStockDocumentRequest struct {
	Type              string                     `json:"type" binding:"required"`
	WarehouseID       uint                       `json:"warehouse_id"`
	TargetWarehouseID *uint                      `json:"target_warehouse_id"`
	ReferenceType     string                     `json:"reference_type"`
	ReferenceID       string                     `json:"reference_id"`
	Note              string                     `json:"note"`
	Lines             []StockDocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostNow           bool                       `json:"post_now"`
}

// UpdateStockDocumentRequest 编辑草稿请求，字段缺省表示不修改
type UpdateStockDocumentRequest struct {
	Note          *string                    `json:"note"`
	ReferenceType *string                    `json:"reference_type"`
	ReferenceID   *string                    `json:"reference_id"`
	Lines         []StockDocumentLineRequest `json:"lines" binding:"omitempty,dive"`
}

func toLineInputs(lines []StockDocumentLineRequest) []service.StockDocumentLineInput {
	if lines == nil {
		return nil
	}
	inputs := make([]service.StockDocumentLineInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, service.StockDocumentLineInput{
			ProductID:        line.ProductID,
			Quantity:         line.Quantity,
			Direction:        line.Direction,
			LocationID:       line.LocationID,
			TargetLocationID: line.TargetLocationID,
		})
	}
	return inputs
}

// ListStockDocuments 库存单据列表
func (h *Handler) ListStockDocuments(c *gin.Context) {
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
	documents, total, err := h.StockDocumentService.List(repository.StockDocumentListFilter{
		Page:          page,
		PageSize:      pageSize,
		Type:          strings.ToUpper(strings.TrimSpace(c.Query("type"))),
		Status:        strings.ToUpper(strings.TrimSpace(c.Query("status"))),
		WarehouseID:   parseQueryUint(c, "warehouse_id"),
		ReferenceType: strings.TrimSpace(c.Query("reference_type")),
		ReferenceID:   strings.TrimSpace(c.Query("reference_id")),
		Search:        strings.TrimSpace(c.Query("search")),
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.stock_document_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, documents, buildPagination(page, pageSize, total))
}

// CreateStockDocument 创建草稿单据，post_now=true 时立即过账
func (h *Handler) CreateStockDocument(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req CreateStockDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	document, err := h.StockDocumentService.Create(service.CreateStockDocumentInput{
		Type:              req.Type,
		WarehouseID:       req.WarehouseID,
		TargetWarehouseID: req.TargetWarehouseID,
		ReferenceType:     req.ReferenceType,
		ReferenceID:       req.ReferenceID,
		Note:              req.Note,
		CreatedBy:         adminID,
		Lines:             toLineInputs(req.Lines),
	})
	if err != nil {
		respondServiceError(c, err, "error.stock_document_save_failed")
		return
	}
	if req.PostNow {
		posted, err := h.StockDocumentService.Post(document.ID, adminID)
		if err != nil {
			respondServiceError(c, err, "error.stock_document_post_failed")
			return
		}
		document = posted
	}
	response.Success(c, document)
}

// GetStockDocument 单据详情
func (h *Handler) GetStockDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.stock_document_id_invalid")
	if !ok {
		return
	}
	document, err := h.StockDocumentService.Get(id)
	if err != nil {
		respondServiceError(c, err, "error.stock_document_fetch_failed")
		return
	}
	response.Success(c, document)
}

// UpdateStockDocument 编辑草稿单据
func (h *Handler) UpdateStockDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.stock_document_id_invalid")
	if !ok {
		return
	}
	var req UpdateStockDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	document, err := h.StockDocumentService.UpdateDraft(id, service.UpdateStockDocumentInput{
		Note:          req.Note,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Lines:         toLineInputs(req.Lines),
	})
	if err != nil {
		respondServiceError(c, err, "error.stock_document_save_failed")
		return
	}
	response.Success(c, document)
}

// PostStockDocument 过账单据（重复过账返回原结果）
func (h *Handler) PostStockDocument(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "error.stock_document_id_invalid")
	if !ok {
		return
	}
	document, err := h.StockDocumentService.Post(id, adminID)
	if err != nil {
		respondServiceError(c, err, "error.stock_document_post_failed")
		return
	}
	requestLog(c).Infow("admin_stock_document_posted", "document_id", document.ID, "admin_id", adminID)
	response.Success(c, document)
}

// VoidStockDocument 作废单据，已过账单据写入冲销流水
func (h *Handler) VoidStockDocument(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "error.stock_document_id_invalid")
	if !ok {
		return
	}
	document, err := h.StockDocumentService.Void(id, adminID)
	if err != nil {
		respondServiceError(c, err, "error.stock_document_void_failed")
		return
	}
	requestLog(c).Infow("admin_stock_document_voided", "document_id", document.ID, "admin_id", adminID)
	response.Success(c, document)
}

// ListStockDocumentMovements 单据关联的库存流水
func (h *Handler) ListStockDocumentMovements(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "error.stock_document_id_invalid")
	if !ok {
		return
	}
	movements, err := h.StockDocumentService.Movements(id)
	if err != nil {
		respondServiceError(c, err, "error.stock_document_fetch_failed")
		return
	}
	response.Success(c, movements)
}
