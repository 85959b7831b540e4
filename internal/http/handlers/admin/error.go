package admin

import (
	"errors"
	"strings"

	handlershared "github.com/cangchu-next/internal/http/handlers/shared"
	"github.com/cangchu-next/internal/http/response"
	"github.com/cangchu-next/internal/i18n"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

// notFoundKeys 按具体资源映射 404 文案
var notFoundKeys = []struct {
	err error
	key string
}{
	{service.ErrOrderNotFound, "error.order_not_found"},
	{service.ErrDocumentNotFound, "error.stock_document_not_found"},
	{service.ErrWarehouseNotFound, "error.warehouse_not_found"},
	{service.ErrLocationNotFound, "error.location_not_found"},
	{service.ErrProductNotFound, "error.product_not_found"},
	{service.ErrInventoryItemNotFound, "error.inventory_item_not_found"},
}

// respondServiceError 将 service 层错误映射为 404 / 400 / 409，其余按 fallbackKey 返回 500
func respondServiceError(c *gin.Context, err error, fallbackKey string) {
	locale := i18n.ResolveLocale(c)
	var transitionErr *service.TransitionError
	var shortageErr *service.StockShortageError
	switch {
	case errors.Is(err, service.ErrNotFound):
		for _, item := range notFoundKeys {
			if errors.Is(err, item.err) {
				respondError(c, response.CodeNotFound, item.key, nil)
				return
			}
		}
		respondError(c, response.CodeNotFound, "error.not_found", nil)
	case errors.As(err, &transitionErr):
		response.ErrorWithData(c, response.CodeConflict,
			i18n.Sprintf(locale, "error.order_transition_invalid", transitionErr.From, transitionErr.To),
			gin.H{
				"from":    transitionErr.From,
				"to":      transitionErr.To,
				"allowed": service.AllowedTransitions(transitionErr.From),
			})
	case errors.Is(err, service.ErrInvalidTransition):
		respondError(c, response.CodeConflict, "error.order_transition_invalid_generic", nil)
	case errors.As(err, &shortageErr):
		response.ErrorWithData(c, response.CodeConflict, i18n.T(locale, "error.stock_insufficient"), gin.H{
			"product_id":      shortageErr.ProductID,
			"warehouse_id":    shortageErr.WarehouseID,
			"location_id":     shortageErr.LocationID,
			"on_hand_after":   shortageErr.OnHandAfter,
			"reserved_after":  shortageErr.ReservedAfter,
			"available_after": shortageErr.AvailableAfter,
		})
	case errors.Is(err, service.ErrInsufficientStock):
		respondError(c, response.CodeConflict, "error.stock_insufficient", nil)
	case errors.Is(err, service.ErrDocumentAlreadyVoid):
		respondError(c, response.CodeConflict, "error.stock_document_already_void", nil)
	case errors.Is(err, service.ErrDuplicateStockPosting):
		respondError(c, response.CodeConflict, "error.stock_posting_duplicate", nil)
	case errors.Is(err, service.ErrDocumentAlreadyPosted):
		respondError(c, response.CodeConflict, "error.stock_document_already_posted", nil)
	case errors.Is(err, service.ErrCancelReasonRequired):
		respondError(c, response.CodeBadRequest, "error.cancel_reason_required", nil)
	case errors.Is(err, service.ErrValidation):
		detail := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
		respondErrorWithMsg(c, response.CodeBadRequest, i18n.Sprintf(locale, "error.validation_failed", detail), nil)
	default:
		respondError(c, response.CodeInternal, fallbackKey, err)
	}
}
