package admin

import (
	handlershared "github.com/cangchu-next/internal/http/handlers/shared"
	"github.com/cangchu-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

const adminIDContextKey = "admin_id"

// getAdminID 读取鉴权中间件写入的操作员 ID
func getAdminID(c *gin.Context) (uint, bool) {
	if _, exists := c.Get(adminIDContextKey); !exists {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	adminID, ok := handlershared.ContextUint(c, adminIDContextKey)
	if !ok {
		respondError(c, response.CodeUnauthorized, "error.admin_id_invalid", nil)
		return 0, false
	}
	return adminID, true
}
