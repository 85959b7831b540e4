package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/cangchu-next/internal/http/handlers/shared"
	"github.com/cangchu-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func readPagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return normalizePagination(page, pageSize)
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}

// parseIDParam 解析路径中的正整数 ID，失败时直接写入 400 响应
func parseIDParam(c *gin.Context, name, invalidKey string) (uint, bool) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || parsed == 0 {
		respondError(c, response.CodeBadRequest, invalidKey, nil)
		return 0, false
	}
	return uint(parsed), true
}

func parseQueryUint(c *gin.Context, name string) uint {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

func parseQueryBool(c *gin.Context, name string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(c.Query(name)))
	return err == nil && parsed
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
