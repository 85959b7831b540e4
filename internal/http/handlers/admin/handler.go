package admin

import "github.com/cangchu-next/internal/provider"

// Handler 仓储后台接口处理器，只负责参数解析与错误映射
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
