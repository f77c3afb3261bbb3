package admin

import "github.com/settle-next/internal/provider"

// Handler 管理接口处理器入口
// 说明：该处理器仅用于管理员侧 API，所有路由经 JWT 鉴权。
type Handler struct {
	*provider.Container
}

// New 创建管理处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
