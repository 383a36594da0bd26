package pos

import (
	"github.com/weipos/internal/provider"
)

// Handler POS 终端接口处理器入口
// 说明：该处理器用于门店终端与后厨侧 API。
type Handler struct {
	*provider.Container
}

// New 创建 POS 处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
