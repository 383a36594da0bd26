package pos

import (
	"github.com/weipos/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ensureOrderTenant 校验订单归属租户；订单不存在与跨租户访问统一按不存在响应
func (h *Handler) ensureOrderTenant(c *gin.Context, orderID, tenantID uint) bool {
	order, err := h.OrderRepo.GetByID(orderID)
	if err != nil {
		respondError(c, response.CodeInternal, "query order failed", err)
		return false
	}
	if order == nil || order.TenantID != tenantID {
		respondError(c, response.CodeNotFound, "order not found", nil)
		return false
	}
	return true
}

// ensureItemTenant 校验订单项归属租户；订单项不存在与跨租户访问统一按不存在响应
func (h *Handler) ensureItemTenant(c *gin.Context, itemID, tenantID uint) bool {
	item, err := h.OrderItemRepo.GetByID(itemID)
	if err != nil {
		respondError(c, response.CodeInternal, "query order item failed", err)
		return false
	}
	if item == nil {
		respondError(c, response.CodeNotFound, "order item not found", nil)
		return false
	}
	order, err := h.OrderRepo.GetByID(item.OrderID)
	if err != nil {
		respondError(c, response.CodeInternal, "query order failed", err)
		return false
	}
	if order == nil || order.TenantID != tenantID {
		respondError(c, response.CodeNotFound, "order item not found", nil)
		return false
	}
	return true
}
