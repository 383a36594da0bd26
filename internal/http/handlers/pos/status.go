package pos

import (
	"github.com/weipos/internal/http/response"

	"github.com/gin-gonic/gin"
)

// TransitionRequest 状态迁移请求
type TransitionRequest struct {
	Target string `json:"target" binding:"required"`
}

// TransitionOrder 执行订单状态迁移
func (h *Handler) TransitionOrder(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !h.ensureOrderTenant(c, orderID, tenantID) {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	result, err := h.OrderStatusService.Transition(orderID, req.Target, staffID)
	if err != nil {
		respondStatusError(c, err)
		return
	}
	response.Success(c, result)
}

// TransitionItem 执行订单项出餐状态迁移
func (h *Handler) TransitionItem(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	itemID, ok := parseUintParam(c, "item_id")
	if !ok {
		return
	}
	if !h.ensureItemTenant(c, itemID, tenantID) {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	result, err := h.OrderStatusService.TransitionItem(itemID, req.Target, staffID)
	if err != nil {
		respondStatusError(c, err)
		return
	}
	response.Success(c, result)
}
