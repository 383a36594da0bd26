package pos

import (
	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/http/response"
	"github.com/weipos/internal/service"

	"github.com/gin-gonic/gin"
)

// AcquireLockRequest 抢占支付锁请求
type AcquireLockRequest struct {
	TimeoutSeconds int `json:"timeout_seconds"`
}

// lockTimeout 解析请求超时，未填时回退到租户配置
func (h *Handler) lockTimeout(tenantID uint, requested int) int {
	if requested > 0 {
		return service.ClampLockTimeout(requested)
	}
	return h.SettingService.GetLockTimeoutSeconds(tenantID, h.Config.Order.LockTimeoutSeconds)
}

// AcquireLock 抢占订单支付锁
func (h *Handler) AcquireLock(c *gin.Context) {
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

	var req AcquireLockRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	timeout := h.lockTimeout(tenantID, req.TimeoutSeconds)
	acquired, err := h.OrderLockService.Acquire(orderID, staffID, timeout)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if !acquired {
		response.Locked(c, "order locked by another user")
		return
	}
	response.SuccessWithMsg(c, "lock acquired", gin.H{"timeout_seconds": timeout})
}

// ReleaseLock 释放订单支付锁；仅持有者可释放
func (h *Handler) ReleaseLock(c *gin.Context) {
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

	released, err := h.OrderLockService.Release(orderID, staffID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if !released {
		response.Forbidden(c, "lock not held by current user")
		return
	}
	response.SuccessWithMsg(c, "lock released", nil)
}

// ForceReleaseLock 强制释放订单支付锁；需要管理角色
func (h *Handler) ForceReleaseLock(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	// 角色校验基于请求头，完整的权限体系由网关层负责
	if c.GetHeader("X-Staff-Role") != "manager" {
		respondOrderError(c, service.ErrPermissionDenied)
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if !h.ensureOrderTenant(c, orderID, tenantID) {
		return
	}

	if err := h.OrderLockService.ForceRelease(orderID, staffID); err != nil {
		respondOrderError(c, err)
		return
	}
	response.SuccessWithMsg(c, "lock force released", nil)
}

// GetLockStatus 查询订单支付锁状态
func (h *Handler) GetLockStatus(c *gin.Context) {
	tenantID, ok := getTenantID(c)
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

	timeout := h.SettingService.GetLockTimeoutSeconds(tenantID, constants.LockTimeoutDefaultSeconds)
	status, err := h.OrderLockService.Status(orderID, timeout)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, status)
}
