package pos

import (
	"github.com/weipos/internal/http/response"
	"github.com/weipos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListItems 获取订单项列表；不受支付锁限制
func (h *Handler) ListItems(c *gin.Context) {
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

	items, err := h.OrderItemService.List(orderID)
	if err != nil {
		respondItemError(c, err)
		return
	}
	response.Success(c, items)
}

// AddItem 添加订单项
func (h *Handler) AddItem(c *gin.Context) {
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

	var req service.AddItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	item, err := h.OrderItemService.Add(orderID, staffID, req)
	if err != nil {
		respondItemError(c, err)
		return
	}
	response.Success(c, item)
}

// UpdateItem 修改订单项数量或备注
func (h *Handler) UpdateItem(c *gin.Context) {
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

	var req service.UpdateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	item, err := h.OrderItemService.Update(itemID, staffID, req)
	if err != nil {
		respondItemError(c, err)
		return
	}
	response.Success(c, item)
}

// DeleteItem 删除订单项
func (h *Handler) DeleteItem(c *gin.Context) {
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

	if err := h.OrderItemService.Delete(itemID, staffID); err != nil {
		respondItemError(c, err)
		return
	}
	response.SuccessWithMsg(c, "item deleted", nil)
}

// FireItemsRequest 批量下厨请求
type FireItemsRequest struct {
	ItemIDs []uint `json:"item_ids"`
}

// FireItems 批量下厨订单项
func (h *Handler) FireItems(c *gin.Context) {
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

	var req FireItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	fired, err := h.OrderItemService.Fire(orderID, staffID, req.ItemIDs)
	if err != nil {
		respondItemError(c, err)
		return
	}
	response.Success(c, gin.H{"fired_count": fired})
}

// ApplyDiscountRequest 应用整单折扣请求
type ApplyDiscountRequest struct {
	ProgramName string `json:"program_name" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
}

// ApplyDiscount 应用整单折扣
func (h *Handler) ApplyDiscount(c *gin.Context) {
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

	var req ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid discount amount", err)
		return
	}

	discount, err := h.OrderDiscountService.Apply(orderID, staffID, req.ProgramName, amount)
	if err != nil {
		respondDiscountError(c, err)
		return
	}
	response.Success(c, discount)
}

// RemoveDiscount 移除整单折扣
func (h *Handler) RemoveDiscount(c *gin.Context) {
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
	discountID, ok := parseUintParam(c, "discount_id")
	if !ok {
		return
	}
	if !h.ensureOrderTenant(c, orderID, tenantID) {
		return
	}

	if err := h.OrderDiscountService.Remove(orderID, discountID, staffID); err != nil {
		respondDiscountError(c, err)
		return
	}
	response.SuccessWithMsg(c, "discount removed", nil)
}
