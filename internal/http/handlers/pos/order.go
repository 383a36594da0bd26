package pos

import (
	"strconv"
	"strings"

	"github.com/weipos/internal/http/response"
	"github.com/weipos/internal/repository"
	"github.com/weipos/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	BranchID     uint                   `json:"branch_id" binding:"required"`
	OrderType    string                 `json:"order_type"`
	TableID      *uint                  `json:"table_id"`
	CustomerID   *uint                  `json:"customer_id"`
	AggregatorID *uint                  `json:"aggregator_id"`
	Items        []service.AddItemInput `json:"items"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	order, err := h.OrderService.Create(staffID, service.CreateOrderInput{
		TenantID:     tenantID,
		BranchID:     req.BranchID,
		OrderType:    req.OrderType,
		TableID:      req.TableID,
		CustomerID:   req.CustomerID,
		AggregatorID: req.AggregatorID,
		Items:        req.Items,
	})
	if err != nil {
		respondItemError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	order, err := h.OrderService.Get(orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if order.TenantID != tenantID {
		respondError(c, response.CodeNotFound, "order not found", nil)
		return
	}
	response.Success(c, order)
}

// ListOrders 分页查询订单
func (h *Handler) ListOrders(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	branchID, _ := strconv.ParseUint(c.Query("branch_id"), 10, 64)
	tableID, _ := strconv.ParseUint(c.Query("table_id"), 10, 64)

	orders, total, err := h.OrderService.List(repository.OrderListFilter{
		TenantID:  tenantID,
		BranchID:  uint(branchID),
		Status:    strings.TrimSpace(c.Query("status")),
		OrderType: strings.TrimSpace(c.Query("order_type")),
		TableID:   uint(tableID),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages(total, pageSize),
	})
}

// DeleteOrder 软删除订单
func (h *Handler) DeleteOrder(c *gin.Context) {
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

	if err := h.OrderService.SoftDelete(orderID, staffID); err != nil {
		respondOrderError(c, err)
		return
	}
	response.SuccessWithMsg(c, "order deleted", nil)
}

// GetTotals 只读预览订单金额拆分
func (h *Handler) GetTotals(c *gin.Context) {
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

	totals, err := h.TotalsService.Calculate(orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, totals)
}

// ListOrderEvents 分页查询订单审计事件
func (h *Handler) ListOrderEvents(c *gin.Context) {
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

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	events, total, err := h.OrderService.ListEvents(orderID, page, pageSize)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.SuccessWithPage(c, events, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages(total, pageSize),
	})
}
