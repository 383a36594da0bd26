package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestOrderService(db *gorm.DB) *OrderService {
	itemService := newTestItemService(db)
	return NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewOrderItemRepository(db),
		repository.NewProductRepository(db),
		repository.NewOrderEventRepository(db),
		itemService.totalsService,
		itemService,
	)
}

func TestCreateOrderWithInitialItems(t *testing.T) {
	db := setupServiceTest(t, "order_create")
	svc := newTestOrderService(db)
	product := createTestProduct(t, db, &models.Product{
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		IsActive: true,
	})

	tableID := uint(5)
	order, err := svc.Create(7, CreateOrderInput{
		TenantID:  1,
		BranchID:  1,
		OrderType: constants.OrderTypeDineIn,
		TableID:   &tableID,
		Items: []AddItemInput{
			{ProductID: product.ID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusOpen {
		t.Fatalf("expected new order open, got %s", order.Status)
	}
	if order.PaymentStatus != constants.PaymentStatusUnpaid {
		t.Fatalf("expected unpaid, got %s", order.PaymentStatus)
	}
	if !strings.HasPrefix(order.OrderNo, "WP") {
		t.Fatalf("unexpected order no: %s", order.OrderNo)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected total 40.000, got %s", order.TotalAmount.String())
	}

	var eventCount int64
	if err := db.Model(&models.OrderEvent{}).
		Where("order_id = ? AND event_type = ?", order.ID, constants.EventOrderCreate).
		Count(&eventCount).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if eventCount != 1 {
		t.Fatalf("expected one create event, got %d", eventCount)
	}
}

func TestCreateOrderRejectsUnknownType(t *testing.T) {
	db := setupServiceTest(t, "order_create_type")
	svc := newTestOrderService(db)

	if _, err := svc.Create(7, CreateOrderInput{TenantID: 1, BranchID: 1, OrderType: "drive_through"}); !errors.Is(err, ErrInvalidOrderType) {
		t.Fatalf("expected ErrInvalidOrderType, got %v", err)
	}
}

func TestCreateOrderRollsBackOnBadInitialItem(t *testing.T) {
	db := setupServiceTest(t, "order_create_rollback")
	svc := newTestOrderService(db)
	product := createTestProduct(t, db, &models.Product{
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(12)),
		IsActive: true,
	})

	_, err := svc.Create(7, CreateOrderInput{
		TenantID:  1,
		BranchID:  1,
		OrderType: constants.OrderTypeDineIn,
		Items: []AddItemInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: 99999, Quantity: 1},
		},
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("expected no order row after failed initial item, got %d", orderCount)
	}
	var itemCount int64
	if err := db.Model(&models.OrderItem{}).Count(&itemCount).Error; err != nil {
		t.Fatalf("count items failed: %v", err)
	}
	if itemCount != 0 {
		t.Fatalf("expected no item rows after rollback, got %d", itemCount)
	}
	var eventCount int64
	if err := db.Model(&models.OrderEvent{}).Count(&eventCount).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if eventCount != 0 {
		t.Fatalf("expected no event rows after rollback, got %d", eventCount)
	}
}

func TestSoftDeleteRules(t *testing.T) {
	db := setupServiceTest(t, "order_soft_delete")
	svc := newTestOrderService(db)

	open := createTestOrder(t, db, &models.Order{})
	if err := svc.SoftDelete(open.ID, 7); err != nil {
		t.Fatalf("soft delete open order failed: %v", err)
	}
	if err := svc.SoftDelete(open.ID, 7); !errors.Is(err, ErrOrderAlreadyDeleted) {
		t.Fatalf("expected already deleted error, got: %v", err)
	}

	closed := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusClosed})
	if err := svc.SoftDelete(closed.ID, 7); !errors.Is(err, ErrOrderNotModifiable) {
		t.Fatalf("expected closed order to reject deletion, got: %v", err)
	}

	paid := createTestOrder(t, db, &models.Order{PaymentStatus: constants.PaymentStatusPaid})
	if err := svc.SoftDelete(paid.ID, 7); !errors.Is(err, ErrOrderNotModifiable) {
		t.Fatalf("expected paid order to reject deletion, got: %v", err)
	}
}

func TestListExcludesDeletedOrders(t *testing.T) {
	db := setupServiceTest(t, "order_list")
	svc := newTestOrderService(db)

	keep := createTestOrder(t, db, &models.Order{OrderType: constants.OrderTypeTakeaway})
	createTestOrder(t, db, &models.Order{IsDeleted: true})

	orders, total, err := svc.List(repository.OrderListFilter{TenantID: 1, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(orders) != 1 || orders[0].ID != keep.ID {
		t.Fatalf("expected only live order, got total=%d orders=%+v", total, orders)
	}

	orders, total, err = svc.List(repository.OrderListFilter{TenantID: 1, OrderType: constants.OrderTypeDineIn, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if total != 0 || len(orders) != 0 {
		t.Fatalf("expected empty result for dine_in filter, got %d", total)
	}
}

func TestListEventsNewestFirst(t *testing.T) {
	db := setupServiceTest(t, "order_events")
	svc := newTestOrderService(db)
	order := createTestOrder(t, db, &models.Order{})

	for _, eventType := range []string{constants.EventOrderCreate, constants.EventStatusChange, constants.EventItemAdd} {
		if err := db.Create(&models.OrderEvent{
			TenantID:  1,
			OrderID:   order.ID,
			EventType: eventType,
			CreatedBy: 7,
		}).Error; err != nil {
			t.Fatalf("create event failed: %v", err)
		}
	}

	events, total, err := svc.ListEvents(order.ID, 1, 2)
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if total != 3 || len(events) != 2 {
		t.Fatalf("expected total 3 page of 2, got total=%d len=%d", total, len(events))
	}
	if events[0].EventType != constants.EventItemAdd {
		t.Fatalf("expected newest event first, got %s", events[0].EventType)
	}
}
