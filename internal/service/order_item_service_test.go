package service

import (
	"errors"
	"testing"
	"time"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestItemService(db *gorm.DB) *OrderItemService {
	settingService := NewSettingService(repository.NewSettingRepository(db))
	totalsService := NewTotalsService(
		repository.NewOrderRepository(db),
		repository.NewOrderItemRepository(db),
		repository.NewAggregatorRepository(db),
		settingService,
	)
	return NewOrderItemService(
		repository.NewOrderRepository(db),
		repository.NewOrderItemRepository(db),
		repository.NewProductRepository(db),
		repository.NewOrderEventRepository(db),
		totalsService,
		settingService,
	)
}

func createTestProduct(t *testing.T, db *gorm.DB, product *models.Product) *models.Product {
	t.Helper()
	if product.TenantID == 0 {
		product.TenantID = 1
	}
	if product.Name == "" {
		product.Name = "test product"
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestAddItemSnapshotsPriceWithVariations(t *testing.T) {
	db := setupServiceTest(t, "item_add_snapshot")
	svc := newTestItemService(db)
	order := createTestOrder(t, db, &models.Order{})
	product := createTestProduct(t, db, &models.Product{
		Name:     "milk tea",
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(18)),
		IsActive: true,
		Variations: []models.ProductVariation{
			{GroupName: "size", ValueName: "large", PriceDelta: models.NewMoneyFromDecimal(decimal.NewFromInt(3))},
			{GroupName: "topping", ValueName: "pearl", PriceDelta: models.NewMoneyFromDecimal(decimal.NewFromInt(2))},
		},
	})

	item, err := svc.Add(order.ID, 7, AddItemInput{
		ProductID:    product.ID,
		Quantity:     2,
		VariationIDs: []uint{product.Variations[0].ID, product.Variations[1].ID},
		Notes:        "less sugar",
	})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if !item.UnitPrice.Decimal.Equal(decimal.NewFromInt(23)) {
		t.Fatalf("expected unit price 23.000, got %s", item.UnitPrice.String())
	}
	if !item.LineSubtotal.Decimal.Equal(decimal.NewFromInt(46)) {
		t.Fatalf("expected line subtotal 46.000, got %s", item.LineSubtotal.String())
	}
	if item.State != constants.ItemStateHeld {
		t.Fatalf("expected new item held, got %s", item.State)
	}

	// 商品调价不影响已创建订单项的快照
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", models.NewMoneyFromDecimal(decimal.NewFromInt(99))).Error; err != nil {
		t.Fatalf("update product price failed: %v", err)
	}
	var reloaded models.OrderItem
	if err := db.First(&reloaded, item.ID).Error; err != nil {
		t.Fatalf("reload item failed: %v", err)
	}
	if !reloaded.UnitPrice.Decimal.Equal(decimal.NewFromInt(23)) {
		t.Fatalf("expected snapshot unchanged, got %s", reloaded.UnitPrice.String())
	}

	var order2 models.Order
	if err := db.First(&order2, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !order2.TotalAmount.Decimal.Equal(decimal.NewFromInt(46)) {
		t.Fatalf("expected order total 46.000 after add, got %s", order2.TotalAmount.String())
	}
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	db := setupServiceTest(t, "item_add_invalid")
	svc := newTestItemService(db)
	order := createTestOrder(t, db, &models.Order{})
	inactive := createTestProduct(t, db, &models.Product{
		Name:     "off menu",
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive: false,
	})
	// gorm:"default:true" 会让零值 false 在插入时被丢弃，需显式落库
	if err := db.Model(&models.Product{}).Where("id = ?", inactive.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("persist inactive flag failed: %v", err)
	}
	active := createTestProduct(t, db, &models.Product{
		Name:     "on menu",
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive: true,
	})

	if _, err := svc.Add(order.ID, 7, AddItemInput{ProductID: active.ID, Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity error, got: %v", err)
	}
	if _, err := svc.Add(order.ID, 7, AddItemInput{ProductID: inactive.ID, Quantity: 1}); !errors.Is(err, ErrProductInactive) {
		t.Fatalf("expected inactive product error, got: %v", err)
	}
	if _, err := svc.Add(order.ID, 7, AddItemInput{ProductID: 9999, Quantity: 1}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected product not found error, got: %v", err)
	}
	if _, err := svc.Add(order.ID, 7, AddItemInput{
		ProductID:    active.ID,
		Quantity:     1,
		VariationIDs: []uint{12345},
	}); !errors.Is(err, ErrVariationNotFound) {
		t.Fatalf("expected variation not found error, got: %v", err)
	}
}

func TestUpdateItemRecalculatesTotals(t *testing.T) {
	db := setupServiceTest(t, "item_update")
	svc := newTestItemService(db)
	order := createTestOrder(t, db, &models.Order{})
	item := addTestItem(t, db, order.ID, 10, 1, constants.ItemStateHeld)

	notes := "no onions"
	updated, err := svc.Update(item.ID, 7, UpdateItemInput{Quantity: 3, Notes: &notes})
	if err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	if updated.Quantity != 3 || updated.Notes != "no onions" {
		t.Fatalf("unexpected updated item: %+v", updated)
	}
	if !updated.LineSubtotal.Decimal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected line subtotal 30.000, got %s", updated.LineSubtotal.String())
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !reloaded.TotalAmount.Decimal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected order total 30.000, got %s", reloaded.TotalAmount.String())
	}
}

func TestUpdateItemRejectedAfterFire(t *testing.T) {
	db := setupServiceTest(t, "item_update_fired")
	svc := newTestItemService(db)
	order := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusSent})
	item := addTestItem(t, db, order.ID, 10, 1, constants.ItemStateFired)

	if _, err := svc.Update(item.ID, 7, UpdateItemInput{Quantity: 2}); !errors.Is(err, ErrItemNotEditable) {
		t.Fatalf("expected fired item update to be rejected, got: %v", err)
	}
}

func TestDeleteItemMutabilityBoundary(t *testing.T) {
	db := setupServiceTest(t, "item_delete")
	svc := newTestItemService(db)
	order := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusSent})
	held := addTestItem(t, db, order.ID, 10, 1, constants.ItemStateHeld)
	fired := addTestItem(t, db, order.ID, 20, 1, constants.ItemStateFired)

	if err := svc.Delete(fired.ID, 7); !errors.Is(err, ErrItemNotDeletable) {
		t.Fatalf("expected fired item delete to be rejected, got: %v", err)
	}

	if err := svc.Delete(held.ID, 7); err != nil {
		t.Fatalf("delete held item failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.OrderItem{}).Where("id = ?", held.ID).Count(&count).Error; err != nil {
		t.Fatalf("count items failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected held item removed")
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !reloaded.TotalAmount.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected order total 20.000 after delete, got %s", reloaded.TotalAmount.String())
	}
}

func TestItemWritesBlockedByPaymentLock(t *testing.T) {
	db := setupServiceTest(t, "item_lock_gate")
	svc := newTestItemService(db)

	lockedAt := time.Now()
	holder := uint(11)
	order := createTestOrder(t, db, &models.Order{
		PaymentLocked: true,
		LockedBy:      &holder,
		LockedAt:      &lockedAt,
	})
	product := createTestProduct(t, db, &models.Product{
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive: true,
	})

	if _, err := svc.Add(order.ID, 22, AddItemInput{ProductID: product.ID, Quantity: 1}); !errors.Is(err, ErrOrderLocked) {
		t.Fatalf("expected locked order to reject writes by others, got: %v", err)
	}

	// 锁持有者不受限制
	if _, err := svc.Add(order.ID, 11, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("expected lock holder write to succeed, got: %v", err)
	}
}

func TestItemWritesRejectedOnClosedOrder(t *testing.T) {
	db := setupServiceTest(t, "item_closed_gate")
	svc := newTestItemService(db)
	order := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusClosed})
	product := createTestProduct(t, db, &models.Product{
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive: true,
	})

	if _, err := svc.Add(order.ID, 7, AddItemInput{ProductID: product.ID, Quantity: 1}); !errors.Is(err, ErrOrderNotModifiable) {
		t.Fatalf("expected closed order to reject item writes, got: %v", err)
	}
}

func TestFireSelectedItems(t *testing.T) {
	db := setupServiceTest(t, "item_fire")
	svc := newTestItemService(db)
	order := createTestOrder(t, db, &models.Order{})
	first := addTestItem(t, db, order.ID, 10, 1, constants.ItemStateHeld)
	second := addTestItem(t, db, order.ID, 20, 1, constants.ItemStateHeld)

	fired, err := svc.Fire(order.ID, 7, []uint{first.ID})
	if err != nil {
		t.Fatalf("fire selected failed: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected 1 item fired, got %d", fired)
	}

	var untouched models.OrderItem
	if err := db.First(&untouched, second.ID).Error; err != nil {
		t.Fatalf("reload second item failed: %v", err)
	}
	if untouched.State != constants.ItemStateHeld {
		t.Fatalf("expected unselected item still held, got %s", untouched.State)
	}

	// 空列表表示整批下厨
	fired, err = svc.Fire(order.ID, 7, nil)
	if err != nil {
		t.Fatalf("fire all failed: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected remaining 1 item fired, got %d", fired)
	}
}
