package service

import (
	"errors"
	"testing"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestDiscountService(db *gorm.DB) *OrderDiscountService {
	itemService := newTestItemService(db)
	return NewOrderDiscountService(
		repository.NewOrderRepository(db),
		repository.NewOrderEventRepository(db),
		itemService.totalsService,
		itemService,
	)
}

func TestApplyAndRemoveDiscount(t *testing.T) {
	db := setupServiceTest(t, "discount_apply")
	svc := newTestDiscountService(db)
	order := createTestOrder(t, db, &models.Order{})
	addTestItem(t, db, order.ID, 50, 2, constants.ItemStateHeld)

	discount, err := svc.Apply(order.ID, 7, "member", decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("apply discount failed: %v", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !reloaded.TotalAmount.Decimal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected total 90.000 after discount, got %s", reloaded.TotalAmount.String())
	}
	if !reloaded.DiscountAmount.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected discount 10.000, got %s", reloaded.DiscountAmount.String())
	}

	if err := svc.Remove(order.ID, discount.ID, 7); err != nil {
		t.Fatalf("remove discount failed: %v", err)
	}
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !reloaded.TotalAmount.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected total restored to 100.000, got %s", reloaded.TotalAmount.String())
	}
}

func TestApplyDiscountValidation(t *testing.T) {
	db := setupServiceTest(t, "discount_invalid")
	svc := newTestDiscountService(db)
	order := createTestOrder(t, db, &models.Order{})

	if _, err := svc.Apply(order.ID, 7, "member", decimal.Zero); !errors.Is(err, ErrInvalidDiscount) {
		t.Fatalf("expected zero discount to be rejected, got: %v", err)
	}
	if _, err := svc.Apply(order.ID, 7, "member", decimal.NewFromInt(-5)); !errors.Is(err, ErrInvalidDiscount) {
		t.Fatalf("expected negative discount to be rejected, got: %v", err)
	}
	if err := svc.Remove(order.ID, 9999, 7); !errors.Is(err, ErrDiscountNotFound) {
		t.Fatalf("expected missing discount error, got: %v", err)
	}
}

func TestDiscountRejectedOnClosedOrder(t *testing.T) {
	db := setupServiceTest(t, "discount_closed")
	svc := newTestDiscountService(db)
	order := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusClosed})

	if _, err := svc.Apply(order.ID, 7, "member", decimal.NewFromInt(5)); !errors.Is(err, ErrOrderNotModifiable) {
		t.Fatalf("expected closed order to reject discount, got: %v", err)
	}
}
