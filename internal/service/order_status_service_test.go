package service

import (
	"errors"
	"testing"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/repository"

	"gorm.io/gorm"
)

func newTestStatusService(db *gorm.DB) *OrderStatusService {
	return NewOrderStatusService(
		repository.NewOrderRepository(db),
		repository.NewOrderItemRepository(db),
		repository.NewOrderEventRepository(db),
		nil,
		nil,
		nil,
		nil,
	)
}

func TestTransitionLegalPath(t *testing.T) {
	db := setupServiceTest(t, "status_legal")
	svc := newTestStatusService(db)
	order := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusOpen})

	for _, target := range []string{
		constants.OrderStatusSent,
		constants.OrderStatusPreparing,
		constants.OrderStatusReady,
		constants.OrderStatusServed,
		constants.OrderStatusClosed,
	} {
		result, err := svc.Transition(order.ID, target, 7)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", target, err)
		}
		if !result.Changed || result.To != target {
			t.Fatalf("unexpected transition result for %s: %+v", target, result)
		}
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusClosed {
		t.Fatalf("expected closed, got %s", reloaded.Status)
	}
	if reloaded.ClosedAt == nil {
		t.Fatalf("expected closed_at to be stamped")
	}
}

func TestTransitionInvalidRejected(t *testing.T) {
	db := setupServiceTest(t, "status_invalid")
	svc := newTestStatusService(db)
	order := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusOpen})

	if _, err := svc.Transition(order.ID, constants.OrderStatusServed, 7); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition error, got: %v", err)
	}
}

func TestTransitionSameStatusNoOp(t *testing.T) {
	db := setupServiceTest(t, "status_noop")
	svc := newTestStatusService(db)
	order := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusOpen})

	result, err := svc.Transition(order.ID, constants.OrderStatusOpen, 7)
	if err != nil {
		t.Fatalf("same-status transition failed: %v", err)
	}
	if result.Changed {
		t.Fatalf("expected no-op for same status, got %+v", result)
	}

	var count int64
	if err := db.Model(&models.OrderEvent{}).
		Where("order_id = ? AND event_type = ?", order.ID, constants.EventStatusChange).
		Count(&count).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no status change event for no-op, got %d", count)
	}
}

func TestTransitionTerminalStatusRejected(t *testing.T) {
	db := setupServiceTest(t, "status_terminal")
	svc := newTestStatusService(db)

	for _, terminal := range []string{
		constants.OrderStatusCancelled,
		constants.OrderStatusVoided,
		constants.OrderStatusRefunded,
	} {
		order := createTestOrder(t, db, &models.Order{Status: terminal})
		if _, err := svc.Transition(order.ID, constants.OrderStatusOpen, 7); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected terminal status %s to reject transitions, got: %v", terminal, err)
		}
	}
}

func TestTransitionToSentFiresHeldItems(t *testing.T) {
	db := setupServiceTest(t, "status_sent_fire")
	svc := newTestStatusService(db)
	order := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusOpen})
	addTestItem(t, db, order.ID, 10, 1, constants.ItemStateHeld)
	addTestItem(t, db, order.ID, 20, 2, constants.ItemStateHeld)
	fired := addTestItem(t, db, order.ID, 30, 1, constants.ItemStateFired)

	result, err := svc.Transition(order.ID, constants.OrderStatusSent, 7)
	if err != nil {
		t.Fatalf("transition to sent failed: %v", err)
	}
	if result.FiredCount != 2 {
		t.Fatalf("expected 2 items fired, got %d", result.FiredCount)
	}

	var held int64
	if err := db.Model(&models.OrderItem{}).
		Where("order_id = ? AND state = ?", order.ID, constants.ItemStateHeld).
		Count(&held).Error; err != nil {
		t.Fatalf("count held items failed: %v", err)
	}
	if held != 0 {
		t.Fatalf("expected no held items after sending, got %d", held)
	}

	var untouched models.OrderItem
	if err := db.First(&untouched, fired.ID).Error; err != nil {
		t.Fatalf("reload fired item failed: %v", err)
	}
	if untouched.State != constants.ItemStateFired {
		t.Fatalf("expected already fired item untouched, got %s", untouched.State)
	}
}

func TestTransitionToVoidedMarksOrder(t *testing.T) {
	db := setupServiceTest(t, "status_voided")
	svc := newTestStatusService(db)
	order := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusServed})

	result, err := svc.Transition(order.ID, constants.OrderStatusVoided, 7)
	if err != nil {
		t.Fatalf("transition to voided failed: %v", err)
	}
	if !result.Changed {
		t.Fatalf("expected status change, got %+v", result)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if !reloaded.IsVoided || reloaded.VoidedAt == nil {
		t.Fatalf("expected voided markers set, got %+v", reloaded)
	}
	if reloaded.PaymentStatus != constants.PaymentStatusVoided {
		t.Fatalf("expected payment status voided, got %s", reloaded.PaymentStatus)
	}
}

func TestTransitionItemLifecycle(t *testing.T) {
	db := setupServiceTest(t, "status_item_fsm")
	svc := newTestStatusService(db)
	order := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusSent})
	item := addTestItem(t, db, order.ID, 10, 1, constants.ItemStateHeld)

	for _, target := range []string{
		constants.ItemStateFired,
		constants.ItemStateInPrep,
		constants.ItemStateReady,
		constants.ItemStateServed,
	} {
		result, err := svc.TransitionItem(item.ID, target, 7)
		if err != nil {
			t.Fatalf("item transition to %s failed: %v", target, err)
		}
		if !result.Changed || result.To != target {
			t.Fatalf("unexpected item transition result for %s: %+v", target, result)
		}
	}

	var reloaded models.OrderItem
	if err := db.First(&reloaded, item.ID).Error; err != nil {
		t.Fatalf("reload item failed: %v", err)
	}
	if reloaded.State != constants.ItemStateServed {
		t.Fatalf("expected served, got %s", reloaded.State)
	}
	if reloaded.FiredAt == nil {
		t.Fatalf("expected fired_at stamped on fire")
	}

	// 终态不可再迁移
	if _, err := svc.TransitionItem(item.ID, constants.ItemStateVoided, 7); !errors.Is(err, ErrInvalidItemState) {
		t.Fatalf("expected served item to reject voiding, got: %v", err)
	}
}

func TestTransitionItemSkippingStateRejected(t *testing.T) {
	db := setupServiceTest(t, "status_item_skip")
	svc := newTestStatusService(db)
	order := createTestOrder(t, db, &models.Order{Status: constants.OrderStatusSent})
	item := addTestItem(t, db, order.ID, 10, 1, constants.ItemStateHeld)

	if _, err := svc.TransitionItem(item.ID, constants.ItemStateReady, 7); !errors.Is(err, ErrInvalidItemState) {
		t.Fatalf("expected skipping item state to be rejected, got: %v", err)
	}
}
