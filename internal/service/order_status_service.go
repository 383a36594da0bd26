package service

import (
	"time"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/logger"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/queue"
	"github.com/weipos/internal/repository"

	"gorm.io/gorm"
)

// allowedTransitions 订单状态迁移表
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusOpen: {
		constants.OrderStatusHeld:      true,
		constants.OrderStatusSent:      true,
		constants.OrderStatusPreparing: true,
		constants.OrderStatusClosed:    true,
		constants.OrderStatusCancelled: true,
		constants.OrderStatusVoided:    true,
	},
	constants.OrderStatusHeld: {
		constants.OrderStatusOpen:      true,
		constants.OrderStatusSent:      true,
		constants.OrderStatusCancelled: true,
		constants.OrderStatusVoided:    true,
	},
	constants.OrderStatusSent: {
		constants.OrderStatusPreparing: true,
		constants.OrderStatusReady:     true,
		constants.OrderStatusCancelled: true,
		constants.OrderStatusVoided:    true,
	},
	constants.OrderStatusPreparing: {
		constants.OrderStatusReady:     true,
		constants.OrderStatusServed:    true,
		constants.OrderStatusCancelled: true,
		constants.OrderStatusVoided:    true,
	},
	constants.OrderStatusReady: {
		constants.OrderStatusServed: true,
		constants.OrderStatusClosed: true,
		constants.OrderStatusVoided: true,
	},
	constants.OrderStatusServed: {
		constants.OrderStatusClosed: true,
		constants.OrderStatusVoided: true,
	},
	constants.OrderStatusClosed: {
		constants.OrderStatusRefunded: true,
		constants.OrderStatusVoided:   true,
	},
	constants.OrderStatusCancelled: {},
	constants.OrderStatusVoided:    {},
	constants.OrderStatusRefunded:  {},
}

// itemTransitions 订单项出餐状态迁移表
var itemTransitions = map[string]map[string]bool{
	constants.ItemStateHeld: {
		constants.ItemStateFired:  true,
		constants.ItemStateVoided: true,
	},
	constants.ItemStateFired: {
		constants.ItemStateInPrep: true,
		constants.ItemStateVoided: true,
	},
	constants.ItemStateInPrep: {
		constants.ItemStateReady:  true,
		constants.ItemStateVoided: true,
	},
	constants.ItemStateReady: {
		constants.ItemStateServed: true,
		constants.ItemStateVoided: true,
	},
	constants.ItemStateServed: {},
	constants.ItemStateVoided: {},
}

// IsTerminalStatus 判断订单状态是否为终态
func IsTerminalStatus(status string) bool {
	targets, ok := allowedTransitions[status]
	return ok && len(targets) == 0
}

// isModifiableStatus 判断订单状态是否允许继续修改明细
func isModifiableStatus(status string) bool {
	switch status {
	case constants.OrderStatusClosed,
		constants.OrderStatusCancelled,
		constants.OrderStatusVoided,
		constants.OrderStatusRefunded:
		return false
	}
	return true
}

// StatusChangeResult 状态迁移结果
type StatusChangeResult struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Changed    bool   `json:"changed"`
	FiredCount int64  `json:"fired_count,omitempty"`
}

// OrderStatusService 订单状态机服务
type OrderStatusService struct {
	orderRepo       repository.OrderRepository
	itemRepo        repository.OrderItemRepository
	eventRepo       repository.OrderEventRepository
	reversalService *ReversalService
	rewardsHook     RewardsHook
	stockflowHook   StockflowHook
	queueClient     *queue.Client
}

// NewOrderStatusService 创建订单状态机服务
func NewOrderStatusService(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	eventRepo repository.OrderEventRepository,
	reversalService *ReversalService,
	rewardsHook RewardsHook,
	stockflowHook StockflowHook,
	queueClient *queue.Client,
) *OrderStatusService {
	return &OrderStatusService{
		orderRepo:       orderRepo,
		itemRepo:        itemRepo,
		eventRepo:       eventRepo,
		reversalService: reversalService,
		rewardsHook:     rewardsHook,
		stockflowHook:   stockflowHook,
		queueClient:     queueClient,
	}
}

// Transition 执行订单状态迁移；同状态为无变更的成功返回
func (s *OrderStatusService) Transition(orderID uint, target string, actorUserID uint) (*StatusChangeResult, error) {
	var result *StatusChangeResult
	var tenantID uint
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.IsDeleted {
			return ErrOrderDeleted
		}
		tenantID = order.TenantID

		if order.Status == target {
			result = &StatusChangeResult{From: order.Status, To: target, Changed: false}
			return nil
		}
		targets, ok := allowedTransitions[order.Status]
		if !ok || !targets[target] {
			return ErrInvalidTransition
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":     target,
			"updated_at": now,
		}
		switch target {
		case constants.OrderStatusClosed:
			updates["closed_at"] = now
		case constants.OrderStatusVoided:
			updates["voided_at"] = now
			updates["is_voided"] = true
			updates["payment_status"] = constants.PaymentStatusVoided
		}

		result = &StatusChangeResult{From: order.Status, To: target, Changed: true}

		// 送厨时自动整批下厨暂存中的订单项
		if target == constants.OrderStatusSent && order.Status != constants.OrderStatusSent {
			fired, err := s.itemRepo.WithTx(tx).FireHeld(orderID, now)
			if err != nil {
				return err
			}
			result.FiredCount = fired
			if fired > 0 {
				fireEvent := &models.OrderEvent{
					TenantID:  order.TenantID,
					OrderID:   order.ID,
					EventType: constants.EventItemsFire,
					CreatedBy: actorUserID,
					Payload:   models.JSON{"fired_count": fired},
				}
				if err := s.eventRepo.WithTx(tx).Append(fireEvent); err != nil {
					return err
				}
			}
		}

		if err := s.orderRepo.WithTx(tx).Updates(orderID, updates); err != nil {
			return err
		}

		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   order.ID,
			EventType: constants.EventStatusChange,
			CreatedBy: actorUserID,
			Payload:   models.JSON{"from": order.Status, "to": target},
		}
		return s.eventRepo.WithTx(tx).Append(event)
	})
	if err != nil {
		return nil, err
	}
	if !result.Changed {
		return result, nil
	}

	// 冲正与关单后回调放在主事务提交后执行，失败只记录不回滚状态变更
	switch target {
	case constants.OrderStatusVoided, constants.OrderStatusRefunded:
		if s.reversalService != nil {
			s.reversalService.Reverse(orderID, actorUserID, target)
		}
	case constants.OrderStatusClosed:
		s.runClosedHooks(tenantID, orderID, actorUserID)
	}
	return result, nil
}

func (s *OrderStatusService) runClosedHooks(tenantID, orderID, actorUserID uint) {
	if s.rewardsHook != nil {
		if notes, err := s.rewardsHook.OnOrderClosed(tenantID, orderID); err != nil {
			logger.Warnw("rewards_hook_failed", "order_id", orderID, "error", err)
		} else if len(notes) > 0 {
			logger.Infow("rewards_hook_done", "order_id", orderID, "notes", notes)
		}
	}
	if s.stockflowHook != nil {
		if notes, err := s.stockflowHook.OnOrderClosed(tenantID, orderID, actorUserID); err != nil {
			logger.Warnw("stockflow_hook_failed", "order_id", orderID, "error", err)
		} else if len(notes) > 0 {
			logger.Infow("stockflow_hook_done", "order_id", orderID, "notes", notes)
		}
	}
	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderClosedNotify(tenantID, orderID); err != nil {
			logger.Warnw("enqueue_order_closed_notify_failed", "order_id", orderID, "error", err)
		}
	}
}

// TransitionItem 执行订单项出餐状态迁移
func (s *OrderStatusService) TransitionItem(itemID uint, target string, actorUserID uint) (*StatusChangeResult, error) {
	var result *StatusChangeResult
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.WithTx(tx).GetByID(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrItemNotFound
		}

		order, err := s.orderRepo.WithTx(tx).GetByID(item.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.IsDeleted {
			return ErrOrderDeleted
		}

		if item.State == target {
			result = &StatusChangeResult{From: item.State, To: target, Changed: false}
			return nil
		}
		targets, ok := itemTransitions[item.State]
		if !ok || !targets[target] {
			return ErrInvalidItemState
		}

		now := time.Now()
		updates := map[string]interface{}{
			"state":      target,
			"updated_at": now,
		}
		if target == constants.ItemStateFired && item.FiredAt == nil {
			updates["fired_at"] = now
		}
		if err := s.itemRepo.WithTx(tx).Updates(itemID, updates); err != nil {
			return err
		}

		result = &StatusChangeResult{From: item.State, To: target, Changed: true}
		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   order.ID,
			EventType: constants.EventItemStateChange,
			CreatedBy: actorUserID,
			Payload:   models.JSON{"item_id": item.ID, "from": item.State, "to": target},
		}
		return s.eventRepo.WithTx(tx).Append(event)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
