package service

import (
	"time"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/repository"

	"gorm.io/gorm"
)

// LockStatus 支付锁状态快照
type LockStatus struct {
	Locked   bool       `json:"locked"`
	LockedBy *uint      `json:"locked_by,omitempty"`
	LockedAt *time.Time `json:"locked_at,omitempty"`
	LockSeq  uint       `json:"lock_seq"`
	Expired  bool       `json:"expired"`
}

// OrderLockService 订单支付锁服务；超时不做后台清理，读取和抢占时惰性判定
type OrderLockService struct {
	orderRepo repository.OrderRepository
	eventRepo repository.OrderEventRepository
}

// NewOrderLockService 创建支付锁服务
func NewOrderLockService(orderRepo repository.OrderRepository, eventRepo repository.OrderEventRepository) *OrderLockService {
	return &OrderLockService{orderRepo: orderRepo, eventRepo: eventRepo}
}

// lockExpired 判断锁是否已超时
func lockExpired(order *models.Order, now time.Time, timeoutSeconds int) bool {
	if order.LockedAt == nil {
		return true
	}
	return now.Sub(*order.LockedAt) > time.Duration(timeoutSeconds)*time.Second
}

// lockBlocks 判断订单的支付锁是否阻挡指定用户的写操作
func lockBlocks(order *models.Order, userID uint, now time.Time, timeoutSeconds int) bool {
	if !order.PaymentLocked {
		return false
	}
	if order.LockedBy != nil && *order.LockedBy == userID {
		return false
	}
	return !lockExpired(order, now, timeoutSeconds)
}

// Acquire 抢占订单支付锁；成功返回 true，被他人持有且未超时返回 false
func (s *OrderLockService) Acquire(orderID, userID uint, timeoutSeconds int) (bool, error) {
	timeoutSeconds = ClampLockTimeout(timeoutSeconds)
	acquired := false
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		// 行锁串行化并发抢占
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

		now := time.Now()
		if lockBlocks(order, userID, now, timeoutSeconds) {
			return nil
		}

		updates := map[string]interface{}{
			"locked_by":      userID,
			"locked_at":      now,
			"payment_locked": true,
			"lock_seq":       order.LockSeq + 1,
			"updated_at":     now,
		}
		if err := s.orderRepo.WithTx(tx).Updates(orderID, updates); err != nil {
			return err
		}

		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   order.ID,
			EventType: constants.EventLockAcquire,
			CreatedBy: userID,
			Payload: models.JSON{
				"lock_seq":        order.LockSeq + 1,
				"timeout_seconds": timeoutSeconds,
			},
		}
		if err := s.eventRepo.WithTx(tx).Append(event); err != nil {
			return err
		}
		acquired = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return acquired, nil
}

// Release 释放支付锁；单条带条件更新保证原子性，仅持有者可释放
func (s *OrderLockService) Release(orderID, userID uint) (bool, error) {
	now := time.Now()
	result := models.DB.Model(&models.Order{}).
		Where("id = ? AND locked_by = ?", orderID, userID).
		Updates(map[string]interface{}{
			"locked_by":      nil,
			"locked_at":      nil,
			"payment_locked": false,
			"updated_at":     now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err == nil && order != nil {
		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   orderID,
			EventType: constants.EventLockRelease,
			CreatedBy: userID,
			Payload:   models.JSON{"lock_seq": order.LockSeq},
		}
		_ = s.eventRepo.Append(event)
	}
	return true, nil
}

// ForceRelease 管理员强制释放支付锁，审计记录原持有者；权限校验由调用方完成
func (s *OrderLockService) ForceRelease(orderID, actorUserID uint) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}

		var previousOwner uint
		if order.LockedBy != nil {
			previousOwner = *order.LockedBy
		}

		now := time.Now()
		updates := map[string]interface{}{
			"locked_by":      nil,
			"locked_at":      nil,
			"payment_locked": false,
			"updated_at":     now,
		}
		if err := s.orderRepo.WithTx(tx).Updates(orderID, updates); err != nil {
			return err
		}

		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   order.ID,
			EventType: constants.EventLockForceRelease,
			CreatedBy: actorUserID,
			Payload: models.JSON{
				"previous_owner": previousOwner,
				"lock_seq":       order.LockSeq,
			},
		}
		return s.eventRepo.WithTx(tx).Append(event)
	})
}

// Status 查询支付锁状态，超时判定在读取时完成
func (s *OrderLockService) Status(orderID uint, timeoutSeconds int) (*LockStatus, error) {
	timeoutSeconds = ClampLockTimeout(timeoutSeconds)
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	status := &LockStatus{
		Locked:   order.PaymentLocked,
		LockedBy: order.LockedBy,
		LockedAt: order.LockedAt,
		LockSeq:  order.LockSeq,
	}
	if order.PaymentLocked {
		status.Expired = lockExpired(order, time.Now(), timeoutSeconds)
	}
	return status, nil
}
