package service

import (
	"errors"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderDiscountService 整单折扣服务；折扣变更与金额重算在同一事务内完成
type OrderDiscountService struct {
	orderRepo     repository.OrderRepository
	eventRepo     repository.OrderEventRepository
	totalsService *TotalsService
	itemService   *OrderItemService
}

// NewOrderDiscountService 创建整单折扣服务
func NewOrderDiscountService(
	orderRepo repository.OrderRepository,
	eventRepo repository.OrderEventRepository,
	totalsService *TotalsService,
	itemService *OrderItemService,
) *OrderDiscountService {
	return &OrderDiscountService{
		orderRepo:     orderRepo,
		eventRepo:     eventRepo,
		totalsService: totalsService,
		itemService:   itemService,
	}
}

// Apply 应用一条整单折扣并重算金额
func (s *OrderDiscountService) Apply(orderID, actorUserID uint, programName string, amount decimal.Decimal) (*models.OrderDiscount, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidDiscount
	}

	var created *models.OrderDiscount
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.itemService.loadModifiableOrder(tx, orderID, actorUserID)
		if err != nil {
			return err
		}

		discount := &models.OrderDiscount{
			OrderID:       order.ID,
			ProgramName:   programName,
			AmountApplied: models.NewMoneyFromDecimal(amount),
		}
		if err := tx.Create(discount).Error; err != nil {
			return err
		}

		if _, err := s.totalsService.RecalculateTx(tx, order.ID); err != nil {
			return err
		}

		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   order.ID,
			EventType: constants.EventDiscountApply,
			CreatedBy: actorUserID,
			Payload: models.JSON{
				"discount_id": discount.ID,
				"program":     programName,
				"amount":      discount.AmountApplied.String(),
			},
		}
		if err := s.eventRepo.WithTx(tx).Append(event); err != nil {
			return err
		}
		created = discount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Remove 移除一条整单折扣并重算金额
func (s *OrderDiscountService) Remove(orderID, discountID, actorUserID uint) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.itemService.loadModifiableOrder(tx, orderID, actorUserID)
		if err != nil {
			return err
		}

		var discount models.OrderDiscount
		if err := tx.Where("id = ? AND order_id = ?", discountID, order.ID).First(&discount).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDiscountNotFound
			}
			return err
		}
		if err := tx.Delete(&models.OrderDiscount{}, discount.ID).Error; err != nil {
			return err
		}

		if _, err := s.totalsService.RecalculateTx(tx, order.ID); err != nil {
			return err
		}

		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   order.ID,
			EventType: constants.EventDiscountRemove,
			CreatedBy: actorUserID,
			Payload: models.JSON{
				"discount_id": discount.ID,
				"program":     discount.ProgramName,
			},
		}
		return s.eventRepo.WithTx(tx).Append(event)
	})
}
