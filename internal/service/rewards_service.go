package service

import (
	"fmt"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RewardsService 关单后的会员权益发放；实现 RewardsHook
type RewardsService struct {
	orderRepo      repository.OrderRepository
	loyaltyRepo    repository.LoyaltyRepository
	customerRepo   repository.CustomerRepository
	eventRepo      repository.OrderEventRepository
	settingService *SettingService
}

// NewRewardsService 创建权益发放服务
func NewRewardsService(
	orderRepo repository.OrderRepository,
	loyaltyRepo repository.LoyaltyRepository,
	customerRepo repository.CustomerRepository,
	eventRepo repository.OrderEventRepository,
	settingService *SettingService,
) *RewardsService {
	return &RewardsService{
		orderRepo:      orderRepo,
		loyaltyRepo:    loyaltyRepo,
		customerRepo:   customerRepo,
		eventRepo:      eventRepo,
		settingService: settingService,
	}
}

// OnOrderClosed 按租户配置为关联会员累积返现与积分
func (s *RewardsService) OnOrderClosed(tenantID, orderID uint) ([]string, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.CustomerID == nil || *order.CustomerID == 0 {
		return []string{"no customer linked, rewards skipped"}, nil
	}

	cashbackPercent := decimal.NewFromFloat(s.settingService.GetFloat(tenantID, constants.SettingKeyCashbackPercent, 0))
	pointsRate := decimal.NewFromFloat(s.settingService.GetFloat(tenantID, constants.SettingKeyPointsEarnRate, 0))
	if cashbackPercent.IsZero() && pointsRate.IsZero() {
		return []string{"rewards not configured"}, nil
	}

	// 重复关单回调不重复累积
	existing, err := s.loyaltyRepo.ListLedgerByOrder(orderID)
	if err != nil {
		return nil, err
	}
	for _, entry := range existing {
		if entry.Type == constants.LedgerTypeCashbackEarn || entry.Type == constants.LedgerTypePointsEarn {
			return []string{"rewards already accrued"}, nil
		}
	}

	cashback := order.TotalAmount.Decimal.Mul(cashbackPercent).Div(decimal.NewFromInt(100)).Round(3)
	points := int(order.TotalAmount.Decimal.Mul(pointsRate).IntPart())

	var notes []string
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.WithTx(tx).GetForUpdate(*order.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			notes = append(notes, "customer not found, rewards skipped")
			return nil
		}

		if cashback.IsPositive() {
			entry := &models.LoyaltyLedgerEntry{
				TenantID:   tenantID,
				CustomerID: customer.ID,
				OrderID:    order.ID,
				Type:       constants.LedgerTypeCashbackEarn,
				CashDelta:  models.NewMoneyFromDecimal(cashback),
				Reason:     fmt.Sprintf("cashback for order %s", order.OrderNo),
			}
			if err := s.loyaltyRepo.WithTx(tx).CreateLedgerEntry(entry); err != nil {
				return err
			}
			notes = append(notes, fmt.Sprintf("cashback %s accrued", entry.CashDelta.String()))
		}
		if points > 0 {
			entry := &models.LoyaltyLedgerEntry{
				TenantID:    tenantID,
				CustomerID:  customer.ID,
				OrderID:     order.ID,
				Type:        constants.LedgerTypePointsEarn,
				PointsDelta: points,
				Reason:      fmt.Sprintf("points for order %s", order.OrderNo),
			}
			if err := s.loyaltyRepo.WithTx(tx).CreateLedgerEntry(entry); err != nil {
				return err
			}
			notes = append(notes, fmt.Sprintf("%d points accrued", points))
		}
		if len(notes) == 0 {
			return nil
		}

		newCashback := customer.CashbackBalance.Decimal.Add(cashback)
		if err := s.customerRepo.WithTx(tx).Updates(customer.ID, map[string]interface{}{
			"points_balance":   customer.PointsBalance + points,
			"cashback_balance": models.NewMoneyFromDecimal(newCashback),
		}); err != nil {
			return err
		}

		event := &models.OrderEvent{
			TenantID:  tenantID,
			OrderID:   order.ID,
			EventType: constants.EventRewardsAccrue,
			CreatedBy: 0,
			Payload: models.JSON{
				"cashback": cashback.StringFixed(3),
				"points":   points,
			},
		}
		return s.eventRepo.WithTx(tx).Append(event)
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}
