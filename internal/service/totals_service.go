package service

import (
	"time"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totals 订单金额拆分
type Totals struct {
	Subtotal          models.Money `json:"subtotal"`
	Discount          models.Money `json:"discount"`
	TaxPercent        models.Money `json:"tax_percent"`
	TaxAmount         models.Money `json:"tax_amount"`
	ServicePercent    models.Money `json:"service_percent"`
	ServiceAmount     models.Money `json:"service_amount"`
	CommissionPercent models.Money `json:"commission_percent"`
	CommissionAmount  models.Money `json:"commission_amount"`
	Total             models.Money `json:"total"`
}

// TotalsService 订单金额计算服务
type TotalsService struct {
	orderRepo      repository.OrderRepository
	itemRepo       repository.OrderItemRepository
	aggregatorRepo repository.AggregatorRepository
	settingService *SettingService
}

// NewTotalsService 创建金额计算服务
func NewTotalsService(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	aggregatorRepo repository.AggregatorRepository,
	settingService *SettingService,
) *TotalsService {
	return &TotalsService{
		orderRepo:      orderRepo,
		itemRepo:       itemRepo,
		aggregatorRepo: aggregatorRepo,
		settingService: settingService,
	}
}

// Calculate 计算订单金额拆分，只读不写
func (s *TotalsService) Calculate(orderID uint) (*Totals, error) {
	return s.calculate(models.DB, orderID)
}

// CalculateTx 在事务内计算订单金额拆分
func (s *TotalsService) CalculateTx(tx *gorm.DB, orderID uint) (*Totals, error) {
	return s.calculate(tx, orderID)
}

func (s *TotalsService) calculate(tx *gorm.DB, orderID uint) (*Totals, error) {
	order, err := s.orderRepo.WithTx(tx).GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	items, err := s.itemRepo.WithTx(tx).ListByOrder(orderID)
	if err != nil {
		return nil, err
	}

	itemsSubtotal := decimal.Zero
	itemsDiscount := decimal.Zero
	itemsTotal := decimal.Zero
	for _, item := range items {
		itemsSubtotal = itemsSubtotal.Add(item.LineSubtotal.Decimal)
		itemsDiscount = itemsDiscount.Add(item.DiscountAmount.Decimal)
		itemsTotal = itemsTotal.Add(item.LineTotal.Decimal)
	}
	// 历史数据可能只写了行小计，行合计为空时按 小计-优惠 推导
	if itemsTotal.IsZero() && itemsSubtotal.IsPositive() {
		itemsTotal = itemsSubtotal.Sub(itemsDiscount)
	}

	var discountRows []models.OrderDiscount
	if err := tx.Where("order_id = ?", orderID).Find(&discountRows).Error; err != nil {
		return nil, err
	}
	orderDiscount := decimal.Zero
	for _, row := range discountRows {
		orderDiscount = orderDiscount.Add(row.AmountApplied.Decimal)
	}

	taxPercent := decimal.NewFromFloat(s.settingService.WithTx(tx).GetFloat(order.TenantID, constants.SettingKeyTaxPercent, 0))
	servicePercent := decimal.Zero
	// 服务费只对堂食订单生效
	if order.OrderType == constants.OrderTypeDineIn {
		servicePercent = decimal.NewFromFloat(s.settingService.WithTx(tx).GetFloat(order.TenantID, constants.SettingKeyServicePercent, 0))
	}

	// 金额不允许为负
	base := itemsTotal.Sub(orderDiscount)
	if base.IsNegative() {
		base = decimal.Zero
	}
	base = base.Round(3)

	hundred := decimal.NewFromInt(100)
	taxAmount := base.Mul(taxPercent).Div(hundred).Round(3)
	serviceAmount := base.Mul(servicePercent).Div(hundred).Round(3)

	commissionPercent := decimal.Zero
	commissionAmount := decimal.Zero
	if order.AggregatorID != nil && *order.AggregatorID > 0 {
		aggregator, err := s.aggregatorRepo.WithTx(tx).GetByID(*order.AggregatorID)
		if err != nil {
			return nil, err
		}
		if aggregator != nil && aggregator.IsActive && aggregator.TenantID == order.TenantID {
			commissionPercent = aggregator.DefaultCommissionPercent.Decimal
			commissionAmount = base.Add(taxAmount).Add(serviceAmount).
				Mul(commissionPercent).Div(hundred).Round(3)
		}
	}

	total := base.Add(taxAmount).Add(serviceAmount).Add(commissionAmount).Round(3)

	totalSubtotal := itemsSubtotal.Round(3)
	totalDiscount := itemsDiscount.Add(orderDiscount).Round(3)

	return &Totals{
		Subtotal:          models.NewMoneyFromDecimal(totalSubtotal),
		Discount:          models.NewMoneyFromDecimal(totalDiscount),
		TaxPercent:        models.NewMoneyFromDecimal(taxPercent),
		TaxAmount:         models.NewMoneyFromDecimal(taxAmount),
		ServicePercent:    models.NewMoneyFromDecimal(servicePercent),
		ServiceAmount:     models.NewMoneyFromDecimal(serviceAmount),
		CommissionPercent: models.NewMoneyFromDecimal(commissionPercent),
		CommissionAmount:  models.NewMoneyFromDecimal(commissionAmount),
		Total:             models.NewMoneyFromDecimal(total),
	}, nil
}

// RecalculateTx 在事务内重算并回写订单金额
func (s *TotalsService) RecalculateTx(tx *gorm.DB, orderID uint) (*Totals, error) {
	totals, err := s.calculate(tx, orderID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"subtotal_amount":    totals.Subtotal,
		"discount_amount":    totals.Discount,
		"tax_percent":        totals.TaxPercent,
		"tax_amount":         totals.TaxAmount,
		"service_percent":    totals.ServicePercent,
		"service_amount":     totals.ServiceAmount,
		"commission_percent": totals.CommissionPercent,
		"commission_amount":  totals.CommissionAmount,
		"total_amount":       totals.Total,
		"updated_at":         time.Now(),
	}
	if err := s.orderRepo.WithTx(tx).Updates(orderID, updates); err != nil {
		return nil, err
	}
	return totals, nil
}
