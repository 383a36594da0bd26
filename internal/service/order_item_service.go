package service

import (
	"time"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AddItemInput 添加订单项入参
type AddItemInput struct {
	ProductID    uint   `json:"product_id"`
	Quantity     int    `json:"quantity"`
	VariationIDs []uint `json:"variation_ids"`
	Notes        string `json:"notes"`
}

// UpdateItemInput 更新订单项入参
type UpdateItemInput struct {
	Quantity int     `json:"quantity"`
	Notes    *string `json:"notes"`
}

// OrderItemService 订单项服务；写操作统一受订单状态与支付锁约束
type OrderItemService struct {
	orderRepo      repository.OrderRepository
	itemRepo       repository.OrderItemRepository
	productRepo    repository.ProductRepository
	eventRepo      repository.OrderEventRepository
	totalsService  *TotalsService
	settingService *SettingService
}

// NewOrderItemService 创建订单项服务
func NewOrderItemService(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	productRepo repository.ProductRepository,
	eventRepo repository.OrderEventRepository,
	totalsService *TotalsService,
	settingService *SettingService,
) *OrderItemService {
	return &OrderItemService{
		orderRepo:      orderRepo,
		itemRepo:       itemRepo,
		productRepo:    productRepo,
		eventRepo:      eventRepo,
		totalsService:  totalsService,
		settingService: settingService,
	}
}

// List 获取订单项列表；只读操作不受支付锁限制
func (s *OrderItemService) List(orderID uint) ([]models.OrderItem, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.itemRepo.ListByOrder(orderID)
}

// loadModifiableOrder 加行锁获取订单并校验可写性；支付锁被他人持有且未超时则拒绝
func (s *OrderItemService) loadModifiableOrder(tx *gorm.DB, orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.WithTx(tx).GetForUpdate(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.IsDeleted {
		return nil, ErrOrderDeleted
	}
	if !isModifiableStatus(order.Status) {
		return nil, ErrOrderNotModifiable
	}
	timeout := s.settingService.WithTx(tx).GetLockTimeoutSeconds(order.TenantID, constants.LockTimeoutDefaultSeconds)
	if lockBlocks(order, userID, time.Now(), timeout) {
		return nil, ErrOrderLocked
	}
	return order, nil
}

// Add 添加订单项；名称与单价在此刻快照，后续商品目录变更不影响历史订单
func (s *OrderItemService) Add(orderID, actorUserID uint, input AddItemInput) (*models.OrderItem, error) {
	var created *models.OrderItem
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.loadModifiableOrder(tx, orderID, actorUserID)
		if err != nil {
			return err
		}
		created, err = s.addTx(tx, order, actorUserID, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// addTx 在调用方事务内校验商品、快照单价并创建订单项，随后重算订单金额
func (s *OrderItemService) addTx(tx *gorm.DB, order *models.Order, actorUserID uint, input AddItemInput) (*models.OrderItem, error) {
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.WithTx(tx).GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.TenantID != order.TenantID {
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}

	variations, err := s.productRepo.WithTx(tx).GetVariations(product.ID, input.VariationIDs)
	if err != nil {
		return nil, err
	}
	if len(variations) != len(input.VariationIDs) {
		return nil, ErrVariationNotFound
	}

	unitPrice := product.Price.Decimal
	itemVariations := make([]models.OrderItemVariation, 0, len(variations))
	for _, variation := range variations {
		unitPrice = unitPrice.Add(variation.PriceDelta.Decimal)
		itemVariations = append(itemVariations, models.OrderItemVariation{
			GroupName:  variation.GroupName,
			ValueName:  variation.ValueName,
			PriceDelta: variation.PriceDelta,
		})
	}
	unitPrice = unitPrice.Round(3)
	lineSubtotal := unitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))).Round(3)

	item := &models.OrderItem{
		OrderID:      order.ID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		UnitPrice:    models.NewMoneyFromDecimal(unitPrice),
		Quantity:     input.Quantity,
		LineSubtotal: models.NewMoneyFromDecimal(lineSubtotal),
		LineTotal:    models.NewMoneyFromDecimal(lineSubtotal),
		Notes:        input.Notes,
		State:        constants.ItemStateHeld,
		Variations:   itemVariations,
	}
	if err := s.itemRepo.WithTx(tx).Create(item); err != nil {
		return nil, err
	}

	if _, err := s.totalsService.RecalculateTx(tx, order.ID); err != nil {
		return nil, err
	}

	event := &models.OrderEvent{
		TenantID:  order.TenantID,
		OrderID:   order.ID,
		EventType: constants.EventItemAdd,
		CreatedBy: actorUserID,
		Payload: models.JSON{
			"item_id":    item.ID,
			"product_id": product.ID,
			"quantity":   input.Quantity,
			"unit_price": item.UnitPrice.String(),
		},
	}
	if err := s.eventRepo.WithTx(tx).Append(event); err != nil {
		return nil, err
	}
	return item, nil
}

// Update 修改订单项数量或备注；行小计按不可变的单价快照重算
func (s *OrderItemService) Update(itemID, actorUserID uint, input UpdateItemInput) (*models.OrderItem, error) {
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var updated *models.OrderItem
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.WithTx(tx).GetByID(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrItemNotFound
		}

		if _, err := s.loadModifiableOrder(tx, item.OrderID, actorUserID); err != nil {
			return err
		}

		switch item.State {
		case constants.ItemStateFired, constants.ItemStateInPrep, constants.ItemStateReady, constants.ItemStateVoided:
			return ErrItemNotEditable
		}

		now := time.Now()
		lineSubtotal := item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(input.Quantity))).Round(3)
		lineTotal := lineSubtotal.Sub(item.DiscountAmount.Decimal).Round(3)
		updates := map[string]interface{}{
			"quantity":      input.Quantity,
			"line_subtotal": models.NewMoneyFromDecimal(lineSubtotal),
			"line_total":    models.NewMoneyFromDecimal(lineTotal),
			"updated_at":    now,
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if err := s.itemRepo.WithTx(tx).Updates(itemID, updates); err != nil {
			return err
		}

		if _, err := s.totalsService.RecalculateTx(tx, item.OrderID); err != nil {
			return err
		}

		order, err := s.orderRepo.WithTx(tx).GetByID(item.OrderID)
		if err != nil {
			return err
		}
		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   order.ID,
			EventType: constants.EventItemUpdate,
			CreatedBy: actorUserID,
			Payload: models.JSON{
				"item_id":      item.ID,
				"old_quantity": item.Quantity,
				"new_quantity": input.Quantity,
			},
		}
		if err := s.eventRepo.WithTx(tx).Append(event); err != nil {
			return err
		}

		updated, err = s.itemRepo.WithTx(tx).GetByID(itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete 删除订单项并级联删除规格快照；厨房已接单的订单项不可删除
func (s *OrderItemService) Delete(itemID, actorUserID uint) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.WithTx(tx).GetByID(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrItemNotFound
		}

		order, err := s.loadModifiableOrder(tx, item.OrderID, actorUserID)
		if err != nil {
			return err
		}

		switch item.State {
		case constants.ItemStateFired, constants.ItemStateInPrep, constants.ItemStateReady:
			return ErrItemNotDeletable
		}

		if err := s.itemRepo.WithTx(tx).Delete(itemID); err != nil {
			return err
		}

		if _, err := s.totalsService.RecalculateTx(tx, order.ID); err != nil {
			return err
		}

		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   order.ID,
			EventType: constants.EventItemVoid,
			CreatedBy: actorUserID,
			Payload: models.JSON{
				"item_id":    item.ID,
				"product_id": item.ProductID,
				"quantity":   item.Quantity,
			},
		}
		return s.eventRepo.WithTx(tx).Append(event)
	})
}

// Fire 批量下厨指定订单项；仅暂存状态的订单项会被转换，返回实际下厨数量
func (s *OrderItemService) Fire(orderID, actorUserID uint, itemIDs []uint) (int64, error) {
	var fired int64
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.loadModifiableOrder(tx, orderID, actorUserID)
		if err != nil {
			return err
		}

		now := time.Now()
		if len(itemIDs) == 0 {
			fired, err = s.itemRepo.WithTx(tx).FireHeld(orderID, now)
		} else {
			fired, err = s.itemRepo.WithTx(tx).FireHeldIn(orderID, itemIDs, now)
		}
		if err != nil {
			return err
		}
		if fired == 0 {
			return nil
		}

		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   order.ID,
			EventType: constants.EventItemsFire,
			CreatedBy: actorUserID,
			Payload: models.JSON{
				"fired_count": fired,
				"item_ids":    itemIDs,
			},
		}
		return s.eventRepo.WithTx(tx).Append(event)
	})
	if err != nil {
		return 0, err
	}
	return fired, nil
}
