package service

import (
	"fmt"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/logger"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/queue"
	"github.com/weipos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReversalService 退款/作废冲正服务；各步骤独立兜底，单步失败不阻断其余步骤
type ReversalService struct {
	orderRepo    repository.OrderRepository
	itemRepo     repository.OrderItemRepository
	productRepo  repository.ProductRepository
	loyaltyRepo  repository.LoyaltyRepository
	customerRepo repository.CustomerRepository
	stockRepo    repository.StockRepository
	eventRepo    repository.OrderEventRepository
	queueClient  *queue.Client
}

// NewReversalService 创建冲正服务
func NewReversalService(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	productRepo repository.ProductRepository,
	loyaltyRepo repository.LoyaltyRepository,
	customerRepo repository.CustomerRepository,
	stockRepo repository.StockRepository,
	eventRepo repository.OrderEventRepository,
	queueClient *queue.Client,
) *ReversalService {
	return &ReversalService{
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
		productRepo:  productRepo,
		loyaltyRepo:  loyaltyRepo,
		customerRepo: customerRepo,
		stockRepo:    stockRepo,
		eventRepo:    eventRepo,
		queueClient:  queueClient,
	}
}

type reversalStep struct {
	name string
	run  func() error
}

// Reverse 执行订单冲正；在订单进入 voided/refunded 之后调用，失败只记录不上抛
func (s *ReversalService) Reverse(orderID, actorUserID uint, reason string) {
	if s == nil {
		return
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil || order == nil {
		logger.Warnw("reversal_order_load_failed", "order_id", orderID, "error", err)
		return
	}

	earnEntries, err := s.loadEarnEntries(orderID)
	if err != nil {
		logger.Warnw("reversal_ledger_load_failed", "order_id", orderID, "error", err)
		earnEntries = nil
	}

	// 记录本次实际冲掉的积分/返现净额，用于回写会员余额
	var reversedPoints int
	reversedCash := decimal.Zero

	steps := []reversalStep{
		{
			name: "void_vouchers",
			run: func() error {
				return s.voidVouchers(earnEntries)
			},
		},
		{
			name: "insert_reversal_rows",
			run: func() error {
				points, cash, err := s.insertReversalRows(order, earnEntries, reason)
				reversedPoints = points
				reversedCash = cash
				return err
			},
		},
		{
			name: "clamp_customer_balance",
			run: func() error {
				return s.clampCustomerBalance(order, reversedPoints, reversedCash)
			},
		},
		{
			name: "restock_items",
			run: func() error {
				return s.restockItems(order, actorUserID)
			},
		},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			logger.Warnw("reversal_step_failed",
				"order_id", orderID,
				"step", step.name,
				"error", err,
			)
			event := &models.OrderEvent{
				TenantID:  order.TenantID,
				OrderID:   order.ID,
				EventType: constants.EventReversalFailed,
				CreatedBy: actorUserID,
				Payload: models.JSON{
					"step":   step.name,
					"reason": reason,
					"error":  err.Error(),
				},
			}
			if appendErr := s.eventRepo.Append(event); appendErr != nil {
				logger.Warnw("reversal_step_event_failed", "order_id", orderID, "step", step.name, "error", appendErr)
			}
		}
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueReversalAudit(order.TenantID, order.ID, reason); err != nil {
			logger.Warnw("enqueue_reversal_audit_failed", "order_id", orderID, "error", err)
		}
	}
}

// loadEarnEntries 加载订单的正向积分/返现流水
func (s *ReversalService) loadEarnEntries(orderID uint) ([]models.LoyaltyLedgerEntry, error) {
	entries, err := s.loyaltyRepo.ListLedgerByOrder(orderID)
	if err != nil {
		return nil, err
	}
	var earns []models.LoyaltyLedgerEntry
	for _, entry := range entries {
		if entry.Type == constants.LedgerTypeCashbackEarn || entry.Type == constants.LedgerTypePointsEarn {
			earns = append(earns, entry)
		}
	}
	return earns, nil
}

// voidVouchers 作废流水关联的代金券；重复作废视为无操作
func (s *ReversalService) voidVouchers(entries []models.LoyaltyLedgerEntry) error {
	for _, entry := range entries {
		if entry.VoucherID == 0 {
			continue
		}
		if err := s.loyaltyRepo.UpdateVoucher(entry.VoucherID, map[string]interface{}{
			"status":         constants.VoucherStatusVoid,
			"uses_remaining": 0,
		}); err != nil {
			return err
		}
	}
	return nil
}

// reversalReason 冲正流水通过 reason 引用原始流水，兼做幂等标记
func reversalReason(entryID uint, reason string) string {
	return fmt.Sprintf("reversal of ledger entry %d (%s)", entryID, reason)
}

// insertReversalRows 写入负向冲正流水；净额始终取 -|delta|，防止二次取负
func (s *ReversalService) insertReversalRows(order *models.Order, entries []models.LoyaltyLedgerEntry, reason string) (int, decimal.Decimal, error) {
	reversedPoints := 0
	reversedCash := decimal.Zero
	for _, entry := range entries {
		entryReason := reversalReason(entry.ID, reason)

		var existing int64
		if err := models.DB.Model(&models.LoyaltyLedgerEntry{}).
			Where("order_id = ? AND reason = ?", order.ID, entryReason).
			Count(&existing).Error; err != nil {
			return reversedPoints, reversedCash, err
		}
		if existing > 0 {
			continue
		}

		revokeType := constants.LedgerTypePointsRevoke
		if entry.Type == constants.LedgerTypeCashbackEarn {
			revokeType = constants.LedgerTypeCashbackRevoke
		}
		cashDelta := entry.CashDelta.Decimal.Abs().Neg()
		pointsDelta := entry.PointsDelta
		if pointsDelta < 0 {
			pointsDelta = -pointsDelta
		}
		pointsDelta = -pointsDelta

		reversal := &models.LoyaltyLedgerEntry{
			TenantID:    entry.TenantID,
			CustomerID:  entry.CustomerID,
			OrderID:     order.ID,
			Type:        revokeType,
			CashDelta:   models.NewMoneyFromDecimal(cashDelta),
			PointsDelta: pointsDelta,
			VoucherID:   entry.VoucherID,
			Reason:      entryReason,
		}
		if err := s.loyaltyRepo.CreateLedgerEntry(reversal); err != nil {
			return reversedPoints, reversedCash, err
		}
		reversedPoints += -pointsDelta
		reversedCash = reversedCash.Add(cashDelta.Abs())
	}
	return reversedPoints, reversedCash, nil
}

// clampCustomerBalance 回写会员余额并截断到非负
func (s *ReversalService) clampCustomerBalance(order *models.Order, reversedPoints int, reversedCash decimal.Decimal) error {
	if order.CustomerID == nil || *order.CustomerID == 0 {
		return nil
	}
	if reversedPoints == 0 && reversedCash.IsZero() {
		return nil
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.WithTx(tx).GetForUpdate(*order.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return nil
		}
		points := customer.PointsBalance - reversedPoints
		if points < 0 {
			points = 0
		}
		cashback := customer.CashbackBalance.Decimal.Sub(reversedCash)
		if cashback.IsNegative() {
			cashback = decimal.Zero
		}
		return s.customerRepo.WithTx(tx).Updates(customer.ID, map[string]interface{}{
			"points_balance":   points,
			"cashback_balance": models.NewMoneyFromDecimal(cashback),
		})
	})
}

// restockItems 对库存跟踪商品按订单项数量回补库存并记录退货流水；已有退货流水的商品视为已回补
func (s *ReversalService) restockItems(order *models.Order, actorUserID uint) error {
	movements, err := s.stockRepo.ListMovementsByOrder(order.ID)
	if err != nil {
		return err
	}
	restocked := make(map[uint]bool)
	for _, movement := range movements {
		if movement.MovementType == constants.StockMovementReturnIn {
			restocked[movement.ProductID] = true
		}
	}

	items, err := s.itemRepo.ListByOrder(order.ID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.State == constants.ItemStateVoided {
			continue
		}
		if restocked[item.ProductID] {
			continue
		}
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return err
		}
		if product == nil || !product.IsStockTracked {
			continue
		}
		quantity := item.Quantity
		if err := models.DB.Transaction(func(tx *gorm.DB) error {
			stock, err := s.stockRepo.WithTx(tx).GetForUpdate(order.BranchID, item.ProductID)
			if err != nil {
				return err
			}
			if stock == nil {
				if err := s.stockRepo.WithTx(tx).Create(&models.BranchStock{
					TenantID:  order.TenantID,
					BranchID:  order.BranchID,
					ProductID: item.ProductID,
					Quantity:  quantity,
				}); err != nil {
					return err
				}
			} else {
				if err := s.stockRepo.WithTx(tx).UpdateQuantity(stock.ID, stock.Quantity+quantity); err != nil {
					return err
				}
			}
			return s.stockRepo.WithTx(tx).CreateMovement(&models.StockMovement{
				TenantID:      order.TenantID,
				BranchID:      order.BranchID,
				ProductID:     item.ProductID,
				OrderID:       order.ID,
				MovementType:  constants.StockMovementReturnIn,
				QuantityDelta: quantity,
			})
		}); err != nil {
			return err
		}
	}
	return nil
}
