package service

import (
	"fmt"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/repository"

	"gorm.io/gorm"
)

// StockflowService 关单后的库存扣减；实现 StockflowHook
type StockflowService struct {
	orderRepo   repository.OrderRepository
	itemRepo    repository.OrderItemRepository
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	eventRepo   repository.OrderEventRepository
}

// NewStockflowService 创建库存扣减服务
func NewStockflowService(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	eventRepo repository.OrderEventRepository,
) *StockflowService {
	return &StockflowService{
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		eventRepo:   eventRepo,
	}
}

// OnOrderClosed 对库存跟踪商品按订单项数量扣减门店库存
func (s *StockflowService) OnOrderClosed(tenantID, orderID, userID uint) ([]string, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	// 重复关单回调不重复扣减
	movements, err := s.stockRepo.ListMovementsByOrder(orderID)
	if err != nil {
		return nil, err
	}
	for _, movement := range movements {
		if movement.MovementType == constants.StockMovementSaleOut {
			return []string{"stock already deducted"}, nil
		}
	}

	items, err := s.itemRepo.ListByOrder(orderID)
	if err != nil {
		return nil, err
	}

	var notes []string
	deducted := 0
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if item.State == constants.ItemStateVoided {
				continue
			}
			product, err := s.productRepo.WithTx(tx).GetByID(item.ProductID)
			if err != nil {
				return err
			}
			if product == nil || !product.IsStockTracked {
				continue
			}

			stock, err := s.stockRepo.WithTx(tx).GetForUpdate(order.BranchID, item.ProductID)
			if err != nil {
				return err
			}
			if stock == nil {
				stock = &models.BranchStock{
					TenantID:  tenantID,
					BranchID:  order.BranchID,
					ProductID: item.ProductID,
					Quantity:  0,
				}
				if err := s.stockRepo.WithTx(tx).Create(stock); err != nil {
					return err
				}
			}
			if err := s.stockRepo.WithTx(tx).UpdateQuantity(stock.ID, stock.Quantity-item.Quantity); err != nil {
				return err
			}
			if err := s.stockRepo.WithTx(tx).CreateMovement(&models.StockMovement{
				TenantID:      tenantID,
				BranchID:      order.BranchID,
				ProductID:     item.ProductID,
				OrderID:       order.ID,
				MovementType:  constants.StockMovementSaleOut,
				QuantityDelta: -item.Quantity,
			}); err != nil {
				return err
			}
			deducted++
			notes = append(notes, fmt.Sprintf("deducted %d x product %d", item.Quantity, item.ProductID))
		}
		if deducted == 0 {
			return nil
		}

		event := &models.OrderEvent{
			TenantID:  tenantID,
			OrderID:   order.ID,
			EventType: constants.EventStockDeduct,
			CreatedBy: userID,
			Payload:   models.JSON{"lines": deducted},
		}
		return s.eventRepo.WithTx(tx).Append(event)
	})
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		notes = []string{"no stock tracked items"}
	}
	return notes, nil
}
