package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"
	"github.com/weipos/internal/repository"

	"gorm.io/gorm"
)

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	TenantID     uint
	BranchID     uint
	OrderType    string
	TableID      *uint
	CustomerID   *uint
	AggregatorID *uint
	Items        []AddItemInput
}

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	itemRepo      repository.OrderItemRepository
	productRepo   repository.ProductRepository
	eventRepo     repository.OrderEventRepository
	totalsService *TotalsService
	itemService   *OrderItemService
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	productRepo repository.ProductRepository,
	eventRepo repository.OrderEventRepository,
	totalsService *TotalsService,
	itemService *OrderItemService,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		itemRepo:      itemRepo,
		productRepo:   productRepo,
		eventRepo:     eventRepo,
		totalsService: totalsService,
		itemService:   itemService,
	}
}

// validOrderTypes 允许的订单类型
var validOrderTypes = map[string]bool{
	constants.OrderTypeDineIn:     true,
	constants.OrderTypeTakeaway:   true,
	constants.OrderTypeDelivery:   true,
	constants.OrderTypePickup:     true,
	constants.OrderTypeOnline:     true,
	constants.OrderTypeAggregator: true,
}

// Create 创建订单，初始状态为 open
func (s *OrderService) Create(actorUserID uint, input CreateOrderInput) (*models.Order, error) {
	if input.OrderType == "" {
		input.OrderType = constants.OrderTypeDineIn
	}
	if !validOrderTypes[input.OrderType] {
		return nil, ErrInvalidOrderType
	}

	var created *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		order := &models.Order{
			OrderNo:       generateOrderNo(),
			TenantID:      input.TenantID,
			BranchID:      input.BranchID,
			Status:        constants.OrderStatusOpen,
			PaymentStatus: constants.PaymentStatusUnpaid,
			OrderType:     input.OrderType,
			TableID:       input.TableID,
			CustomerID:    input.CustomerID,
			AggregatorID:  input.AggregatorID,
		}
		if err := s.orderRepo.WithTx(tx).Create(order, nil); err != nil {
			return err
		}

		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   order.ID,
			EventType: constants.EventOrderCreate,
			CreatedBy: actorUserID,
			Payload: models.JSON{
				"order_no":   order.OrderNo,
				"order_type": order.OrderType,
			},
		}
		if err := s.eventRepo.WithTx(tx).Append(event); err != nil {
			return err
		}

		// 初始订单项与订单同事务创建，任一校验失败则整单回滚
		for _, item := range input.Items {
			if _, err := s.itemService.addTx(tx, order, actorUserID, item); err != nil {
				return err
			}
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(created.ID)
}

// Get 获取订单详情
func (s *OrderService) Get(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List 分页查询订单
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// SoftDelete 软删除订单；已删除订单对一切写操作不可见
func (s *OrderService) SoftDelete(orderID, actorUserID uint) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.IsDeleted {
			return ErrOrderAlreadyDeleted
		}
		if !isModifiableStatus(order.Status) {
			return ErrOrderNotModifiable
		}
		if order.PaymentStatus != constants.PaymentStatusUnpaid {
			return ErrOrderNotModifiable
		}

		now := time.Now()
		updates := map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		}
		if err := s.orderRepo.WithTx(tx).Updates(orderID, updates); err != nil {
			return err
		}

		event := &models.OrderEvent{
			TenantID:  order.TenantID,
			OrderID:   order.ID,
			EventType: constants.EventOrderDelete,
			CreatedBy: actorUserID,
			Payload:   models.JSON{"order_no": order.OrderNo},
		}
		return s.eventRepo.WithTx(tx).Append(event)
	})
}

// ListEvents 分页查询订单审计事件
func (s *OrderService) ListEvents(orderID uint, page, pageSize int) ([]models.OrderEvent, int64, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, 0, err
	}
	if order == nil {
		return nil, 0, ErrOrderNotFound
	}
	return s.eventRepo.ListByOrder(orderID, page, pageSize)
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	randPart := randNumeric(6)
	return fmt.Sprintf("WP%s%s", now, randPart)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
