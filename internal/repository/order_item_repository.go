package repository

import (
	"errors"
	"time"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/models"

	"gorm.io/gorm"
)

// OrderItemRepository 订单项数据访问接口
type OrderItemRepository interface {
	Create(item *models.OrderItem) error
	GetByID(id uint) (*models.OrderItem, error)
	ListByOrder(orderID uint) ([]models.OrderItem, error)
	Updates(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	FireHeld(orderID uint, firedAt time.Time) (int64, error)
	FireHeldIn(orderID uint, itemIDs []uint, firedAt time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderItemRepository
}

// GormOrderItemRepository GORM 实现
type GormOrderItemRepository struct {
	db *gorm.DB
}

// NewOrderItemRepository 创建订单项仓库
func NewOrderItemRepository(db *gorm.DB) *GormOrderItemRepository {
	return &GormOrderItemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderItemRepository) WithTx(tx *gorm.DB) *GormOrderItemRepository {
	if tx == nil {
		return r
	}
	return &GormOrderItemRepository{db: tx}
}

// Create 创建订单项及其规格快照
func (r *GormOrderItemRepository) Create(item *models.OrderItem) error {
	return r.db.Create(item).Error
}

// GetByID 根据 ID 获取订单项
func (r *GormOrderItemRepository) GetByID(id uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.Preload("Variations").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByOrder 获取订单下全部订单项
func (r *GormOrderItemRepository) ListByOrder(orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := r.db.Preload("Variations").
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Updates 按 ID 更新指定字段
func (r *GormOrderItemRepository) Updates(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.OrderItem{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 删除订单项及其规格快照
func (r *GormOrderItemRepository) Delete(id uint) error {
	if err := r.db.Where("order_item_id = ?", id).Delete(&models.OrderItemVariation{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.OrderItem{}, id).Error
}

// FireHeld 将订单下所有暂存状态的订单项整批下厨，返回受影响行数
func (r *GormOrderItemRepository) FireHeld(orderID uint, firedAt time.Time) (int64, error) {
	result := r.db.Model(&models.OrderItem{}).
		Where("order_id = ? AND state = ?", orderID, constants.ItemStateHeld).
		Updates(map[string]interface{}{
			"state":    constants.ItemStateFired,
			"fired_at": firedAt,
		})
	return result.RowsAffected, result.Error
}

// FireHeldIn 将指定 ID 中仍处于暂存状态的订单项下厨，非暂存状态的 ID 跳过不报错
func (r *GormOrderItemRepository) FireHeldIn(orderID uint, itemIDs []uint, firedAt time.Time) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.OrderItem{}).
		Where("order_id = ? AND state = ? AND id IN ?", orderID, constants.ItemStateHeld, itemIDs).
		Updates(map[string]interface{}{
			"state":    constants.ItemStateFired,
			"fired_at": firedAt,
		})
	return result.RowsAffected, result.Error
}
