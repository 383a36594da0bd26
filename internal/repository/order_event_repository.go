package repository

import (
	"github.com/weipos/internal/models"

	"gorm.io/gorm"
)

// OrderEventRepository 订单事件数据访问接口；事件只追加不修改
type OrderEventRepository interface {
	Append(event *models.OrderEvent) error
	ListByOrder(orderID uint, page, pageSize int) ([]models.OrderEvent, int64, error)
	WithTx(tx *gorm.DB) *GormOrderEventRepository
}

// GormOrderEventRepository GORM 实现
type GormOrderEventRepository struct {
	db *gorm.DB
}

// NewOrderEventRepository 创建订单事件仓库
func NewOrderEventRepository(db *gorm.DB) *GormOrderEventRepository {
	return &GormOrderEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderEventRepository) WithTx(tx *gorm.DB) *GormOrderEventRepository {
	if tx == nil {
		return r
	}
	return &GormOrderEventRepository{db: tx}
}

// Append 追加一条事件
func (r *GormOrderEventRepository) Append(event *models.OrderEvent) error {
	return r.db.Create(event).Error
}

// ListByOrder 按时间倒序分页查询订单事件
func (r *GormOrderEventRepository) ListByOrder(orderID uint, page, pageSize int) ([]models.OrderEvent, int64, error) {
	query := r.db.Model(&models.OrderEvent{}).Where("order_id = ?", orderID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.OrderEvent
	listQuery := applyPagination(query.Order("id DESC"), page, pageSize)
	if err := listQuery.Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
