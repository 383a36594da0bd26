package repository

import (
	"errors"

	"github.com/weipos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository 门店库存数据访问接口
type StockRepository interface {
	GetForUpdate(branchID, productID uint) (*models.BranchStock, error)
	Create(stock *models.BranchStock) error
	UpdateQuantity(id uint, quantity int) error
	CreateMovement(movement *models.StockMovement) error
	ListMovementsByOrder(orderID uint) ([]models.StockMovement, error)
	WithTx(tx *gorm.DB) *GormStockRepository
}

// GormStockRepository GORM 实现
type GormStockRepository struct {
	db *gorm.DB
}

// NewStockRepository 创建库存仓库
func NewStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockRepository) WithTx(tx *gorm.DB) *GormStockRepository {
	if tx == nil {
		return r
	}
	return &GormStockRepository{db: tx}
}

// GetForUpdate 加行锁获取门店商品库存，必须在事务内调用
func (r *GormStockRepository) GetForUpdate(branchID, productID uint) (*models.BranchStock, error) {
	var stock models.BranchStock
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stock, nil
}

// Create 创建库存记录
func (r *GormStockRepository) Create(stock *models.BranchStock) error {
	return r.db.Create(stock).Error
}

// UpdateQuantity 更新库存数量
func (r *GormStockRepository) UpdateQuantity(id uint, quantity int) error {
	return r.db.Model(&models.BranchStock{}).Where("id = ?", id).Update("quantity", quantity).Error
}

// CreateMovement 追加一条库存流水
func (r *GormStockRepository) CreateMovement(movement *models.StockMovement) error {
	return r.db.Create(movement).Error
}

// ListMovementsByOrder 获取订单关联的库存流水
func (r *GormStockRepository) ListMovementsByOrder(orderID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
