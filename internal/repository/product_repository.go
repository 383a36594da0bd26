package repository

import (
	"errors"

	"github.com/weipos/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	GetByID(id uint) (*models.Product, error)
	GetVariations(productID uint, variationIDs []uint) ([]models.ProductVariation, error)
	WithTx(tx *gorm.DB) *GormProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Variations").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetVariations 按 ID 列表获取指定商品下的规格
func (r *GormProductRepository) GetVariations(productID uint, variationIDs []uint) ([]models.ProductVariation, error) {
	if len(variationIDs) == 0 {
		return nil, nil
	}
	var variations []models.ProductVariation
	if err := r.db.Where("product_id = ? AND id IN ?", productID, variationIDs).
		Find(&variations).Error; err != nil {
		return nil, err
	}
	return variations, nil
}
