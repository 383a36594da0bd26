package repository

import (
	"errors"

	"github.com/weipos/internal/models"

	"gorm.io/gorm"
)

// AggregatorRepository 外卖平台数据访问接口
type AggregatorRepository interface {
	GetByID(id uint) (*models.Aggregator, error)
	WithTx(tx *gorm.DB) *GormAggregatorRepository
}

// GormAggregatorRepository GORM 实现
type GormAggregatorRepository struct {
	db *gorm.DB
}

// NewAggregatorRepository 创建外卖平台仓库
func NewAggregatorRepository(db *gorm.DB) *GormAggregatorRepository {
	return &GormAggregatorRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAggregatorRepository) WithTx(tx *gorm.DB) *GormAggregatorRepository {
	if tx == nil {
		return r
	}
	return &GormAggregatorRepository{db: tx}
}

// GetByID 根据 ID 获取平台
func (r *GormAggregatorRepository) GetByID(id uint) (*models.Aggregator, error) {
	var aggregator models.Aggregator
	if err := r.db.First(&aggregator, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &aggregator, nil
}
