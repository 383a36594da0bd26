package repository

import (
	"errors"

	"github.com/weipos/internal/models"

	"gorm.io/gorm"
)

// SettingRepository 租户配置数据访问接口
type SettingRepository interface {
	GetByKey(tenantID uint, key string) (*models.Setting, error)
	Upsert(tenantID uint, key, value string) (*models.Setting, error)
	WithTx(tx *gorm.DB) *GormSettingRepository
}

// GormSettingRepository GORM 实现
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建配置仓库
func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSettingRepository) WithTx(tx *gorm.DB) *GormSettingRepository {
	if tx == nil {
		return r
	}
	return &GormSettingRepository{db: tx}
}

// GetByKey 获取租户配置
func (r *GormSettingRepository) GetByKey(tenantID uint, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.Where("tenant_id = ? AND key = ?", tenantID, key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// Upsert 更新或创建租户配置
func (r *GormSettingRepository) Upsert(tenantID uint, key, value string) (*models.Setting, error) {
	setting, err := r.GetByKey(tenantID, key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		setting = &models.Setting{
			TenantID: tenantID,
			Key:      key,
			Value:    value,
		}
		if err := r.db.Create(setting).Error; err != nil {
			return nil, err
		}
		return setting, nil
	}

	setting.Value = value
	if err := r.db.Save(setting).Error; err != nil {
		return nil, err
	}
	return setting, nil
}
