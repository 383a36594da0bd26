package repository

import (
	"github.com/weipos/internal/models"

	"gorm.io/gorm"
)

// LoyaltyRepository 会员账变与代金券数据访问接口
type LoyaltyRepository interface {
	CreateLedgerEntry(entry *models.LoyaltyLedgerEntry) error
	ListLedgerByOrder(orderID uint) ([]models.LoyaltyLedgerEntry, error)
	CreateVoucher(voucher *models.Voucher) error
	ListVouchersByOrder(orderID uint) ([]models.Voucher, error)
	UpdateVoucher(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormLoyaltyRepository
}

// GormLoyaltyRepository GORM 实现
type GormLoyaltyRepository struct {
	db *gorm.DB
}

// NewLoyaltyRepository 创建会员账变仓库
func NewLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLoyaltyRepository) WithTx(tx *gorm.DB) *GormLoyaltyRepository {
	if tx == nil {
		return r
	}
	return &GormLoyaltyRepository{db: tx}
}

// CreateLedgerEntry 追加一条账变流水
func (r *GormLoyaltyRepository) CreateLedgerEntry(entry *models.LoyaltyLedgerEntry) error {
	return r.db.Create(entry).Error
}

// ListLedgerByOrder 获取订单关联的账变流水
func (r *GormLoyaltyRepository) ListLedgerByOrder(orderID uint) ([]models.LoyaltyLedgerEntry, error) {
	var entries []models.LoyaltyLedgerEntry
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateVoucher 创建代金券
func (r *GormLoyaltyRepository) CreateVoucher(voucher *models.Voucher) error {
	return r.db.Create(voucher).Error
}

// ListVouchersByOrder 获取订单发放的代金券
func (r *GormLoyaltyRepository) ListVouchersByOrder(orderID uint) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// UpdateVoucher 按 ID 更新代金券字段
func (r *GormLoyaltyRepository) UpdateVoucher(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Voucher{}).Where("id = ?", id).Updates(updates).Error
}
