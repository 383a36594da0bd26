package models

import (
	"time"
)

// LoyaltyLedgerEntry 会员账变流水表；冲正时追加负向记录，不修改原记录
type LoyaltyLedgerEntry struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                    // 主键
	TenantID    uint      `gorm:"index;not null" json:"tenant_id"`                         // 租户ID
	CustomerID  uint      `gorm:"index;not null" json:"customer_id"`                       // 会员ID
	OrderID     uint      `gorm:"index;not null;default:0" json:"order_id"`                // 关联订单ID
	Type        string    `gorm:"type:varchar(30);index;not null" json:"type"`             // 账变类型
	CashDelta   Money     `gorm:"type:decimal(20,3);not null;default:0" json:"cash_delta"` // 返现变动
	PointsDelta int       `gorm:"not null;default:0" json:"points_delta"`                  // 积分变动
	VoucherID   uint      `gorm:"index;not null;default:0" json:"voucher_id"`              // 关联代金券ID
	Reason      string    `gorm:"type:varchar(200)" json:"reason"`                         // 原因
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (LoyaltyLedgerEntry) TableName() string {
	return "loyalty_ledger_entries"
}

// Voucher 代金券表
type Voucher struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                // 主键
	TenantID      uint      `gorm:"index;not null" json:"tenant_id"`                     // 租户ID
	CustomerID    uint      `gorm:"index;not null;default:0" json:"customer_id"`         // 会员ID
	OrderID       uint      `gorm:"index;not null;default:0" json:"order_id"`            // 发放订单ID
	Code          string    `gorm:"type:varchar(50);uniqueIndex" json:"code"`            // 券码
	Amount        Money     `gorm:"type:decimal(20,3);not null;default:0" json:"amount"` // 面额
	Status        string    `gorm:"type:varchar(20);index;not null" json:"status"`       // 状态
	UsesRemaining int       `gorm:"not null;default:1" json:"uses_remaining"`            // 剩余可用次数
	CreatedAt     time.Time `json:"created_at"`                                          // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                          // 更新时间
}

// TableName 指定表名
func (Voucher) TableName() string {
	return "vouchers"
}
