package models

import (
	"time"
)

// Customer 会员表
type Customer struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                          // 主键
	TenantID        uint      `gorm:"index;not null" json:"tenant_id"`                               // 租户ID
	Name            string    `gorm:"type:varchar(100)" json:"name"`                                 // 姓名
	Phone           string    `gorm:"type:varchar(30);index" json:"phone"`                           // 手机号
	PointsBalance   int       `gorm:"not null;default:0" json:"points_balance"`                      // 积分余额
	CashbackBalance Money     `gorm:"type:decimal(20,3);not null;default:0" json:"cashback_balance"` // 返现余额
	CreatedAt       time.Time `json:"created_at"`                                                    // 创建时间
	UpdatedAt       time.Time `json:"updated_at"`                                                    // 更新时间
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
