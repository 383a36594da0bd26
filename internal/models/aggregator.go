package models

import (
	"time"
)

// Aggregator 外卖平台表
type Aggregator struct {
	ID                       uint      `gorm:"primarykey" json:"id"`                                                    // 主键
	TenantID                 uint      `gorm:"index;not null" json:"tenant_id"`                                         // 租户ID
	Name                     string    `gorm:"type:varchar(100);not null" json:"name"`                                  // 平台名称
	DefaultCommissionPercent Money     `gorm:"type:decimal(20,3);not null;default:0" json:"default_commission_percent"` // 默认佣金比例
	IsActive                 bool      `gorm:"default:true" json:"is_active"`                                           // 是否启用
	CreatedAt                time.Time `json:"created_at"`                                                              // 创建时间
	UpdatedAt                time.Time `json:"updated_at"`                                                              // 更新时间
}

// TableName 指定表名
func (Aggregator) TableName() string {
	return "aggregators"
}
