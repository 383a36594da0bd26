package models

import (
	"time"
)

// Setting 租户配置表
type Setting struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                    // 主键
	TenantID  uint      `gorm:"uniqueIndex:idx_tenant_key" json:"tenant_id"`             // 租户ID
	Key       string    `gorm:"type:varchar(100);uniqueIndex:idx_tenant_key" json:"key"` // 配置键
	Value     string    `gorm:"type:varchar(500)" json:"value"`                          // 配置值
	CreatedAt time.Time `json:"created_at"`                                              // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                              // 更新时间
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}
