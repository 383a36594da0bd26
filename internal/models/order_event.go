package models

import (
	"time"
)

// OrderEvent 订单事件表；只追加不修改，OrderID 为 0 表示租户级事件
type OrderEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`                        // 主键
	TenantID  uint      `gorm:"index;not null" json:"tenant_id"`             // 租户ID
	OrderID   uint      `gorm:"index;not null;default:0" json:"order_id"`    // 订单ID
	EventType string    `gorm:"type:varchar(50);index;not null" json:"event_type"` // 事件类型
	CreatedBy uint      `gorm:"not null;default:0" json:"created_by"`        // 操作员工ID
	Payload   JSON      `gorm:"type:text" json:"payload,omitempty"`          // 事件负载
	CreatedAt time.Time `gorm:"index" json:"created_at"`                     // 创建时间
}

// TableName 指定表名
func (OrderEvent) TableName() string {
	return "order_events"
}
