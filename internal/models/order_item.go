package models

import (
	"time"
)

// OrderItem 订单项表
type OrderItem struct {
	ID             uint       `gorm:"primarykey" json:"id"`                                         // 主键
	OrderID        uint       `gorm:"index;not null" json:"order_id"`                               // 订单ID
	ProductID      uint       `gorm:"index;not null" json:"product_id"`                             // 商品ID
	ProductName    string     `gorm:"type:varchar(200);not null" json:"product_name"`               // 商品名称快照
	UnitPrice      Money      `gorm:"type:decimal(20,3);not null;default:0" json:"unit_price"`      // 单价快照（含规格加价）
	Quantity       int        `gorm:"not null" json:"quantity"`                                     // 数量
	LineSubtotal   Money      `gorm:"type:decimal(20,3);not null;default:0" json:"line_subtotal"`   // 行小计
	DiscountAmount Money      `gorm:"type:decimal(20,3);not null;default:0" json:"discount_amount"` // 行优惠
	LineTotal      Money      `gorm:"type:decimal(20,3);not null;default:0" json:"line_total"`      // 行合计
	Notes          string     `gorm:"type:varchar(500)" json:"notes"`                               // 备注
	State          string     `gorm:"index;not null" json:"state"`                                  // 出餐状态
	FiredAt        *time.Time `json:"fired_at,omitempty"`                                           // 下厨时间
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time  `json:"updated_at"`                                                   // 更新时间

	Variations []OrderItemVariation `gorm:"foreignKey:OrderItemID" json:"variations,omitempty"` // 规格快照
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderItemVariation 订单项规格快照表；创建后不可修改，仅随订单项级联删除
type OrderItemVariation struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                     // 主键
	OrderItemID uint      `gorm:"index;not null" json:"order_item_id"`                      // 订单项ID
	GroupName   string    `gorm:"type:varchar(100);not null" json:"group_name"`             // 规格组
	ValueName   string    `gorm:"type:varchar(100);not null" json:"value_name"`             // 规格值
	PriceDelta  Money     `gorm:"type:decimal(20,3);not null;default:0" json:"price_delta"` // 加价
	CreatedAt   time.Time `json:"created_at"`                                               // 创建时间
}

// TableName 指定表名
func (OrderItemVariation) TableName() string {
	return "order_item_variations"
}

// OrderDiscount 整单折扣应用表
type OrderDiscount struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                        // 主键
	OrderID       uint      `gorm:"index;not null" json:"order_id"`                              // 订单ID
	ProgramName   string    `gorm:"type:varchar(100);not null" json:"program_name"`              // 折扣方案
	AmountApplied Money     `gorm:"type:decimal(20,3);not null;default:0" json:"amount_applied"` // 抵扣金额
	CreatedAt     time.Time `json:"created_at"`                                                  // 创建时间
}

// TableName 指定表名
func (OrderDiscount) TableName() string {
	return "order_discounts"
}
