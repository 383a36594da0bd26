package models

import (
	"time"
)

// BranchStock 门店库存表
type BranchStock struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                 // 主键
	TenantID  uint      `gorm:"index;not null" json:"tenant_id"`                      // 租户ID
	BranchID  uint      `gorm:"uniqueIndex:idx_branch_product" json:"branch_id"`      // 门店ID
	ProductID uint      `gorm:"uniqueIndex:idx_branch_product" json:"product_id"`     // 商品ID
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`                   // 当前库存
	UpdatedAt time.Time `json:"updated_at"`                                           // 更新时间
}

// TableName 指定表名
func (BranchStock) TableName() string {
	return "branch_stocks"
}

// StockMovement 库存流水表；只追加不修改
type StockMovement struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                 // 主键
	TenantID      uint      `gorm:"index;not null" json:"tenant_id"`                      // 租户ID
	BranchID      uint      `gorm:"index;not null" json:"branch_id"`                      // 门店ID
	ProductID     uint      `gorm:"index;not null" json:"product_id"`                     // 商品ID
	OrderID       uint      `gorm:"index;not null;default:0" json:"order_id"`             // 关联订单ID
	MovementType  string    `gorm:"type:varchar(30);index;not null" json:"movement_type"` // 流水类型
	QuantityDelta int       `gorm:"not null" json:"quantity_delta"`                       // 数量变动
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                              // 创建时间
}

// TableName 指定表名
func (StockMovement) TableName() string {
	return "stock_movements"
}
