package models

import (
	"time"
)

// Product 商品表
type Product struct {
	ID             uint      `gorm:"primarykey" json:"id"`                               // 主键
	TenantID       uint      `gorm:"index;not null" json:"tenant_id"`                    // 租户ID
	Name           string    `gorm:"type:varchar(200);not null" json:"name"`             // 商品名称
	Price          Money     `gorm:"type:decimal(20,3);not null;default:0" json:"price"` // 售价
	IsActive       bool      `gorm:"default:true" json:"is_active"`                      // 是否上架
	IsStockTracked bool      `gorm:"default:false" json:"is_stock_tracked"`              // 是否跟踪库存
	CreatedAt      time.Time `json:"created_at"`                                         // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                         // 更新时间

	Variations []ProductVariation `gorm:"foreignKey:ProductID" json:"variations,omitempty"` // 可选规格
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// ProductVariation 商品规格表
type ProductVariation struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                     // 主键
	ProductID  uint      `gorm:"index;not null" json:"product_id"`                         // 商品ID
	GroupName  string    `gorm:"type:varchar(100);not null" json:"group_name"`             // 规格组
	ValueName  string    `gorm:"type:varchar(100);not null" json:"value_name"`             // 规格值
	PriceDelta Money     `gorm:"type:decimal(20,3);not null;default:0" json:"price_delta"` // 加价
	CreatedAt  time.Time `json:"created_at"`                                               // 创建时间
}

// TableName 指定表名
func (ProductVariation) TableName() string {
	return "product_variations"
}
