package models

import (
	"time"
)

// Order 订单表
type Order struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo           string     `gorm:"uniqueIndex;not null" json:"order_no"`                          // 订单编号
	TenantID          uint       `gorm:"index;not null" json:"tenant_id"`                               // 租户ID
	BranchID          uint       `gorm:"index;not null" json:"branch_id"`                               // 门店ID
	Status            string     `gorm:"index;not null" json:"status"`                                  // 订单状态
	PaymentStatus     string     `gorm:"index;not null" json:"payment_status"`                          // 支付状态
	OrderType         string     `gorm:"index;not null" json:"order_type"`                              // 订单类型
	TableID           *uint      `gorm:"index" json:"table_id,omitempty"`                               // 桌台ID
	CustomerID        *uint      `gorm:"index" json:"customer_id,omitempty"`                            // 顾客ID
	AggregatorID      *uint      `gorm:"index" json:"aggregator_id,omitempty"`                          // 聚合平台ID
	SubtotalAmount    Money      `gorm:"type:decimal(20,3);not null;default:0" json:"subtotal_amount"`  // 商品小计
	DiscountAmount    Money      `gorm:"type:decimal(20,3);not null;default:0" json:"discount_amount"`  // 优惠金额
	TaxPercent        Money      `gorm:"type:decimal(10,3);not null;default:0" json:"tax_percent"`      // 税率
	TaxAmount         Money      `gorm:"type:decimal(20,3);not null;default:0" json:"tax_amount"`       // 税额
	ServicePercent    Money      `gorm:"type:decimal(10,3);not null;default:0" json:"service_percent"`  // 服务费率
	ServiceAmount     Money      `gorm:"type:decimal(20,3);not null;default:0" json:"service_amount"`   // 服务费
	CommissionPercent Money      `gorm:"type:decimal(10,3);not null;default:0" json:"commission_percent"` // 平台佣金率
	CommissionAmount  Money      `gorm:"type:decimal(20,3);not null;default:0" json:"commission_amount"`  // 平台佣金
	TotalAmount       Money      `gorm:"type:decimal(20,3);not null;default:0" json:"total_amount"`     // 应付总额
	IsDeleted         bool       `gorm:"index;not null;default:false" json:"is_deleted"`                // 软删除标记
	IsVoided          bool       `gorm:"not null;default:false" json:"is_voided"`                       // 作废标记
	LockedBy          *uint      `gorm:"index" json:"locked_by,omitempty"`                              // 支付锁持有人
	LockedAt          *time.Time `json:"locked_at,omitempty"`                                           // 支付锁获取时间
	PaymentLocked     bool       `gorm:"not null;default:false" json:"payment_locked"`                  // 支付锁标记
	LockSeq           uint       `gorm:"not null;default:0" json:"lock_seq"`                            // 支付锁序号
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt         time.Time  `gorm:"index" json:"updated_at"`                                       // 更新时间
	ClosedAt          *time.Time `json:"closed_at,omitempty"`                                           // 结账时间
	VoidedAt          *time.Time `json:"voided_at,omitempty"`                                           // 作废时间
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`                                          // 删除时间

	Items     []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`     // 订单项
	Discounts []OrderDiscount `gorm:"foreignKey:OrderID" json:"discounts,omitempty"` // 整单折扣
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
