package constants

// 订单状态常量
const (
	OrderStatusOpen      = "open"
	OrderStatusHeld      = "held"
	OrderStatusSent      = "sent"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusClosed    = "closed"
	OrderStatusCancelled = "cancelled"
	OrderStatusVoided    = "voided"
	OrderStatusRefunded  = "refunded"
)

// 支付状态常量
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
	PaymentStatusVoided  = "voided"
)

// 订单类型常量
const (
	OrderTypeDineIn     = "dine_in"
	OrderTypeTakeaway   = "takeaway"
	OrderTypeDelivery   = "delivery"
	OrderTypePickup     = "pickup"
	OrderTypeOnline     = "online"
	OrderTypeAggregator = "aggregator"
)

// 订单项状态常量（出餐流转）
const (
	ItemStateHeld   = "held"
	ItemStateFired  = "fired"
	ItemStateInPrep = "in_prep"
	ItemStateReady  = "ready"
	ItemStateServed = "served"
	ItemStateVoided = "voided"
)

// 积分/返现流水类型常量
const (
	LedgerTypeCashbackEarn   = "cashback_earn"
	LedgerTypePointsEarn     = "points_earn"
	LedgerTypeCashbackRevoke = "cashback_revoke"
	LedgerTypePointsRevoke   = "points_revoke"
)

// 代金券状态常量
const (
	VoucherStatusActive = "active"
	VoucherStatusUsed   = "used"
	VoucherStatusVoid   = "void"
)

// 库存流水类型常量
const (
	StockMovementSaleOut  = "sale_out"
	StockMovementReturnIn = "return_in"
	StockMovementAdjust   = "adjust"
)

// 审计事件类型常量
const (
	EventOrderCreate      = "order_create"
	EventOrderDelete      = "order_delete"
	EventStatusChange     = "status_change"
	EventItemAdd          = "item_add"
	EventDiscountApply    = "discount_apply"
	EventDiscountRemove   = "discount_remove"
	EventItemUpdate       = "item_update"
	EventItemVoid         = "item_void"
	EventItemsFire        = "items_fire"
	EventItemStateChange  = "item_state_change"
	EventLockAcquire      = "lock_acquire"
	EventLockRelease      = "lock_release"
	EventLockForceRelease = "lock_force_release"
	EventReversalFailed   = "reversal_step_failed"
	EventRewardsAccrue    = "rewards_accrue"
	EventStockDeduct      = "stock_deduct"
)

// 支付锁超时边界（秒）
const (
	LockTimeoutMinSeconds     = 30
	LockTimeoutMaxSeconds     = 600
	LockTimeoutDefaultSeconds = 120
)

// 租户设置键常量
const (
	SettingKeyTaxPercent         = "tax_percent"
	SettingKeyServicePercent     = "service_percent"
	SettingKeyLockTimeoutSeconds = "payment_lock_timeout_seconds"
	SettingKeyCashbackPercent    = "cashback_earn_percent"
	SettingKeyPointsEarnRate     = "points_earn_rate"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskOrderClosedNotify = "order:closed_notify"
	TaskReversalAudit     = "order:reversal_audit"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "wp"
)
