package service

// RewardsHook 订单关闭后的会员权益发放回调；失败只记录不阻断关单
type RewardsHook interface {
	OnOrderClosed(tenantID, orderID uint) ([]string, error)
}

// StockflowHook 订单关闭后的库存扣减回调；失败只记录不阻断关单
type StockflowHook interface {
	OnOrderClosed(tenantID, orderID, userID uint) ([]string, error)
}
