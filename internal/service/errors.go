package service

import "errors"

// 订单相关错误
var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderDeleted        = errors.New("order deleted")
	ErrInvalidOrderType    = errors.New("unknown order type")
	ErrOrderNotModifiable  = errors.New("order not modifiable in current status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrOrderLocked         = errors.New("order locked by another user")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrItemNotFound        = errors.New("order item not found")
	ErrItemNotEditable     = errors.New("order item not editable in current state")
	ErrItemNotDeletable    = errors.New("order item not deletable in current state")
	ErrInvalidItemState    = errors.New("invalid item state transition")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInactive     = errors.New("product inactive")
	ErrVariationNotFound   = errors.New("product variation not found")
	ErrOrderAlreadyDeleted = errors.New("order already deleted")
	ErrDiscountNotFound    = errors.New("order discount not found")
	ErrInvalidDiscount     = errors.New("discount amount must be positive")
)
