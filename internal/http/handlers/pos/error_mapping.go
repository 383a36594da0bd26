package pos

import (
	"errors"

	"github.com/weipos/internal/http/response"
	"github.com/weipos/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var orderCommonErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderDeleted, code: response.CodeNotFound, msg: "order deleted"},
	{target: service.ErrOrderNotModifiable, code: response.CodeBadRequest, msg: "order not modifiable in current status"},
	{target: service.ErrOrderLocked, code: response.CodeLocked, msg: "order locked by another user"},
	{target: service.ErrInvalidOrderType, code: response.CodeBadRequest, msg: "unknown order type"},
	{target: service.ErrPermissionDenied, code: response.CodeForbidden, msg: "manager role required"},
}

var itemErrorRules = []mappedHandlerError{
	{target: service.ErrItemNotFound, code: response.CodeNotFound, msg: "order item not found"},
	{target: service.ErrItemNotEditable, code: response.CodeBadRequest, msg: "item already fired, not editable"},
	{target: service.ErrItemNotDeletable, code: response.CodeBadRequest, msg: "item already fired, not deletable"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "quantity must be positive"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, msg: "product inactive"},
	{target: service.ErrVariationNotFound, code: response.CodeBadRequest, msg: "product variation not found"},
}

var statusErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidTransition, code: response.CodeBadRequest, msg: "invalid status transition"},
	{target: service.ErrInvalidItemState, code: response.CodeBadRequest, msg: "invalid item state transition"},
}

var discountErrorRules = []mappedHandlerError{
	{target: service.ErrDiscountNotFound, code: response.CodeNotFound, msg: "order discount not found"},
	{target: service.ErrInvalidDiscount, code: response.CodeBadRequest, msg: "discount amount must be positive"},
}

var deleteOrderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderAlreadyDeleted, code: response.CodeConflict, msg: "order already deleted"},
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCommonErrorRules, deleteOrderErrorRules), response.CodeInternal, "order operation failed")
}

func respondItemError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCommonErrorRules, itemErrorRules), response.CodeInternal, "item operation failed")
}

func respondStatusError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCommonErrorRules, statusErrorRules), response.CodeInternal, "status transition failed")
}

func respondDiscountError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCommonErrorRules, discountErrorRules), response.CodeInternal, "discount operation failed")
}
