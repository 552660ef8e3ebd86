package errors

import (
	"strconv"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// Campus Trade 错误码定义
// 错误码格式：SSMMEE (6位数字)
//   SS: 服务标识，Trade 固定为 21
//   MM: 模块标识，按业务划分
//   EE: 模块内错误序号
//
// 模块划分：
//   01: 订单模块
//   02: 商品模块
//   03: 用户模块
//   04: 基础设施（锁等）
//   05-99: 预留扩展

// 订单模块错误码 (210100-210199)
const (
	// ErrCodeOrderNotFound 订单不存在
	ErrCodeOrderNotFound = 210101
	// ErrCodeOrderUnauthorized 非订单买卖双方
	ErrCodeOrderUnauthorized = 210102
	// ErrCodeOrderCancelled 订单已取消
	ErrCodeOrderCancelled = 210103
	// ErrCodeInvalidStateTransition 订单状态不允许该操作
	ErrCodeInvalidStateTransition = 210104
	// ErrCodeDuplicateOrderNo 订单号冲突（内部重试，不直接返回给调用方）
	ErrCodeDuplicateOrderNo = 210105
)

// 商品模块错误码 (210200-210299)
const (
	// ErrCodeProductNotFound 商品不存在
	ErrCodeProductNotFound = 210201
	// ErrCodeProductUnavailable 商品不可购买
	ErrCodeProductUnavailable = 210202
	// ErrCodeSelfTradeForbidden 不能购买自己发布的商品
	ErrCodeSelfTradeForbidden = 210203
)

// 用户模块错误码 (210300-210399)
const (
	// ErrCodeUserNotFound 用户不存在
	ErrCodeUserNotFound = 210301
)

// 基础设施错误码 (210400-210499)
const (
	// ErrCodeProductLockFailed 获取商品锁失败
	ErrCodeProductLockFailed = 210401
)

// 业务错误 Reason 常量（稳定的机器可读标识）
const (
	ReasonOrderNotFound          = "ORDER_NOT_FOUND"
	ReasonOrderUnauthorized      = "ORDER_UNAUTHORIZED"
	ReasonOrderCancelled         = "ORDER_CANCELLED"
	ReasonInvalidStateTransition = "INVALID_STATE_TRANSITION"
	ReasonDuplicateOrderNo       = "DUPLICATE_ORDER_NO"
	ReasonProductNotFound        = "PRODUCT_NOT_FOUND"
	ReasonProductUnavailable     = "PRODUCT_UNAVAILABLE"
	ReasonSelfTradeForbidden     = "SELF_TRADE_FORBIDDEN"
	ReasonUserNotFound           = "USER_NOT_FOUND"
	ReasonProductLockFailed      = "PRODUCT_LOCK_FAILED"
)

// newBizError 构造业务错误：HTTP 状态码 + Reason + 业务错误码（放 Metadata）。
// 基础设施错误（数据库连接等）不走这里，保持原样向上传递，由调用方按 500 处理。
func newBizError(httpCode int, reason, message string, bizCode int) *kerrors.Error {
	e := kerrors.New(httpCode, reason, message)
	e.Metadata = map[string]string{"biz_code": strconv.Itoa(bizCode)}
	return e
}

// NewOrderNotFound 订单不存在
func NewOrderNotFound() *kerrors.Error {
	return newBizError(404, ReasonOrderNotFound, "order not found", ErrCodeOrderNotFound)
}

// NewOrderUnauthorized 调用方不是订单的买家或卖家
func NewOrderUnauthorized() *kerrors.Error {
	return newBizError(403, ReasonOrderUnauthorized, "not a party to this order", ErrCodeOrderUnauthorized)
}

// NewOrderCancelled 订单已取消，无法继续操作
func NewOrderCancelled() *kerrors.Error {
	return newBizError(409, ReasonOrderCancelled, "order already cancelled", ErrCodeOrderCancelled)
}

// NewInvalidStateTransition 当前订单状态不允许该操作
func NewInvalidStateTransition() *kerrors.Error {
	return newBizError(409, ReasonInvalidStateTransition, "operation not allowed in current order status", ErrCodeInvalidStateTransition)
}

// NewDuplicateOrderNo 订单号唯一索引冲突
func NewDuplicateOrderNo() *kerrors.Error {
	return newBizError(409, ReasonDuplicateOrderNo, "order no already exists", ErrCodeDuplicateOrderNo)
}

// NewProductNotFound 商品不存在
func NewProductNotFound() *kerrors.Error {
	return newBizError(404, ReasonProductNotFound, "product not found", ErrCodeProductNotFound)
}

// NewProductUnavailable 商品当前不可购买
func NewProductUnavailable() *kerrors.Error {
	return newBizError(409, ReasonProductUnavailable, "product not available", ErrCodeProductUnavailable)
}

// NewSelfTradeForbidden 不能购买自己发布的商品
func NewSelfTradeForbidden() *kerrors.Error {
	return newBizError(403, ReasonSelfTradeForbidden, "cannot buy your own product", ErrCodeSelfTradeForbidden)
}

// NewUserNotFound 用户不存在
func NewUserNotFound() *kerrors.Error {
	return newBizError(404, ReasonUserNotFound, "user not found", ErrCodeUserNotFound)
}

// NewProductLockFailed 获取商品锁失败
func NewProductLockFailed() *kerrors.Error {
	return newBizError(503, ReasonProductLockFailed, "failed to acquire product lock", ErrCodeProductLockFailed)
}

// IsOrderNotFound 判断是否订单不存在错误
func IsOrderNotFound(err error) bool { return kerrors.Reason(err) == ReasonOrderNotFound }

// IsOrderUnauthorized 判断是否越权操作订单错误
func IsOrderUnauthorized(err error) bool { return kerrors.Reason(err) == ReasonOrderUnauthorized }

// IsOrderCancelled 判断是否订单已取消错误
func IsOrderCancelled(err error) bool { return kerrors.Reason(err) == ReasonOrderCancelled }

// IsInvalidStateTransition 判断是否状态流转非法错误
func IsInvalidStateTransition(err error) bool {
	return kerrors.Reason(err) == ReasonInvalidStateTransition
}

// IsDuplicateOrderNo 判断是否订单号冲突错误
func IsDuplicateOrderNo(err error) bool { return kerrors.Reason(err) == ReasonDuplicateOrderNo }

// IsProductNotFound 判断是否商品不存在错误
func IsProductNotFound(err error) bool { return kerrors.Reason(err) == ReasonProductNotFound }

// IsProductUnavailable 判断是否商品不可购买错误
func IsProductUnavailable(err error) bool { return kerrors.Reason(err) == ReasonProductUnavailable }

// IsSelfTradeForbidden 判断是否自买自卖错误
func IsSelfTradeForbidden(err error) bool { return kerrors.Reason(err) == ReasonSelfTradeForbidden }

// IsUserNotFound 判断是否用户不存在错误
func IsUserNotFound(err error) bool { return kerrors.Reason(err) == ReasonUserNotFound }
