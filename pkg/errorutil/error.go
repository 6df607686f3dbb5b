package errorutil

import (
	"errors"
	"fmt"
)

// 错误码
const (
	CodeBadRequest = 400
	CodeInternal   = 500
	CodeUpstream   = 502 // 外部服务（邮件服务商等）返回失败
)

// Error 错误结构（包含可重试标记）
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
	cause      error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Unwrap 返回原始错误
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause 附加原始错误
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	if err != nil {
		e.DevDetails = fmt.Sprintf("%+v", err)
	}
	return e
}

// Retriable 创建可重试错误（网络错误、临时故障等）
func Retriable(message string) *Error {
	return &Error{
		Code:      CodeInternal,
		Message:   message,
		Retryable: true,
	}
}

// NonRetriable 创建不可重试错误（参数错误、业务规则错误等）
func NonRetriable(message string) *Error {
	return &Error{
		Code:      CodeBadRequest,
		Message:   message,
		Retryable: false,
	}
}

// Upstream 外部服务错误，5xx 视为可重试
func Upstream(statusCode int, message string) *Error {
	return &Error{
		Code:      CodeUpstream,
		Message:   message,
		Retryable: statusCode >= 500 || statusCode == 429,
	}
}

// Wrap 包装错误
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	// 默认为不可重试错误
	return &Error{
		Code:       CodeInternal,
		Message:    err.Error(),
		Retryable:  false,
		DevDetails: fmt.Sprintf("%+v", err),
		cause:      err,
	}
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
