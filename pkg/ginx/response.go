package ginx

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Response 统一响应结构
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

// Meta 元数据
type Meta struct {
	Code    int           `json:"code" example:"200"`
	Message string        `json:"message" example:"OK"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Path string `json:"path" example:"data.id"`
	Info string `json:"info" example:"data.id is required"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "OK", data)
}

// SuccessWithMessage 成功响应（200，自定义文案）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{
			Code:    http.StatusOK,
			Message: message,
		},
		Data: data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, message string) {
	ErrorWithDetails(c, httpCode, message, nil)
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpCode int, message string, details []ErrorDetail) {
	c.AbortWithStatusJSON(httpCode, Response{
		Meta: Meta{
			Code:    httpCode,
			Message: message,
			Details: details,
		},
	})
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// BadRequestWithValidation 400 错误，details 列出校验失败的字段
func BadRequestWithValidation(c *gin.Context, message string, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			path := fieldPath(fieldErr)
			details = append(details, ErrorDetail{
				Path: path,
				Info: validationMessage(path, fieldErr),
			})
		}
		ErrorWithDetails(c, http.StatusBadRequest, message, details)
		return
	}

	ErrorWithDetails(c, http.StatusBadRequest, message, []ErrorDetail{{Path: "body", Info: err.Error()}})
}

// InternalError 500 错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// ServiceUnavailable 503 错误
func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, http.StatusServiceUnavailable, message)
}

// RegisterJSONTagNames 校验错误使用 json 字段名
func RegisterJSONTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// fieldPath 去掉顶层结构体名：WebhookRequest.data.id -> data.id
func fieldPath(fieldErr validator.FieldError) string {
	ns := fieldErr.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// validationMessage 根据验证错误类型返回友好的错误消息
func validationMessage(path string, fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return path + " is required"
	case "eq", "oneof":
		return path + " must be " + fieldErr.Param()
	case "email":
		return path + " must be a valid email address"
	case "min":
		return path + " must be at least " + fieldErr.Param()
	case "max":
		return path + " must be at most " + fieldErr.Param()
	default:
		return path + " is invalid"
	}
}
