package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guyuan9300-max/fleethub/internal/service"
	"github.com/guyuan9300-max/fleethub/internal/utils"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
// 控制器通过 c.Error 记录错误,由这里统一写回响应
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			return
		}
		Error(c, http.StatusInternalServerError, "internal server error", err.Error())
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// StatusFor 把服务层错误映射为 HTTP 状态码
func StatusFor(err error) int {
	var validationErr *utils.ValidationError
	switch {
	case errors.Is(err, service.ErrInvalidPayload), errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError 记录错误并终止请求,响应由 ErrorHandlerMiddleware 写回
func abortWithError(c *gin.Context, err error, message string) {
	_ = c.Error(WrapError(err, StatusFor(err), message))
	c.Abort()
}

// invalidRequest 把请求体解析错误归为 ErrInvalidPayload
func invalidRequest(err error) error {
	return fmt.Errorf("%w: %v", service.ErrInvalidPayload, err)
}
