package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stream-compiler-service/pkg/errno"
)

// Response 统一的HTTP响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 返回成功响应
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Failed 返回失败响应，按错误类型解析业务码
func Failed(ctx *gin.Context, err error) {
	code, message := errno.DecodeErr(err)
	httpStatus := http.StatusOK
	switch {
	case code == errno.ErrUnauthorized.Code:
		httpStatus = http.StatusUnauthorized
	case code == errno.ErrNotFound.Code:
		httpStatus = http.StatusNotFound
	case code >= 400 && code < 500:
		httpStatus = http.StatusBadRequest
	case code >= 500 && code < 600:
		httpStatus = http.StatusInternalServerError
	case code >= 20000:
		httpStatus = http.StatusBadRequest
	}
	ctx.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}
