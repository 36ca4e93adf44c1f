package errno

import "fmt"

// BizError 业务错误，携带错误码与底层原因
type BizError struct {
	Errno *Errno
	Cause error
}

// NewBizError 用底层错误包装业务错误码
func NewBizError(errno *Errno, cause error) *BizError {
	return &BizError{Errno: errno, Cause: cause}
}

func (e *BizError) Error() string {
	if e.Cause == nil {
		return e.Errno.Message
	}
	return fmt.Sprintf("%s: %v", e.Errno.Message, e.Cause)
}

func (e *BizError) Unwrap() error {
	return e.Cause
}

// Code 返回业务错误码
func (e *BizError) Code() int {
	if e.Errno == nil {
		return ErrUnknown.Code
	}
	return e.Errno.Code
}

// DecodeErr 解析错误为(code, message)，供HTTP层统一返回
func DecodeErr(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}
	switch typed := err.(type) {
	case *BizError:
		return typed.Code(), typed.Error()
	case *Errno:
		return typed.Code, typed.Message
	default:
		return ErrInternalServer.Code, err.Error()
	}
}
