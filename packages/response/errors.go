package response

import "fmt"

// 业务错误码
const (
	// 失败
	Fail ResponseCode = 0
	// 参数解析错误
	ParseError ResponseCode = 1
	// 参数错误
	InvalidParameter ResponseCode = 2
	// 未登录或令牌无效
	Unauthorized ResponseCode = 3
	// 没有权限
	Forbidden ResponseCode = 4
	// 资源不存在
	NotFound ResponseCode = 5
	// 内容未通过审核
	ModerationRejected ResponseCode = 6
	// 权限暂时无法确认（角色存储不可用），可以稍后重试
	AccessUnverified ResponseCode = 7
	// 状态不允许此操作
	InvalidState ResponseCode = 8
)

type BusinessError struct {
	Code ResponseCode
	Msg  string
	Err  error
	Data any
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

type ErrorOption func(*BusinessError)

func WithErrorCode(code ResponseCode) ErrorOption {
	return func(be *BusinessError) {
		be.Code = code
	}
}

func WithErrorMessage(msg string) ErrorOption {
	return func(be *BusinessError) {
		be.Msg = msg
	}
}

func WithError(err error) ErrorOption {
	return func(be *BusinessError) {
		be.Err = err
	}
}

// WithErrorData 错误响应中附带的数据，如审核结果
func WithErrorData(data any) ErrorOption {
	return func(be *BusinessError) {
		be.Data = data
	}
}

func NewBusinessError(opts ...ErrorOption) *BusinessError {
	err := &BusinessError{
		Code: Fail,
		Msg:  "business error",
	}
	for _, opt := range opts {
		opt(err)
	}
	return err
}
