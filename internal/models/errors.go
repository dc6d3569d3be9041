package models

// FieldError 表示模型层校验失败，Message 会原样返回给调用方
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}
