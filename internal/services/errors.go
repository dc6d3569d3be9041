package services

import (
	"errors"

	"github.com/civicsight/internal/models"
	"github.com/civicsight/internal/repositories"
)

// 校验错误码，handler 直接返回给客户端
const (
	CodeMissingImage       = "MISSING_IMAGE"
	CodeMissingAudio       = "MISSING_AUDIO"
	CodeMissingFields      = "MISSING_FIELDS"
	CodeInvalidCoordinates = "INVALID_COORDINATES"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeEmptyComment       = "EMPTY_COMMENT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNonCivicIssue      = "NON_CIVIC_ISSUE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserExists         = "USER_EXISTS"
)

// ErrReportNotFound 表示报告未找到
var ErrReportNotFound = errors.New("report not found")

// ErrUserNotFound 表示用户未找到
var ErrUserNotFound = errors.New("user not found")

// ErrForbidden 表示调用者无权执行该操作
var ErrForbidden = errors.New("not allowed to perform this action")

// ValidationError 是带有机器可读错误码的输入错误，不会产生任何写入
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// translateStoreError 将仓库层错误转换为服务层错误
func translateStoreError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return notFound
	}
	var fe *models.FieldError
	if errors.As(err, &fe) {
		return newValidationError(CodeValidation, fe.Message)
	}
	return err
}
