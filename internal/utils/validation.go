package utils

import (
	"regexp"
)

const maxIDLength = 128

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// ValidateID 验证机器人、任务 ID 格式
func ValidateID(id string) error {
	// 1. 检查是否为空
	if id == "" {
		return ErrEmptyID
	}

	// 2. 检查长度
	if len(id) > maxIDLength {
		return ErrIDTooLong
	}

	// 3. 检查格式（只允许字母、数字、点、冒号、连字符、下划线）
	if !idPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}

	return nil
}

// ValidateOptionalID 验证可选 ID,nil 视为合法
func ValidateOptionalID(id *string) error {
	if id == nil {
		return nil
	}
	return ValidateID(*id)
}

// 验证错误定义
var (
	ErrEmptyID         = &ValidationError{Code: "EMPTY_ID", Message: "id cannot be empty"}
	ErrInvalidIDFormat = &ValidationError{Code: "INVALID_ID_FORMAT", Message: "id contains invalid characters"}
	ErrIDTooLong       = &ValidationError{Code: "ID_TOO_LONG", Message: "id exceeds maximum length"}
)

// ValidationError 验证错误
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
