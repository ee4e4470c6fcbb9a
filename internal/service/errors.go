package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 实体不存在
	ErrNotFound = errors.New("not found")
	// ErrInvalidPayload 上报内容缺少必填字段或格式不合法
	ErrInvalidPayload = errors.New("invalid payload")
)

// invalidf 构造 ErrInvalidPayload
func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}

// notFoundOr 把 gorm.ErrRecordNotFound 转换为 ErrNotFound
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
