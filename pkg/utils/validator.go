package utils

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrMissingCoordinate  = errors.New("coordinate is required")
	ErrInvalidCoordinate  = errors.New("coordinate must be a finite decimal number")
	ErrInvalidEmailFormat = errors.New("invalid email format")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ParseCoordinate 解析表单中的经纬度字符串，拒绝空值、NaN 和无穷大。
// 范围校验由模型层完成。
func ParseCoordinate(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, ErrMissingCoordinate
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidCoordinate
	}
	return v, nil
}

// ValidateEmailFormat 校验邮箱格式。
func ValidateEmailFormat(email string) bool {
	trimmedEmail := strings.TrimSpace(email)
	if trimmedEmail == "" {
		return true // 空字符串不进行格式校验，业务逻辑决定是否允许为空
	}
	return emailPattern.MatchString(trimmedEmail)
}

// NormalizeEmail 去除首尾空白并转为小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
