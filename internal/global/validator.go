package global

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validate là validator dùng chung cho toàn bộ ứng dụng
var Validate *validator.Validate

var validatorOnce sync.Once

// InitValidator khởi tạo và đăng ký các custom validator. Gọi nhiều lần chỉ khởi tạo một lần.
func InitValidator() {
	validatorOnce.Do(func() {
		Validate = validator.New()

		// Đăng ký các custom validator
		_ = Validate.RegisterValidation("no_xss", validateNoXSS)
		_ = Validate.RegisterValidation("period", validatePeriod)
	})
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"eval(",
		"document.cookie",
		"<iframe",
		"<object",
		"<embed",
	}

	value = strings.ToLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validatePeriod chỉ chấp nhận daily, weekly, monthly (không phân biệt hoa thường)
func validatePeriod(fl validator.FieldLevel) bool {
	switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
	case "daily", "weekly", "monthly":
		return true
	}
	return false
}
