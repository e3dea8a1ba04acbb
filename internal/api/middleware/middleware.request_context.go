package middleware

import (
	"barfer_analytics/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// RequestContextMiddleware gắn request ID (do requestid middleware sinh) vào context của request
// để log ở service layer có request_id. Phải đăng ký sau requestid.
func RequestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		requestID := c.GetRespHeader("X-Request-ID")
		if requestID == "" {
			requestID = c.Get("X-Request-ID")
		}
		c.SetContext(logger.ContextWithRequestID(c.Context(), requestID))
		return c.Next()
	}
}
