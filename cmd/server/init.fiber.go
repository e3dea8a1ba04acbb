package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	analyticsrouter "barfer_analytics/internal/api/analytics/router"
	"barfer_analytics/internal/api/middleware"
	"barfer_analytics/internal/api/router"
	"barfer_analytics/internal/common"
	"barfer_analytics/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// errorHandler trả lỗi JSON thống nhất cho các lỗi không được handler tự xử lý
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	errorCode := common.ErrCodeInternalServer.Code

	var fe *fiber.Error
	var ce *common.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
		// Map HTTP status code sang error code
		switch code {
		case fiber.StatusBadRequest:
			errorCode = common.ErrCodeValidationInput.Code
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			errorCode = common.ErrCodeDatabaseQuery.Code
		case fiber.StatusTooManyRequests:
			errorCode = common.ErrCodeBusinessOperation.Code
		}
	case errors.As(err, &ce):
		code = ce.StatusCode
		message = ce.Message
		errorCode = ce.Code.Code
	}

	if code >= fiber.StatusInternalServerError {
		fields := map[string]interface{}{
			"code":      code,
			"errorCode": errorCode,
			"message":   message,
		}
		logger.WithRequest(c).WithFields(fields).WithError(err).Error("Request error")
		logger.GetErrorLogger().WithFields(fields).WithField("path", c.Path()).WithError(err).Error("Request error")
	}

	return middleware.JSONResponse(c, code, fiber.Map{
		"code":    errorCode,
		"message": message,
		"status":  "error",
	})
}

// parseCORSOrigins tách CORS_ORIGINS; "*" hoặc rỗng là cho phép tất cả
func parseCORSOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return []string{"*"}
	}
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// skipInfraPaths bỏ qua health check, metrics và preflight
func skipInfraPaths(c fiber.Ctx) bool {
	return c.Path() == "/health" ||
		c.Path() == "/api/v1/system/health" ||
		c.Path() == "/api/v1/system/metrics" ||
		c.Method() == fiber.MethodOptions
}

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết và đăng ký routes
func InitFiberApp(a *application) (*fiber.App, error) {
	cfg := a.cfg
	log := logger.GetAppLogger()

	app := fiber.New(fiber.Config{
		AppName:       "Barfer Analytics API",
		ServerHeader:  "Barfer Analytics API",
		StrictRouting: true,
		CaseSensitive: true,
		UnescapePath:  true,

		// Chỉ có GET, body nhỏ
		BodyLimit:       1 * 1024 * 1024,
		Concurrency:     256 * 1024,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // Aggregation trên collection lớn có thể chậm
		IdleTimeout:  120 * time.Second,

		ErrorHandler: errorHandler,
	})

	// =========================================
	// MIDDLEWARE STACK
	// =========================================

	// 1. Request ID - tạo ID duy nhất cho mỗi request để trace
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		},
	}))
	app.Use(middleware.RequestContextMiddleware())

	// 2. CORS - đặt sớm để xử lý preflight trước các middleware khác
	app.Use(cors.New(cors.Config{
		AllowOrigins:     parseCORSOrigins(cfg.CORS_Origins),
		AllowMethods:     []string{fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: cfg.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		MaxAge:           24 * 60 * 60,
	}))

	// 3. Security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Cache-Control", "no-store")
		return c.Next()
	})

	// 4. Rate limiting - chỉ bật khi enable và Max > 0
	if cfg.RateLimit_Enabled && cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return middleware.JSONResponse(c, common.StatusTooManyRequests, fiber.Map{
					"code":    common.ErrCodeBusinessOperation.Code,
					"message": "Quá nhiều yêu cầu, vui lòng thử lại sau",
					"status":  "error",
				})
			},
			Next: skipInfraPaths,
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	// 5. Recover
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithField("panic", e).Error("Panic recovered")
		},
	}))

	err := router.SetupRoutes(app,
		router.SystemRoutes(a.db, a.metrics, version),
		analyticsrouter.Register(a.analytics),
	)
	if err != nil {
		return nil, fmt.Errorf("setup routes: %w", err)
	}
	return app, nil
}
