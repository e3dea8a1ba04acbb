// Package router chứa khung đăng ký route dùng chung. Route theo domain nằm ở <domain>/router.
package router

import (
	"strings"

	basehdl "barfer_analytics/internal/api/base/handler"

	"github.com/gofiber/fiber/v3"
)

// Router quản lý việc định tuyến cho ứng dụng
type Router struct {
	app *fiber.App
}

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
	V1   string // Prefix cho API version 1 (/api/v1)
}

// NewRoutePrefix tạo mới một instance của RoutePrefix với các giá trị mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// NewRouter tạo mới một instance của Router
func NewRouter(app *fiber.App) *Router {
	return &Router{
		app: app,
	}
}

// App trả về fiber app gốc (dùng cho route ngoài /api/v1 như /health)
func (r *Router) App() *fiber.App {
	return r.app
}

// RegisterRouteWithMiddleware đăng ký route với middleware qua .Use() của group.
// Trong Fiber v3 truyền middleware trực tiếp router.Get(path, mw, handler) thì mw không được gọi.
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	// Middleware chỉ áp dụng cho routes trong group này
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}

	switch strings.ToUpper(method) {
	case fiber.MethodGet:
		routeGroup.Get(path, handler)
	case fiber.MethodPost:
		routeGroup.Post(path, handler)
	case fiber.MethodPut:
		routeGroup.Put(path, handler)
	case fiber.MethodDelete:
		routeGroup.Delete(path, handler)
	}
}

// RegisterFunc là hàm đăng ký route của một domain (do domain/router export).
type RegisterFunc func(v1 fiber.Router, r *Router) error

// SystemRoutes đăng ký health check ở /health, /api/v1/system/health và snapshot metrics ở /api/v1/system/metrics.
func SystemRoutes(db basehdl.Pinger, metrics basehdl.MetricsCollector, version string) RegisterFunc {
	return func(v1 fiber.Router, r *Router) error {
		h := basehdl.NewSystemHandler(db, metrics, version)
		r.app.Get("/health", h.HandleHealth)
		RegisterRouteWithMiddleware(v1, "/system", fiber.MethodGet, "/health", nil, h.HandleHealth)
		RegisterRouteWithMiddleware(v1, "/system", fiber.MethodGet, "/metrics", nil, h.HandleMetrics)
		return nil
	}
}

// SetupRoutes thiết lập tất cả các route cho ứng dụng. Caller truyền lần lượt Register của từng domain để tránh import cycle.
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	r := NewRouter(app)
	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}
