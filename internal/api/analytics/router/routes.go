// Package router đăng ký các route thuộc domain Analytics: báo cáo đơn hàng chỉ đọc.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	analyticshdl "barfer_analytics/internal/api/analytics/handler"
	apirouter "barfer_analytics/internal/api/router"
)

// Prefix của nhóm route báo cáo trong /api/v1
const Prefix = "/analytics"

// Register trả về hàm đăng ký tất cả route analytics lên v1.
func Register(reports analyticshdl.Reports) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		if reports == nil {
			return fmt.Errorf("create analytics handler: reports is nil")
		}
		h := analyticshdl.NewAnalyticsHandler(reports)

		routes := []struct {
			path    string
			handler fiber.Handler
		}{
			{"/average-order-value", h.HandleAverageOrderValue},
			{"/customer-frequency", h.HandleCustomerFrequency},
			{"/customer-insights", h.HandleCustomerInsights},
			{"/category-sales", h.HandleCategorySales},
			{"/product-sales", h.HandleProductSales},
			{"/revenue/daily", h.HandleRevenueByDay},
			{"/revenue/monthly", h.HandleRevenueByMonth},
			{"/payment-methods", h.HandlePaymentMethods},
			{"/payments-by-period", h.HandlePaymentsByPeriod},
			{"/purchase-frequency", h.HandlePurchaseFrequency},
			{"/delivery-types", h.HandleDeliveryTypes},
			{"/product-timeline", h.HandleProductTimeline},
			{"/status-breakdown", h.HandleStatusBreakdown},
			{"/summary", h.HandleSummary},
		}
		for _, rt := range routes {
			apirouter.RegisterRouteWithMiddleware(v1, Prefix, fiber.MethodGet, rt.path, nil, rt.handler)
		}
		return nil
	}
}
