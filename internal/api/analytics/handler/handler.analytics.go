// Package analyticshdl - Handler cho các báo cáo đơn hàng (GET /analytics/*).
// Mọi endpoint nhận chung bộ query params AnalyticsQueryParams.
package analyticshdl

import (
	"context"
	"time"

	analyticsdto "barfer_analytics/internal/api/analytics/dto"
	analyticssvc "barfer_analytics/internal/api/analytics/service"
	basehdl "barfer_analytics/internal/api/base/handler"

	"github.com/gofiber/fiber/v3"
)

// Reports là các báo cáo mà handler cần từ service layer
type Reports interface {
	Location() *time.Location
	AverageOrderValue(ctx context.Context, f analyticssvc.Filter) (analyticssvc.AverageOrderValue, error)
	CustomerFrequency(ctx context.Context, f analyticssvc.Filter) (analyticssvc.CustomerFrequency, error)
	CustomerInsights(ctx context.Context, f analyticssvc.Filter) (analyticssvc.CustomerInsights, error)
	CategorySales(ctx context.Context, f analyticssvc.Filter) ([]analyticssvc.CategorySale, error)
	ProductSales(ctx context.Context, f analyticssvc.Filter) ([]analyticssvc.ProductSale, error)
	RevenueByDay(ctx context.Context, f analyticssvc.Filter) ([]analyticssvc.RevenuePoint, error)
	RevenueByMonth(ctx context.Context, f analyticssvc.Filter) ([]analyticssvc.RevenuePoint, error)
	PaymentMethodStats(ctx context.Context, f analyticssvc.Filter) (analyticssvc.PaymentMethodStats, error)
	PaymentsByPeriod(ctx context.Context, f analyticssvc.Filter) ([]analyticssvc.PaymentPeriodPoint, error)
	PurchaseFrequency(ctx context.Context, f analyticssvc.Filter) (analyticssvc.PurchaseFrequency, error)
	DeliveryTypeStats(ctx context.Context, f analyticssvc.Filter) ([]analyticssvc.DeliveryTypePoint, error)
	ProductTimeline(ctx context.Context, f analyticssvc.Filter) ([]analyticssvc.ProductTimelinePoint, error)
	StatusBreakdown(ctx context.Context, f analyticssvc.Filter) ([]analyticssvc.StatusBreakdownRow, error)
	DashboardSummary(ctx context.Context, f analyticssvc.Filter) (analyticssvc.DashboardSummary, error)
}

// AnalyticsHandler xử lý các route báo cáo
type AnalyticsHandler struct {
	Reports Reports
}

// NewAnalyticsHandler tạo một instance mới của AnalyticsHandler
func NewAnalyticsHandler(reports Reports) *AnalyticsHandler {
	return &AnalyticsHandler{Reports: reports}
}

// parseFilter đọc, validate query params và chuyển thành Filter theo múi giờ của service
func (h *AnalyticsHandler) parseFilter(c fiber.Ctx) (analyticssvc.Filter, error) {
	var q analyticsdto.AnalyticsQueryParams
	if err := basehdl.ParseRequestQuery(c, &q); err != nil {
		return analyticssvc.Filter{}, err
	}
	return q.ToFilter(h.Reports.Location())
}

// serveReport là khung chung: parse filter, gọi báo cáo, trả response chuẩn
func serveReport[T any](h *AnalyticsHandler, c fiber.Ctx, run func(context.Context, analyticssvc.Filter) (T, error)) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		f, err := h.parseFilter(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		data, err := run(c.Context(), f)
		basehdl.HandleResponse(c, data, err)
		return nil
	})
}

// HandleAverageOrderValue xử lý GET /analytics/average-order-value (chỉ đơn confirmed)
func (h *AnalyticsHandler) HandleAverageOrderValue(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.AverageOrderValue)
}

// HandleCustomerFrequency xử lý GET /analytics/customer-frequency
func (h *AnalyticsHandler) HandleCustomerFrequency(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.CustomerFrequency)
}

// HandleCustomerInsights xử lý GET /analytics/customer-insights
func (h *AnalyticsHandler) HandleCustomerInsights(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.CustomerInsights)
}

// HandleCategorySales xử lý GET /analytics/category-sales
func (h *AnalyticsHandler) HandleCategorySales(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.CategorySales)
}

// HandleProductSales xử lý GET /analytics/product-sales. Query product lọc theo tên.
func (h *AnalyticsHandler) HandleProductSales(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.ProductSales)
}

// HandleRevenueByDay xử lý GET /analytics/revenue/daily
func (h *AnalyticsHandler) HandleRevenueByDay(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.RevenueByDay)
}

// HandleRevenueByMonth xử lý GET /analytics/revenue/monthly
func (h *AnalyticsHandler) HandleRevenueByMonth(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.RevenueByMonth)
}

// HandlePaymentMethods xử lý GET /analytics/payment-methods
func (h *AnalyticsHandler) HandlePaymentMethods(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.PaymentMethodStats)
}

// HandlePaymentsByPeriod xử lý GET /analytics/payments-by-period. Query period: daily|weekly|monthly.
func (h *AnalyticsHandler) HandlePaymentsByPeriod(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.PaymentsByPeriod)
}

// HandlePurchaseFrequency xử lý GET /analytics/purchase-frequency
func (h *AnalyticsHandler) HandlePurchaseFrequency(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.PurchaseFrequency)
}

// HandleDeliveryTypes xử lý GET /analytics/delivery-types
func (h *AnalyticsHandler) HandleDeliveryTypes(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.DeliveryTypeStats)
}

// HandleProductTimeline xử lý GET /analytics/product-timeline
func (h *AnalyticsHandler) HandleProductTimeline(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.ProductTimeline)
}

// HandleStatusBreakdown xử lý GET /analytics/status-breakdown
func (h *AnalyticsHandler) HandleStatusBreakdown(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.StatusBreakdown)
}

// HandleSummary xử lý GET /analytics/summary: gộp các KPI chính trong một lần gọi.
func (h *AnalyticsHandler) HandleSummary(c fiber.Ctx) error {
	return serveReport(h, c, h.Reports.DashboardSummary)
}
