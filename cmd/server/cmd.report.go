package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	analyticsdto "barfer_analytics/internal/api/analytics/dto"
	analyticshdl "barfer_analytics/internal/api/analytics/handler"
	analyticssvc "barfer_analytics/internal/api/analytics/service"
	"barfer_analytics/internal/common"
	"barfer_analytics/internal/global"

	"github.com/spf13/cobra"
)

// reportFunc chạy một báo cáo với filter đã parse
type reportFunc func(ctx context.Context, f analyticssvc.Filter) (any, error)

// reportRunners ánh xạ tên metric (trùng path HTTP) sang báo cáo tương ứng
func reportRunners(r analyticshdl.Reports) map[string]reportFunc {
	return map[string]reportFunc{
		"average-order-value": func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.AverageOrderValue(ctx, f) },
		"customer-frequency":  func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.CustomerFrequency(ctx, f) },
		"customer-insights":   func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.CustomerInsights(ctx, f) },
		"category-sales":      func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.CategorySales(ctx, f) },
		"product-sales":       func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.ProductSales(ctx, f) },
		"revenue-daily":       func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.RevenueByDay(ctx, f) },
		"revenue-monthly":     func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.RevenueByMonth(ctx, f) },
		"payment-methods":     func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.PaymentMethodStats(ctx, f) },
		"payments-by-period":  func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.PaymentsByPeriod(ctx, f) },
		"purchase-frequency":  func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.PurchaseFrequency(ctx, f) },
		"delivery-types":      func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.DeliveryTypeStats(ctx, f) },
		"product-timeline":    func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.ProductTimeline(ctx, f) },
		"status-breakdown":    func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.StatusBreakdown(ctx, f) },
		"summary":             func(ctx context.Context, f analyticssvc.Filter) (any, error) { return r.DashboardSummary(ctx, f) },
	}
}

// reportMetrics là tên các metric của reportRunners
var reportMetrics = []string{
	"average-order-value", "customer-frequency", "customer-insights",
	"category-sales", "product-sales", "revenue-daily", "revenue-monthly",
	"payment-methods", "payments-by-period", "purchase-frequency",
	"delivery-types", "product-timeline", "status-breakdown", "summary",
}

// metricNames trả về danh sách metric đã sắp xếp
func metricNames() []string {
	names := append([]string(nil), reportMetrics...)
	sort.Strings(names)
	return names
}

// runReport validate tham số, chạy báo cáo metric và trả về dữ liệu
func runReport(ctx context.Context, r analyticshdl.Reports, metric string, q analyticsdto.AnalyticsQueryParams) (any, error) {
	run, ok := reportRunners(r)[metric]
	if !ok {
		return nil, common.WithDetails(common.ErrInvalidInput, fmt.Sprintf("metric %q không hợp lệ, chọn một trong: %s", metric, strings.Join(metricNames(), ", ")))
	}

	global.InitValidator()
	if err := global.Validate.Struct(q); err != nil {
		return nil, common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err.Error())
	}
	f, err := q.ToFilter(r.Location())
	if err != nil {
		return nil, err
	}
	return run(ctx, f)
}

func newReportCmd() *cobra.Command {
	var q analyticsdto.AnalyticsQueryParams
	cmd := &cobra.Command{
		Use:       "report <metric>",
		Short:     "Run one analytics report and print it as JSON",
		Long:      "Run one analytics report and print it as JSON.\n\nMetrics: " + strings.Join(metricNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: metricNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout dành cho JSON
			if os.Getenv("LOG_OUTPUT") == "" {
				_ = os.Setenv("LOG_OUTPUT", "stderr")
			}
			a, err := newApplication(envFile)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.Background()) }()

			data, err := runReport(cmd.Context(), a.analytics, args[0], q)
			if err != nil {
				return err
			}
			return writeJSON(cmd, data)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&q.From, "from", "", "start date yyyy-mm-dd (inclusive)")
	flags.StringVar(&q.To, "to", "", "end date yyyy-mm-dd (inclusive, whole day)")
	flags.StringVar(&q.Status, "status", "", "order status filter")
	flags.IntVar(&q.Limit, "limit", 0, "max rows (0 = unlimited, max 1000)")
	flags.StringVar(&q.Period, "period", "", "daily|weekly|monthly")
	flags.StringVar(&q.PaymentMethod, "payment-method", "", "payment method (partial, case-insensitive)")
	flags.StringVar(&q.Product, "product", "", "product name (partial, case-insensitive)")
	return cmd
}
