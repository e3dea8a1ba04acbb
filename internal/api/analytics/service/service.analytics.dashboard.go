package analyticssvc

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// dashboardTopCategories là số nhóm sản phẩm hiển thị trên tổng quan
const dashboardTopCategories = 5

// DashboardSummary gộp các báo cáo chính cho trang tổng quan
type DashboardSummary struct {
	AverageOrderValue AverageOrderValue    `json:"averageOrderValue"`
	CustomerInsights  CustomerInsights     `json:"customerInsights"`
	PaymentMethods    PaymentMethodStats   `json:"paymentMethods"`
	StatusBreakdown   []StatusBreakdownRow `json:"statusBreakdown"`
	TopCategories     []CategorySale       `json:"topCategories"`
}

// DashboardSummary chạy song song các báo cáo. Lỗi đầu tiên hủy các truy vấn
// còn lại và được trả về nguyên vẹn.
func (s *AnalyticsService) DashboardSummary(ctx context.Context, f Filter) (DashboardSummary, error) {
	var out DashboardSummary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := s.AverageOrderValue(gctx, f)
		out.AverageOrderValue = v
		return err
	})
	g.Go(func() error {
		v, err := s.CustomerInsights(gctx, f)
		out.CustomerInsights = v
		return err
	})
	g.Go(func() error {
		v, err := s.PaymentMethodStats(gctx, f)
		out.PaymentMethods = v
		return err
	})
	g.Go(func() error {
		v, err := s.StatusBreakdown(gctx, f)
		out.StatusBreakdown = v
		return err
	})
	g.Go(func() error {
		top := f
		top.Limit = dashboardTopCategories
		v, err := s.CategorySales(gctx, top)
		out.TopCategories = v
		return err
	})

	if err := g.Wait(); err != nil {
		return DashboardSummary{}, err
	}
	return out, nil
}
