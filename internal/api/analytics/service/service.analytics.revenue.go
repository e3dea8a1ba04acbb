package analyticssvc

import (
	"context"

	"barfer_analytics/internal/pipeline"

	"go.mongodb.org/mongo-driver/bson"
)

// RevenuePoint là doanh thu của một ngày hoặc một tháng
type RevenuePoint struct {
	Date              string  `json:"date"`
	Orders            int64   `json:"orders"`
	Revenue           float64 `json:"revenue"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// RevenueByDay trả về doanh thu theo ngày (YYYY-MM-DD), tăng dần theo thời gian
func (s *AnalyticsService) RevenueByDay(ctx context.Context, f Filter) ([]RevenuePoint, error) {
	return s.revenueSeries(ctx, f, GranularityDaily, "revenue_by_day")
}

// RevenueByMonth trả về doanh thu theo tháng (YYYY-MM), tăng dần theo thời gian
func (s *AnalyticsService) RevenueByMonth(ctx context.Context, f Filter) ([]RevenuePoint, error) {
	return s.revenueSeries(ctx, f, GranularityMonthly, "revenue_by_month")
}

func (s *AnalyticsService) revenueSeries(ctx context.Context, f Filter, g Granularity, operation string) ([]RevenuePoint, error) {
	p := pipeline.New().
		Match(f.match("")).
		Group(s.periodGroupKey(g), bson.D{
			{Key: "orders", Value: pipeline.Count()},
			{Key: "revenue", Value: pipeline.Sum(pipeline.IfNull(pipeline.Field("total"), 0))},
		}).
		Sort(periodSort(g, "_id.")...).
		Limit(f.Limit).
		Build()

	rows, err := aggregate[struct {
		ID      PeriodKey `bson:"_id"`
		Orders  int64     `bson:"orders"`
		Revenue float64   `bson:"revenue"`
	}](ctx, s, operation, p)
	if err != nil {
		return nil, err
	}

	out := make([]RevenuePoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, RevenuePoint{
			Date:              FormatPeriod(g, r.ID),
			Orders:            r.Orders,
			Revenue:           RoundMoney(r.Revenue),
			AverageOrderValue: RoundMoney(ratio(r.Revenue, float64(r.Orders))),
		})
	}
	return out, nil
}
