package analyticssvc

import (
	"context"

	"barfer_analytics/internal/pipeline"

	"go.mongodb.org/mongo-driver/bson"
)

// StatusBreakdownRow là số đơn và doanh thu theo trạng thái
type StatusBreakdownRow struct {
	Status     string  `json:"status" bson:"_id"`
	Orders     int64   `json:"orders" bson:"orders"`
	Revenue    float64 `json:"revenue" bson:"revenue"`
	Percentage float64 `json:"percentage" bson:"-"`
}

// StatusBreakdown đếm đơn theo status; percentage là tỉ trọng số đơn
func (s *AnalyticsService) StatusBreakdown(ctx context.Context, f Filter) ([]StatusBreakdownRow, error) {
	p := pipeline.New().
		Match(f.match("")).
		Group(pipeline.Field("status"), bson.D{
			{Key: "orders", Value: pipeline.Count()},
			{Key: "revenue", Value: pipeline.Sum(pipeline.IfNull(pipeline.Field("total"), 0))},
		}).
		Sort(pipeline.Desc("orders"), pipeline.Asc("_id")).
		Build()

	rows, err := aggregate[StatusBreakdownRow](ctx, s, "status_breakdown", p)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, r := range rows {
		total += r.Orders
	}
	for i := range rows {
		rows[i].Revenue = RoundMoney(rows[i].Revenue)
		rows[i].Percentage = Percentage(float64(rows[i].Orders), float64(total))
	}
	return rows, nil
}
