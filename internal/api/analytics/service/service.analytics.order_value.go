package analyticssvc

import (
	"context"

	analyticsmodels "barfer_analytics/internal/api/analytics/models"
	"barfer_analytics/internal/pipeline"

	"go.mongodb.org/mongo-driver/bson"
)

// AverageOrderValue là giá trị trung bình đơn đã xác nhận
type AverageOrderValue struct {
	AverageOrderValue float64 `json:"averageOrderValue"`
	TotalOrders       int64   `json:"totalOrders"`
	TotalRevenue      float64 `json:"totalRevenue"`
}

// AverageOrderValue chỉ tính đơn confirmed (bỏ qua f.Status).
// Không có đơn nào thì trả về toàn số 0.
func (s *AnalyticsService) AverageOrderValue(ctx context.Context, f Filter) (AverageOrderValue, error) {
	p := pipeline.New().
		Match(f.match(analyticsmodels.StatusConfirmed)).
		Group(nil, bson.D{
			{Key: "totalOrders", Value: pipeline.Count()},
			{Key: "totalRevenue", Value: pipeline.Sum(pipeline.IfNull(pipeline.Field("total"), 0))},
		}).
		Build()

	rows, err := aggregate[struct {
		TotalOrders  int64   `bson:"totalOrders"`
		TotalRevenue float64 `bson:"totalRevenue"`
	}](ctx, s, "average_order_value", p)
	if err != nil {
		return AverageOrderValue{}, err
	}
	if len(rows) == 0 {
		return AverageOrderValue{}, nil
	}

	r := rows[0]
	return AverageOrderValue{
		AverageOrderValue: RoundMoney(ratio(r.TotalRevenue, float64(r.TotalOrders))),
		TotalOrders:       r.TotalOrders,
		TotalRevenue:      RoundMoney(r.TotalRevenue),
	}, nil
}
