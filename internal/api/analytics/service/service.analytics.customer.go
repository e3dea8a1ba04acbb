package analyticssvc

import (
	"context"

	analyticsmodels "barfer_analytics/internal/api/analytics/models"
	"barfer_analytics/internal/pipeline"

	"go.mongodb.org/mongo-driver/bson"
)

// FrequencyBucket: có CustomerCount khách cùng đặt OrderCount đơn
type FrequencyBucket struct {
	OrderCount    int64 `json:"orderCount" bson:"_id"`
	CustomerCount int64 `json:"customerCount" bson:"customerCount"`
}

// CustomerFrequency là phân bố số đơn mỗi khách (chỉ đơn confirmed)
type CustomerFrequency struct {
	TotalCustomers           int64             `json:"totalCustomers"`
	RepeatCustomers          int64             `json:"repeatCustomers"`
	RepeatCustomerRate       float64           `json:"repeatCustomerRate"`
	AverageOrdersPerCustomer float64           `json:"averageOrdersPerCustomer"`
	Distribution             []FrequencyBucket `json:"distribution"`
}

// CustomerFrequency nhóm đơn confirmed theo khách (user._id hoặc user),
// rồi đếm số khách theo số đơn. Phân bố sắp theo orderCount tăng dần.
func (s *AnalyticsService) CustomerFrequency(ctx context.Context, f Filter) (CustomerFrequency, error) {
	match := f.match(analyticsmodels.StatusConfirmed)
	match["user"] = bson.M{"$ne": nil}

	p := pipeline.New().
		Match(match).
		Group(customerIdentity(), bson.D{
			{Key: "orderCount", Value: pipeline.Count()},
		}).
		Group(pipeline.Field("orderCount"), bson.D{
			{Key: "customerCount", Value: pipeline.Count()},
		}).
		Sort(pipeline.Asc("_id")).
		Build()

	rows, err := aggregate[FrequencyBucket](ctx, s, "customer_frequency", p)
	if err != nil {
		return CustomerFrequency{}, err
	}

	out := CustomerFrequency{Distribution: rows}
	var totalOrders int64
	for _, b := range rows {
		out.TotalCustomers += b.CustomerCount
		totalOrders += b.OrderCount * b.CustomerCount
		if b.OrderCount > 1 {
			out.RepeatCustomers += b.CustomerCount
		}
	}
	out.RepeatCustomerRate = Percentage(float64(out.RepeatCustomers), float64(out.TotalCustomers))
	out.AverageOrdersPerCustomer = RoundRate(ratio(float64(totalOrders), float64(out.TotalCustomers)))
	return out, nil
}

// CustomerInsights là số liệu khách hàng trên mọi trạng thái đơn
type CustomerInsights struct {
	TotalCustomers           int64   `json:"totalCustomers"`
	RepeatCustomers          int64   `json:"repeatCustomers"`
	OneTimeCustomers         int64   `json:"oneTimeCustomers"`
	RepeatCustomerRate       float64 `json:"repeatCustomerRate"`
	AverageOrdersPerCustomer float64 `json:"averageOrdersPerCustomer"`
	AverageSpentPerCustomer  float64 `json:"averageSpentPerCustomer"`
	TotalOrders              int64   `json:"totalOrders"`
	TotalRevenue             float64 `json:"totalRevenue"`
}

// CustomerInsights tính theo hai tầng: group theo khách (số đơn, tổng chi),
// sau đó group toàn bộ để lấy trung bình. Bỏ qua f.Status.
func (s *AnalyticsService) CustomerInsights(ctx context.Context, f Filter) (CustomerInsights, error) {
	f.Status = ""
	match := f.match("")
	match["user"] = bson.M{"$ne": nil}

	p := pipeline.New().
		Match(match).
		Group(customerIdentity(), bson.D{
			{Key: "orderCount", Value: pipeline.Count()},
			{Key: "totalSpent", Value: pipeline.Sum(pipeline.IfNull(pipeline.Field("total"), 0))},
		}).
		Group(nil, bson.D{
			{Key: "totalCustomers", Value: pipeline.Count()},
			{Key: "repeatCustomers", Value: pipeline.Sum(pipeline.Cond(pipeline.Gt(pipeline.Field("orderCount"), 1), 1, 0))},
			{Key: "totalOrders", Value: pipeline.Sum(pipeline.Field("orderCount"))},
			{Key: "totalRevenue", Value: pipeline.Sum(pipeline.Field("totalSpent"))},
		}).
		Build()

	rows, err := aggregate[struct {
		TotalCustomers  int64   `bson:"totalCustomers"`
		RepeatCustomers int64   `bson:"repeatCustomers"`
		TotalOrders     int64   `bson:"totalOrders"`
		TotalRevenue    float64 `bson:"totalRevenue"`
	}](ctx, s, "customer_insights", p)
	if err != nil {
		return CustomerInsights{}, err
	}
	if len(rows) == 0 {
		return CustomerInsights{}, nil
	}

	r := rows[0]
	customers := float64(r.TotalCustomers)
	return CustomerInsights{
		TotalCustomers:           r.TotalCustomers,
		RepeatCustomers:          r.RepeatCustomers,
		OneTimeCustomers:         r.TotalCustomers - r.RepeatCustomers,
		RepeatCustomerRate:       Percentage(float64(r.RepeatCustomers), customers),
		AverageOrdersPerCustomer: RoundRate(ratio(float64(r.TotalOrders), customers)),
		AverageSpentPerCustomer:  RoundMoney(ratio(r.TotalRevenue, customers)),
		TotalOrders:              r.TotalOrders,
		TotalRevenue:             RoundMoney(r.TotalRevenue),
	}, nil
}
