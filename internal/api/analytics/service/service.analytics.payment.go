package analyticssvc

import (
	"context"

	analyticsmodels "barfer_analytics/internal/api/analytics/models"
	"barfer_analytics/internal/pipeline"

	"go.mongodb.org/mongo-driver/bson"
)

// PaymentUnknown là nhãn cho đơn không có paymentMethod
const PaymentUnknown = "unknown"

// PaymentMetrics là số đơn, doanh thu và tỉ trọng số đơn trong một tập
type PaymentMetrics struct {
	Orders     int64   `json:"orders"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

// PaymentTotals là tổng của một tập trên mọi phương thức
type PaymentTotals struct {
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// PaymentMethodStat là số liệu của một phương thức thanh toán
type PaymentMethodStat struct {
	PaymentMethod string         `json:"paymentMethod"`
	Total         PaymentMetrics `json:"total"`
	Confirmed     PaymentMetrics `json:"confirmed"`
	Pending       PaymentMetrics `json:"pending"`
}

// PaymentMethodStats gồm ba tập song song (tất cả, confirmed, pending)
type PaymentMethodStats struct {
	Methods []PaymentMethodStat `json:"methods"`
	Totals  struct {
		Total     PaymentTotals `json:"total"`
		Confirmed PaymentTotals `json:"confirmed"`
		Pending   PaymentTotals `json:"pending"`
	} `json:"totals"`
}

// statusSum cộng value cho các đơn có status
func statusSum(status string, value any) bson.M {
	return pipeline.Sum(pipeline.Cond(pipeline.Eq(pipeline.Field("status"), status), value, 0))
}

func paymentMethodKey() bson.M {
	return pipeline.IfNull(pipeline.Field("paymentMethod"), PaymentUnknown)
}

// PaymentMethodStats group theo phương thức thanh toán. f.PaymentMethod lọc
// khớp một phần không phân biệt hoa thường. f.Status bị bỏ qua vì ba tập đã
// tách theo trạng thái. Sắp giảm dần theo tổng số đơn.
func (s *AnalyticsService) PaymentMethodStats(ctx context.Context, f Filter) (PaymentMethodStats, error) {
	f.Status = ""
	total := pipeline.IfNull(pipeline.Field("total"), 0)

	p := pipeline.New().
		Match(f.withPaymentMethod(f.match(""))).
		Group(paymentMethodKey(), bson.D{
			{Key: "totalOrders", Value: pipeline.Count()},
			{Key: "totalRevenue", Value: pipeline.Sum(total)},
			{Key: "confirmedOrders", Value: statusSum(analyticsmodels.StatusConfirmed, 1)},
			{Key: "confirmedRevenue", Value: statusSum(analyticsmodels.StatusConfirmed, total)},
			{Key: "pendingOrders", Value: statusSum(analyticsmodels.StatusPending, 1)},
			{Key: "pendingRevenue", Value: statusSum(analyticsmodels.StatusPending, total)},
		}).
		Sort(pipeline.Desc("totalOrders"), pipeline.Asc("_id")).
		Build()

	rows, err := aggregate[struct {
		Method           string  `bson:"_id"`
		TotalOrders      int64   `bson:"totalOrders"`
		TotalRevenue     float64 `bson:"totalRevenue"`
		ConfirmedOrders  int64   `bson:"confirmedOrders"`
		ConfirmedRevenue float64 `bson:"confirmedRevenue"`
		PendingOrders    int64   `bson:"pendingOrders"`
		PendingRevenue   float64 `bson:"pendingRevenue"`
	}](ctx, s, "payment_method_stats", p)
	if err != nil {
		return PaymentMethodStats{}, err
	}

	out := PaymentMethodStats{Methods: make([]PaymentMethodStat, 0, len(rows))}
	for _, r := range rows {
		out.Totals.Total.Orders += r.TotalOrders
		out.Totals.Total.Revenue += r.TotalRevenue
		out.Totals.Confirmed.Orders += r.ConfirmedOrders
		out.Totals.Confirmed.Revenue += r.ConfirmedRevenue
		out.Totals.Pending.Orders += r.PendingOrders
		out.Totals.Pending.Revenue += r.PendingRevenue
	}
	for _, r := range rows {
		out.Methods = append(out.Methods, PaymentMethodStat{
			PaymentMethod: r.Method,
			Total: PaymentMetrics{
				Orders:     r.TotalOrders,
				Revenue:    RoundMoney(r.TotalRevenue),
				Percentage: Percentage(float64(r.TotalOrders), float64(out.Totals.Total.Orders)),
			},
			Confirmed: PaymentMetrics{
				Orders:     r.ConfirmedOrders,
				Revenue:    RoundMoney(r.ConfirmedRevenue),
				Percentage: Percentage(float64(r.ConfirmedOrders), float64(out.Totals.Confirmed.Orders)),
			},
			Pending: PaymentMetrics{
				Orders:     r.PendingOrders,
				Revenue:    RoundMoney(r.PendingRevenue),
				Percentage: Percentage(float64(r.PendingOrders), float64(out.Totals.Pending.Orders)),
			},
		})
	}
	out.Totals.Total.Revenue = RoundMoney(out.Totals.Total.Revenue)
	out.Totals.Confirmed.Revenue = RoundMoney(out.Totals.Confirmed.Revenue)
	out.Totals.Pending.Revenue = RoundMoney(out.Totals.Pending.Revenue)
	return out, nil
}

// PaymentPeriodPoint là số liệu của một phương thức trong một chu kỳ
type PaymentPeriodPoint struct {
	Period           string  `json:"period"`
	PaymentMethod    string  `json:"paymentMethod"`
	Orders           int64   `json:"orders"`
	Revenue          float64 `json:"revenue"`
	ConfirmedOrders  int64   `json:"confirmedOrders"`
	ConfirmedRevenue float64 `json:"confirmedRevenue"`
}

// PaymentsByPeriod group theo (chu kỳ, phương thức). Trong cùng chu kỳ sắp
// giảm dần theo số đơn.
func (s *AnalyticsService) PaymentsByPeriod(ctx context.Context, f Filter) ([]PaymentPeriodPoint, error) {
	g := ParseGranularity(string(f.Period))
	total := pipeline.IfNull(pipeline.Field("total"), 0)

	sortKeys := append(periodSort(g, "_id."), pipeline.Desc("orders"), pipeline.Asc("_id.paymentMethod"))
	p := pipeline.New().
		Match(f.withPaymentMethod(f.match(""))).
		Group(withPeriod(s.periodGroupKey(g), bson.E{Key: "paymentMethod", Value: paymentMethodKey()}), bson.D{
			{Key: "orders", Value: pipeline.Count()},
			{Key: "revenue", Value: pipeline.Sum(total)},
			{Key: "confirmedOrders", Value: statusSum(analyticsmodels.StatusConfirmed, 1)},
			{Key: "confirmedRevenue", Value: statusSum(analyticsmodels.StatusConfirmed, total)},
		}).
		Sort(sortKeys...).
		Limit(f.Limit).
		Build()

	rows, err := aggregate[struct {
		ID struct {
			PeriodKey     `bson:",inline"`
			PaymentMethod string `bson:"paymentMethod"`
		} `bson:"_id"`
		Orders           int64   `bson:"orders"`
		Revenue          float64 `bson:"revenue"`
		ConfirmedOrders  int64   `bson:"confirmedOrders"`
		ConfirmedRevenue float64 `bson:"confirmedRevenue"`
	}](ctx, s, "payments_by_period", p)
	if err != nil {
		return nil, err
	}

	out := make([]PaymentPeriodPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, PaymentPeriodPoint{
			Period:           FormatPeriod(g, r.ID.PeriodKey),
			PaymentMethod:    r.ID.PaymentMethod,
			Orders:           r.Orders,
			Revenue:          RoundMoney(r.Revenue),
			ConfirmedOrders:  r.ConfirmedOrders,
			ConfirmedRevenue: RoundMoney(r.ConfirmedRevenue),
		})
	}
	return out, nil
}
