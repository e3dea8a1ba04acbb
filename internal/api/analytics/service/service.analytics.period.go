package analyticssvc

import (
	"context"

	"barfer_analytics/internal/pipeline"

	"go.mongodb.org/mongo-driver/bson"
)

// DeliveryTypePoint là số đơn giao trong ngày / giao thường của một chu kỳ
type DeliveryTypePoint struct {
	Period            string  `json:"period"`
	SameDayOrders     int64   `json:"sameDayOrders"`
	NormalOrders      int64   `json:"normalOrders"`
	SameDayRevenue    float64 `json:"sameDayRevenue"`
	NormalRevenue     float64 `json:"normalRevenue"`
	SameDayPercentage float64 `json:"sameDayPercentage"`
}

// DeliveryTypeStats chia đơn theo cờ giao trong ngày (deliveryArea hoặc bất kỳ item nào)
func (s *AnalyticsService) DeliveryTypeStats(ctx context.Context, f Filter) ([]DeliveryTypePoint, error) {
	g := ParseGranularity(string(f.Period))
	sameDay := pipeline.Field("isSameDay")
	total := pipeline.IfNull(pipeline.Field("total"), 0)

	p := pipeline.New().
		Match(f.match("")).
		AddFields(bson.D{{Key: "isSameDay", Value: sameDayExpr()}}).
		Group(s.periodGroupKey(g), bson.D{
			{Key: "sameDayOrders", Value: pipeline.Sum(pipeline.Cond(sameDay, 1, 0))},
			{Key: "normalOrders", Value: pipeline.Sum(pipeline.Cond(sameDay, 0, 1))},
			{Key: "sameDayRevenue", Value: pipeline.Sum(pipeline.Cond(sameDay, total, 0))},
			{Key: "normalRevenue", Value: pipeline.Sum(pipeline.Cond(sameDay, 0, total))},
		}).
		Sort(periodSort(g, "_id.")...).
		Limit(f.Limit).
		Build()

	rows, err := aggregate[struct {
		ID             PeriodKey `bson:"_id"`
		SameDayOrders  int64     `bson:"sameDayOrders"`
		NormalOrders   int64     `bson:"normalOrders"`
		SameDayRevenue float64   `bson:"sameDayRevenue"`
		NormalRevenue  float64   `bson:"normalRevenue"`
	}](ctx, s, "delivery_type_stats", p)
	if err != nil {
		return nil, err
	}

	out := make([]DeliveryTypePoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, DeliveryTypePoint{
			Period:            FormatPeriod(g, r.ID),
			SameDayOrders:     r.SameDayOrders,
			NormalOrders:      r.NormalOrders,
			SameDayRevenue:    RoundMoney(r.SameDayRevenue),
			NormalRevenue:     RoundMoney(r.NormalRevenue),
			SameDayPercentage: Percentage(float64(r.SameDayOrders), float64(r.SameDayOrders+r.NormalOrders)),
		})
	}
	return out, nil
}

// ProductTimelinePoint là doanh số một sản phẩm trong một chu kỳ
type ProductTimelinePoint struct {
	Period      string  `json:"period"`
	ProductName string  `json:"productName"`
	Quantity    int64   `json:"quantity"`
	Revenue     float64 `json:"revenue"`
	OrderCount  int64   `json:"orderCount"`
}

// ProductTimeline group theo (chu kỳ, tên sản phẩm). f.Product lọc khớp một
// phần tên sản phẩm, không phân biệt hoa thường.
func (s *AnalyticsService) ProductTimeline(ctx context.Context, f Filter) ([]ProductTimelinePoint, error) {
	g := ParseGranularity(string(f.Period))

	b := pipeline.New().
		Match(f.match("")).
		Unwind("items")
	if f.Product != "" {
		b.Match(bson.M{"items.name": containsRegex(f.Product)})
	}
	sortKeys := append(periodSort(g, "_id."), pipeline.Desc("quantity"), pipeline.Asc("_id.productName"))
	p := b.Unwind("items.options").
		Group(withPeriod(s.periodGroupKey(g), bson.E{Key: "productName", Value: pipeline.Field("items.name")}), bson.D{
			{Key: "quantity", Value: pipeline.Sum(pipeline.IfNull(pipeline.Field("items.options.quantity"), 0))},
			{Key: "revenue", Value: pipeline.Sum(lineRevenue())},
			{Key: "orders", Value: pipeline.AddToSet(pipeline.Field("_id"))},
		}).
		AddFields(bson.D{{Key: "orderCount", Value: pipeline.Size(pipeline.Field("orders"))}}).
		Sort(sortKeys...).
		Limit(f.Limit).
		Build()

	rows, err := aggregate[struct {
		ID struct {
			PeriodKey   `bson:",inline"`
			ProductName string `bson:"productName"`
		} `bson:"_id"`
		Quantity   int64   `bson:"quantity"`
		Revenue    float64 `bson:"revenue"`
		OrderCount int64   `bson:"orderCount"`
	}](ctx, s, "product_timeline", p)
	if err != nil {
		return nil, err
	}

	out := make([]ProductTimelinePoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProductTimelinePoint{
			Period:      FormatPeriod(g, r.ID.PeriodKey),
			ProductName: r.ID.ProductName,
			Quantity:    r.Quantity,
			Revenue:     RoundMoney(r.Revenue),
			OrderCount:  r.OrderCount,
		})
	}
	return out, nil
}
