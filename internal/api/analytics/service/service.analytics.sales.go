package analyticssvc

import (
	"context"
	"sort"

	"barfer_analytics/internal/pipeline"

	"go.mongodb.org/mongo-driver/bson"
)

// CategorySale là doanh số của một nhóm sản phẩm
type CategorySale struct {
	Category      string  `json:"category" bson:"category"`
	Quantity      int64   `json:"quantity" bson:"quantity"`
	Revenue       float64 `json:"revenue" bson:"revenue"`
	OrderCount    int64   `json:"orderCount" bson:"orderCount"`
	SameDayOrders int64   `json:"sameDayOrders" bson:"sameDayOrders"`
}

// CategorySales tách items/options, gán nhóm theo CategoryRules và cộng dồn
// số lượng, doanh thu. Sắp giảm dần theo số lượng.
func (s *AnalyticsService) CategorySales(ctx context.Context, f Filter) ([]CategorySale, error) {
	p := pipeline.New().
		Match(f.match("")).
		AddFields(bson.D{{Key: "isSameDay", Value: sameDayExpr()}}).
		Unwind("items").
		Unwind("items.options").
		AddFields(bson.D{{Key: "category", Value: categoryExpr("items.name")}}).
		Group(pipeline.Field("category"), bson.D{
			{Key: "quantity", Value: pipeline.Sum(pipeline.IfNull(pipeline.Field("items.options.quantity"), 0))},
			{Key: "revenue", Value: pipeline.Sum(lineRevenue())},
			{Key: "orders", Value: pipeline.AddToSet(pipeline.Field("_id"))},
			{Key: "sameDayOrderIds", Value: pipeline.AddToSet(pipeline.Cond(pipeline.Field("isSameDay"), pipeline.Field("_id"), "$$REMOVE"))},
		}).
		Project(bson.D{
			{Key: "_id", Value: 0},
			{Key: "category", Value: pipeline.Field("_id")},
			{Key: "quantity", Value: 1},
			{Key: "revenue", Value: 1},
			{Key: "orderCount", Value: pipeline.Size(pipeline.Field("orders"))},
			{Key: "sameDayOrders", Value: pipeline.Size(pipeline.Field("sameDayOrderIds"))},
		}).
		Sort(pipeline.Desc("quantity"), pipeline.Asc("category")).
		Limit(f.Limit).
		Build()

	rows, err := aggregate[CategorySale](ctx, s, "category_sales", p)
	if err != nil {
		return nil, err
	}

	var unmatched int64
	for i := range rows {
		rows[i].Revenue = RoundMoney(rows[i].Revenue)
		if rows[i].Category == CategoryOther {
			unmatched += rows[i].Quantity
		}
	}
	s.recordUnmatched(ctx, unmatched)
	return rows, nil
}

// ProductSale là doanh số theo (sản phẩm, option)
type ProductSale struct {
	ProductID   string   `json:"productId" bson:"productId"`
	ProductName string   `json:"productName" bson:"productName"`
	OptionName  string   `json:"optionName" bson:"optionName"`
	Quantity    int64    `json:"quantity" bson:"quantity"`
	Revenue     float64  `json:"revenue" bson:"revenue"`
	OrderCount  int64    `json:"orderCount" bson:"orderCount"`
	Statuses    []string `json:"statuses" bson:"statuses"`
}

// ProductSales group theo (productId, productName, optionName), ghi lại tập
// trạng thái đơn đã đóng góp. f.Product lọc theo tên sản phẩm.
func (s *AnalyticsService) ProductSales(ctx context.Context, f Filter) ([]ProductSale, error) {
	b := pipeline.New().
		Match(f.match("")).
		Unwind("items")
	if f.Product != "" {
		b.Match(bson.M{"items.name": containsRegex(f.Product)})
	}
	p := b.Unwind("items.options").
		Group(bson.D{
			{Key: "productId", Value: pipeline.Field("items.id")},
			{Key: "productName", Value: pipeline.Field("items.name")},
			{Key: "optionName", Value: pipeline.Field("items.options.name")},
		}, bson.D{
			{Key: "quantity", Value: pipeline.Sum(pipeline.IfNull(pipeline.Field("items.options.quantity"), 0))},
			{Key: "revenue", Value: pipeline.Sum(lineRevenue())},
			{Key: "orders", Value: pipeline.AddToSet(pipeline.Field("_id"))},
			{Key: "statuses", Value: pipeline.AddToSet(pipeline.Field("status"))},
		}).
		Project(bson.D{
			{Key: "_id", Value: 0},
			{Key: "productId", Value: pipeline.Field("_id.productId")},
			{Key: "productName", Value: pipeline.Field("_id.productName")},
			{Key: "optionName", Value: pipeline.Field("_id.optionName")},
			{Key: "quantity", Value: 1},
			{Key: "revenue", Value: 1},
			{Key: "orderCount", Value: pipeline.Size(pipeline.Field("orders"))},
			{Key: "statuses", Value: 1},
		}).
		Sort(pipeline.Desc("quantity"), pipeline.Asc("productName"), pipeline.Asc("optionName")).
		Limit(f.Limit).
		Build()

	rows, err := aggregate[ProductSale](ctx, s, "product_sales", p)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Revenue = RoundMoney(rows[i].Revenue)
		if rows[i].Statuses == nil {
			rows[i].Statuses = []string{}
		}
		sort.Strings(rows[i].Statuses)
	}
	return rows, nil
}
