package analyticssvc

import (
	"context"
	"time"

	"barfer_analytics/internal/pipeline"

	"go.mongodb.org/mongo-driver/bson"
)

// PurchaseFrequency là khoảng cách trung bình giữa hai lần mua tại cùng địa chỉ
type PurchaseFrequency struct {
	AverageDaysBetweenPurchases float64 `json:"averageDaysBetweenPurchases"`
	LocationsWithRepeat         int64   `json:"locationsWithRepeat"`
	TotalGaps                   int64   `json:"totalGaps"`
}

// PurchaseFrequency dùng cặp (address.address, address.zipCode) thay cho định
// danh khách hàng. Các mốc createdAt của mỗi địa chỉ được sắp xếp, khoảng
// cách 0 ngày (mua lặp trong ngày) bị loại khỏi trung bình.
func (s *AnalyticsService) PurchaseFrequency(ctx context.Context, f Filter) (PurchaseFrequency, error) {
	match := f.match("")
	match["address.address"] = bson.M{"$nin": bson.A{nil, ""}}

	p := pipeline.New().
		Match(match).
		Group(bson.D{
			{Key: "address", Value: pipeline.Field("address.address")},
			{Key: "zipCode", Value: pipeline.Field("address.zipCode")},
		}, bson.D{
			{Key: "orders", Value: pipeline.Count()},
			{Key: "dates", Value: pipeline.Push(pipeline.Field("createdAt"))},
		}).
		Match(bson.M{"orders": bson.M{"$gt": 1}}).
		Project(bson.D{
			{Key: "_id", Value: 0},
			{Key: "dates", Value: 1},
		}).
		Build()

	rows, err := aggregate[struct {
		Dates []time.Time `bson:"dates"`
	}](ctx, s, "purchase_frequency", p)
	if err != nil {
		return PurchaseFrequency{}, err
	}

	var all []int
	for _, r := range rows {
		all = append(all, DayGaps(r.Dates)...)
	}
	return PurchaseFrequency{
		AverageDaysBetweenPurchases: AverageGap(all),
		LocationsWithRepeat:         int64(len(rows)),
		TotalGaps:                   int64(len(all)),
	}, nil
}
