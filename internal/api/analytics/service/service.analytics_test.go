package analyticssvc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	analyticsmodels "barfer_analytics/internal/api/analytics/models"
	"barfer_analytics/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// fakeOrders giả lập collection orders: ghi lại pipeline và trả về documents dựng sẵn
type fakeOrders struct {
	mu        sync.Mutex
	pipelines []mongo.Pipeline
	respond   func(p mongo.Pipeline) ([]any, error)

	updateFilter any
	update       any
	updateResult *mongo.UpdateResult
	updateErr    error
}

func (f *fakeOrders) Aggregate(ctx context.Context, p any, opts ...*options.AggregateOptions) (*mongo.Cursor, error) {
	pl := p.(mongo.Pipeline)
	f.mu.Lock()
	f.pipelines = append(f.pipelines, pl)
	f.mu.Unlock()

	var docs []any
	if f.respond != nil {
		var err error
		if docs, err = f.respond(pl); err != nil {
			return nil, err
		}
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

func (f *fakeOrders) UpdateMany(ctx context.Context, filter any, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.updateFilter = filter
	f.update = update
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateResult, nil
}

func (f *fakeOrders) last() mongo.Pipeline {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pipelines[len(f.pipelines)-1]
}

func returning(docs ...any) func(mongo.Pipeline) ([]any, error) {
	return func(mongo.Pipeline) ([]any, error) { return docs, nil }
}

func newTestService(t *testing.T, col *fakeOrders) (*AnalyticsService, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	svc, err := NewAnalyticsService(nil,
		WithOrdersCollection(col),
		WithTimezone("UTC"),
		WithMeterProvider(mp),
	)
	require.NoError(t, err)
	return svc, reader
}

// stage lấy giá trị của stage đầu tiên có tên name
func stage(p mongo.Pipeline, name string) any {
	for _, s := range p {
		if s[0].Key == name {
			return s[0].Value
		}
	}
	return nil
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestNewAnalyticsService_Validation(t *testing.T) {
	_, err := NewAnalyticsService(nil)
	assert.Error(t, err, "thiếu nguồn collection")

	_, err = NewAnalyticsService(nil, WithOrdersCollection(&fakeOrders{}), WithTimezone("Mars/Olympus"))
	assert.ErrorIs(t, err, common.ErrInvalidTimezone)

	svc, err := NewAnalyticsService(nil, WithOrdersCollection(&fakeOrders{}))
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, svc.Timezone())
}

type missingSource struct{}

func (missingSource) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	return nil, common.ErrMissingConnectionURI
}

func TestAggregate_ConfigurationErrorReturnedUnchanged(t *testing.T) {
	svc, err := NewAnalyticsService(missingSource{}, WithTimezone("UTC"))
	require.NoError(t, err)

	_, err = svc.AverageOrderValue(context.Background(), Filter{})
	assert.Same(t, common.ErrMissingConnectionURI, err)
}

func TestAggregate_QueryErrorReturnedUnchanged(t *testing.T) {
	boom := errors.New("connection reset")
	col := &fakeOrders{respond: func(mongo.Pipeline) ([]any, error) { return nil, boom }}
	svc, reader := newTestService(t, col)

	_, err := svc.RevenueByDay(context.Background(), Filter{})
	assert.Same(t, boom, err)
	assert.Equal(t, int64(1), counterValue(t, reader, "analytics.query.errors"))
}

func TestAverageOrderValue(t *testing.T) {
	col := &fakeOrders{respond: returning(bson.M{"_id": nil, "totalOrders": 3, "totalRevenue": 600.0})}
	svc, _ := newTestService(t, col)

	got, err := svc.AverageOrderValue(context.Background(), Filter{Status: analyticsmodels.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, AverageOrderValue{AverageOrderValue: 200, TotalOrders: 3, TotalRevenue: 600}, got)

	// luôn chỉ tính đơn confirmed, bất kể f.Status
	match := stage(col.last(), "$match").(bson.M)
	assert.Equal(t, analyticsmodels.StatusConfirmed, match["status"])
}

func TestAverageOrderValue_Empty(t *testing.T) {
	svc, _ := newTestService(t, &fakeOrders{})
	got, err := svc.AverageOrderValue(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, AverageOrderValue{}, got)
}

func TestAverageOrderValue_RoundsToNearest(t *testing.T) {
	col := &fakeOrders{respond: returning(bson.M{"totalOrders": 2, "totalRevenue": 301.0})}
	svc, _ := newTestService(t, col)

	got, err := svc.AverageOrderValue(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 151.0, got.AverageOrderValue, "150.5 làm tròn lên, không cắt")
}

func TestCustomerFrequency_RepeatRate(t *testing.T) {
	// 5 khách: 3 khách 1 đơn, 1 khách 2 đơn, 1 khách 3 đơn
	col := &fakeOrders{respond: returning(
		bson.M{"_id": 1, "customerCount": 3},
		bson.M{"_id": 2, "customerCount": 1},
		bson.M{"_id": 3, "customerCount": 1},
	)}
	svc, _ := newTestService(t, col)

	got, err := svc.CustomerFrequency(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.TotalCustomers)
	assert.Equal(t, int64(2), got.RepeatCustomers)
	assert.Equal(t, 40.0, got.RepeatCustomerRate)
	assert.Equal(t, 1.6, got.AverageOrdersPerCustomer)
	require.Len(t, got.Distribution, 3)
	assert.Equal(t, FrequencyBucket{OrderCount: 2, CustomerCount: 1}, got.Distribution[1])

	p := col.last()
	match := stage(p, "$match").(bson.M)
	assert.Equal(t, analyticsmodels.StatusConfirmed, match["status"])
	group := stage(p, "$group").(bson.D)
	assert.Equal(t, bson.M{"$ifNull": bson.A{"$user._id", "$user"}}, group[0].Value)
}

func TestCustomerFrequency_Empty(t *testing.T) {
	svc, _ := newTestService(t, &fakeOrders{})
	got, err := svc.CustomerFrequency(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.RepeatCustomerRate)
	assert.Equal(t, 0.0, got.AverageOrdersPerCustomer)
	assert.NotNil(t, got.Distribution)
	assert.Empty(t, got.Distribution)
}

func TestCustomerInsights(t *testing.T) {
	col := &fakeOrders{respond: returning(bson.M{
		"totalCustomers":  4,
		"repeatCustomers": 1,
		"totalOrders":     6,
		"totalRevenue":    1001.0,
	})}
	svc, _ := newTestService(t, col)

	got, err := svc.CustomerInsights(context.Background(), Filter{Status: analyticsmodels.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.OneTimeCustomers)
	assert.Equal(t, 25.0, got.RepeatCustomerRate)
	assert.Equal(t, 1.5, got.AverageOrdersPerCustomer)
	assert.Equal(t, 250.0, got.AverageSpentPerCustomer)

	// mọi trạng thái
	match := stage(col.last(), "$match").(bson.M)
	assert.NotContains(t, match, "status")
}

func TestCategorySales_RecordsUnmatched(t *testing.T) {
	col := &fakeOrders{respond: returning(
		bson.M{"category": "PERRO POLLO", "quantity": 10, "revenue": 1000.4, "orderCount": 4, "sameDayOrders": 1},
		bson.M{"category": CategoryOther, "quantity": 3, "revenue": 90.5, "orderCount": 2, "sameDayOrders": 0},
	)}
	svc, reader := newTestService(t, col)

	got, err := svc.CategorySales(context.Background(), Filter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1000.0, got[0].Revenue)
	assert.Equal(t, 91.0, got[1].Revenue)
	assert.Equal(t, int64(3), counterValue(t, reader, "analytics.category.unmatched_units"))

	assert.Equal(t, int64(10), stage(col.last(), "$limit"))
}

func TestProductSales_SortsStatuses(t *testing.T) {
	col := &fakeOrders{respond: returning(bson.M{
		"productId": "p1", "productName": "BOX PERRO POLLO", "optionName": "5KG",
		"quantity":  2, "revenue": 50.0, "orderCount": 2,
		"statuses":  bson.A{"pending", "confirmed"},
	})}
	svc, _ := newTestService(t, col)

	got, err := svc.ProductSales(context.Background(), Filter{Product: "pollo"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"confirmed", "pending"}, got[0].Statuses)

	// filter tên sản phẩm đứng sau $unwind items
	p := col.last()
	assert.Equal(t, "$unwind", p[0][0].Key, "filter rỗng không sinh $match")
	assert.Equal(t, bson.M{"items.name": bson.M{"$regex": "pollo", "$options": "i"}}, p[1][0].Value)
}

func TestRevenueByDay_Format(t *testing.T) {
	col := &fakeOrders{respond: returning(
		bson.M{"_id": bson.M{"year": 2024, "month": 3, "day": 5}, "orders": 2, "revenue": 301.0},
		bson.M{"_id": bson.M{"year": 2024, "month": 12, "day": 31}, "orders": 0, "revenue": 0.0},
	)}
	svc, _ := newTestService(t, col)

	got, err := svc.RevenueByDay(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, RevenuePoint{Date: "2024-03-05", Orders: 2, Revenue: 301, AverageOrderValue: 151}, got[0])
	assert.Equal(t, 0.0, got[1].AverageOrderValue)

	sortStage := stage(col.last(), "$sort").(bson.D)
	assert.Equal(t, []string{"_id.year", "_id.month", "_id.day"}, []string{sortStage[0].Key, sortStage[1].Key, sortStage[2].Key})
}

func TestRevenueByMonth_Format(t *testing.T) {
	col := &fakeOrders{respond: returning(bson.M{"_id": bson.M{"year": 2024, "month": 3}, "orders": 1, "revenue": 10.0})}
	svc, _ := newTestService(t, col)

	got, err := svc.RevenueByMonth(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03", got[0].Date)
}

func TestPaymentMethodStats(t *testing.T) {
	col := &fakeOrders{respond: returning(
		bson.M{"_id": "Tarjeta de Crédito", "totalOrders": 3, "totalRevenue": 300.0, "confirmedOrders": 2, "confirmedRevenue": 200.0, "pendingOrders": 1, "pendingRevenue": 100.0},
		bson.M{"_id": "cash", "totalOrders": 1, "totalRevenue": 50.0, "confirmedOrders": 0, "confirmedRevenue": 0.0, "pendingOrders": 1, "pendingRevenue": 50.0},
	)}
	svc, _ := newTestService(t, col)

	got, err := svc.PaymentMethodStats(context.Background(), Filter{PaymentMethod: "tarjeta"})
	require.NoError(t, err)
	require.Len(t, got.Methods, 2)

	card := got.Methods[0]
	assert.Equal(t, 75.0, card.Total.Percentage)
	assert.Equal(t, 100.0, card.Confirmed.Percentage)
	assert.Equal(t, 50.0, card.Pending.Percentage)
	assert.Equal(t, 0.0, got.Methods[1].Confirmed.Percentage)
	assert.Equal(t, int64(4), got.Totals.Total.Orders)
	assert.Equal(t, 350.0, got.Totals.Total.Revenue)

	match := stage(col.last(), "$match").(bson.M)
	assert.Equal(t, bson.M{"$regex": "tarjeta", "$options": "i"}, match["paymentMethod"])
}

func TestPaymentMethodStats_EscapesRegex(t *testing.T) {
	col := &fakeOrders{}
	svc, _ := newTestService(t, col)

	got, err := svc.PaymentMethodStats(context.Background(), Filter{PaymentMethod: "mercado.pago (qr)"})
	require.NoError(t, err)
	assert.Empty(t, got.Methods)

	match := stage(col.last(), "$match").(bson.M)
	assert.Equal(t, `mercado\.pago \(qr\)`, match["paymentMethod"].(bson.M)["$regex"])
}

func TestPurchaseFrequency_ExcludesSameDay(t *testing.T) {
	d0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	col := &fakeOrders{respond: returning(
		bson.M{"dates": bson.A{d0.AddDate(0, 0, 6), d0, d0.Add(2 * time.Hour), d0.AddDate(0, 0, 2)}},
		bson.M{"dates": bson.A{d0, d0.Add(time.Hour)}},
	)}
	svc, _ := newTestService(t, col)

	got, err := svc.PurchaseFrequency(context.Background(), Filter{})
	require.NoError(t, err)
	// gaps: 0 (loại), 1 (d0+2h → d0+2d = 1 ngày 22 giờ), 4 ; địa chỉ thứ hai chỉ có gap 0
	assert.Equal(t, int64(2), got.LocationsWithRepeat)
	assert.Equal(t, int64(2), got.TotalGaps)
	assert.Equal(t, 3.0, got.AverageDaysBetweenPurchases)
}

func TestPurchaseFrequency_Empty(t *testing.T) {
	svc, _ := newTestService(t, &fakeOrders{})
	got, err := svc.PurchaseFrequency(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, PurchaseFrequency{}, got)
}

func TestDeliveryTypeStats_Weekly(t *testing.T) {
	col := &fakeOrders{respond: returning(bson.M{
		"_id":            bson.M{"year": 2024, "week": 1},
		"sameDayOrders":  1, "normalOrders": 3,
		"sameDayRevenue": 10.0, "normalRevenue": 30.0,
	})}
	svc, _ := newTestService(t, col)

	got, err := svc.DeliveryTypeStats(context.Background(), Filter{Period: GranularityWeekly})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-W01", got[0].Period)
	assert.Equal(t, 25.0, got[0].SameDayPercentage)

	group := stage(col.last(), "$group").(bson.D)
	id := group[0].Value.(bson.D)
	assert.Equal(t, "year", id[0].Key)
	assert.Equal(t, bson.M{"$isoWeekYear": bson.M{"date": "$createdAt", "timezone": "UTC"}}, id[0].Value)
	assert.Equal(t, "week", id[1].Key)
}

func TestProductTimeline(t *testing.T) {
	col := &fakeOrders{respond: returning(bson.M{
		"_id":      bson.M{"year": 2024, "month": 2, "productName": "BOX GATO VACA"},
		"quantity": 4, "revenue": 99.5, "orderCount": 2,
	})}
	svc, _ := newTestService(t, col)

	got, err := svc.ProductTimeline(context.Background(), Filter{Period: GranularityMonthly})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ProductTimelinePoint{Period: "2024-02", ProductName: "BOX GATO VACA", Quantity: 4, Revenue: 100, OrderCount: 2}, got[0])
}

func TestPaymentsByPeriod(t *testing.T) {
	col := &fakeOrders{respond: returning(bson.M{
		"_id":    bson.M{"year": 2024, "month": 2, "day": 9, "paymentMethod": "cash"},
		"orders": 2, "revenue": 20.0, "confirmedOrders": 1, "confirmedRevenue": 10.0,
	})}
	svc, _ := newTestService(t, col)

	got, err := svc.PaymentsByPeriod(context.Background(), Filter{Period: "bogus"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-02-09", got[0].Period, "period lạ dùng daily")
	assert.Equal(t, "cash", got[0].PaymentMethod)
}

func TestStatusBreakdown(t *testing.T) {
	col := &fakeOrders{respond: returning(
		bson.M{"_id": "confirmed", "orders": 3, "revenue": 300.0},
		bson.M{"_id": "pending", "orders": 1, "revenue": 100.0},
	)}
	svc, _ := newTestService(t, col)

	got, err := svc.StatusBreakdown(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 75.0, got[0].Percentage)
	assert.Equal(t, 25.0, got[1].Percentage)
}

func TestDashboardSummary(t *testing.T) {
	col := &fakeOrders{}
	svc, _ := newTestService(t, col)

	got, err := svc.DashboardSummary(context.Background(), Filter{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, col.pipelines, 5)
	assert.Empty(t, got.TopCategories)
	assert.Empty(t, got.StatusBreakdown)
	assert.Equal(t, AverageOrderValue{}, got.AverageOrderValue)

	// top categories luôn giới hạn 5
	var limits []any
	for _, p := range col.pipelines {
		if l := stage(p, "$limit"); l != nil {
			limits = append(limits, l)
		}
	}
	assert.Equal(t, []any{int64(dashboardTopCategories)}, limits)
}

func TestDashboardSummary_FirstErrorReturned(t *testing.T) {
	boom := errors.New("boom")
	col := &fakeOrders{respond: func(p mongo.Pipeline) ([]any, error) {
		if stage(p, "$unwind") != nil {
			return nil, boom
		}
		return nil, nil
	}}
	svc, _ := newTestService(t, col)

	_, err := svc.DashboardSummary(context.Background(), Filter{})
	assert.Same(t, boom, err)
}

func TestBackfillOrderType(t *testing.T) {
	col := &fakeOrders{updateResult: &mongo.UpdateResult{MatchedCount: 7, ModifiedCount: 7}}
	svc, reader := newTestService(t, col)

	got, err := svc.BackfillOrderType(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, BackfillResult{OrderType: analyticsmodels.DefaultOrderType, Matched: 7, Modified: 7}, got)
	assert.Equal(t, bson.M{"orderType": bson.M{"$exists": false}}, col.updateFilter)
	assert.Equal(t, bson.M{"$set": bson.M{"orderType": "minorista"}}, col.update)
	assert.Equal(t, int64(7), counterValue(t, reader, "analytics.backfill.modified_orders"))
}

func TestBackfillOrderType_Error(t *testing.T) {
	boom := errors.New("not primary")
	svc, _ := newTestService(t, &fakeOrders{updateErr: boom})

	_, err := svc.BackfillOrderType(context.Background(), "mayorista")
	assert.Same(t, boom, err)
}
