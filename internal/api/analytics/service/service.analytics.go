// Package analyticssvc chứa các báo cáo tổng hợp trên collection orders.
//
// Mỗi báo cáo dựng một aggregation pipeline (lọc → unwind → tính field → group →
// project → sort/limit), chạy qua helper aggregate và định dạng kết quả bằng các
// hàm thuần trong service.analytics.format.go. Service không cache, không retry:
// lỗi truy vấn được log rồi trả nguyên vẹn cho caller.
package analyticssvc

import (
	"context"
	"time"

	"barfer_analytics/internal/common"
	"barfer_analytics/internal/logger"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Mặc định
const (
	DefaultCollection = "orders"
	DefaultTimezone   = "America/Argentina/Buenos_Aires"
	meterName         = "barfer_analytics/analytics"
)

// CollectionSource cung cấp collection handle theo tên (database.Manager thỏa mãn interface này)
type CollectionSource interface {
	Collection(ctx context.Context, name string) (*mongo.Collection, error)
}

// OrdersCollection là phần API của *mongo.Collection mà service dùng
type OrdersCollection interface {
	Aggregate(ctx context.Context, pipeline any, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
	UpdateMany(ctx context.Context, filter any, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// AnalyticsService chạy các báo cáo trên collection orders
type AnalyticsService struct {
	collection string
	timezone   string
	location   *time.Location
	slowQuery  time.Duration

	resolve func(ctx context.Context) (OrdersCollection, error)

	meterProvider    metric.MeterProvider
	queryDuration    metric.Float64Histogram
	queryErrors      metric.Int64Counter
	unmatchedUnits   metric.Int64Counter
	backfilledOrders metric.Int64Counter
}

// Option cấu hình AnalyticsService
type Option func(*AnalyticsService)

// WithCollection đổi tên collection orders
func WithCollection(name string) Option {
	return func(s *AnalyticsService) {
		if name != "" {
			s.collection = name
		}
	}
}

// WithTimezone đặt múi giờ IANA dùng để cắt ngày/tuần/tháng
func WithTimezone(tz string) Option {
	return func(s *AnalyticsService) {
		if tz != "" {
			s.timezone = tz
		}
	}
}

// WithSlowQueryThreshold đặt ngưỡng log query chậm. <= 0 tắt log.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(s *AnalyticsService) {
		s.slowQuery = d
	}
}

// WithMeterProvider đặt MeterProvider cho các instrument (mặc định otel global)
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *AnalyticsService) {
		if mp != nil {
			s.meterProvider = mp
		}
	}
}

// WithOrdersCollection dùng trực tiếp một collection thay vì resolve qua CollectionSource
func WithOrdersCollection(col OrdersCollection) Option {
	return func(s *AnalyticsService) {
		s.resolve = func(context.Context) (OrdersCollection, error) {
			return col, nil
		}
	}
}

// NewAnalyticsService tạo service mới. Không kết nối database ở đây:
// collection được resolve ở mỗi lần truy vấn.
func NewAnalyticsService(source CollectionSource, opts ...Option) (*AnalyticsService, error) {
	s := &AnalyticsService{
		collection:    DefaultCollection,
		timezone:      DefaultTimezone,
		slowQuery:     2 * time.Second,
		meterProvider: otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.resolve == nil {
		if source == nil {
			return nil, common.NewError(common.ErrCodeConfiguration, "Thiếu nguồn collection cho analytics", common.StatusInternalServerError, nil)
		}
		name := s.collection
		s.resolve = func(ctx context.Context) (OrdersCollection, error) {
			col, err := source.Collection(ctx, name)
			if err != nil {
				return nil, err
			}
			return col, nil
		}
	}

	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		return nil, common.WithDetails(common.ErrInvalidTimezone, s.timezone)
	}
	s.location = loc

	if err := s.initInstruments(); err != nil {
		return nil, err
	}
	return s, nil
}

// Location trả về múi giờ dùng để cắt chu kỳ
func (s *AnalyticsService) Location() *time.Location {
	return s.location
}

// Timezone trả về tên múi giờ
func (s *AnalyticsService) Timezone() string {
	return s.timezone
}

func (s *AnalyticsService) initInstruments() error {
	meter := s.meterProvider.Meter(meterName)

	var err error
	if s.queryDuration, err = meter.Float64Histogram(
		"analytics.query.duration",
		metric.WithDescription("Thời gian chạy aggregation pipeline"),
		metric.WithUnit("ms"),
	); err != nil {
		return err
	}
	if s.queryErrors, err = meter.Int64Counter(
		"analytics.query.errors",
		metric.WithDescription("Số aggregation lỗi"),
	); err != nil {
		return err
	}
	if s.unmatchedUnits, err = meter.Int64Counter(
		"analytics.category.unmatched_units",
		metric.WithDescription("Số lượng sản phẩm rơi vào nhóm OTROS"),
	); err != nil {
		return err
	}
	if s.backfilledOrders, err = meter.Int64Counter(
		"analytics.backfill.modified_orders",
		metric.WithDescription("Số đơn được gán orderType"),
	); err != nil {
		return err
	}
	return nil
}

// aggregate chạy pipeline và decode toàn bộ kết quả vào []T.
// Lỗi được log kèm operation và trả về nguyên vẹn.
func aggregate[T any](ctx context.Context, s *AnalyticsService, operation string, pipeline mongo.Pipeline) ([]T, error) {
	log := logger.WithContext(ctx).WithFields(logrus.Fields{
		"operation":  operation,
		"collection": s.collection,
	})

	col, err := s.resolve(ctx)
	if err != nil {
		log.WithError(err).Error("Không lấy được collection")
		s.recordQuery(ctx, operation, 0, err)
		return nil, err
	}

	start := time.Now()
	rows, err := runAggregate[T](ctx, col, pipeline)
	elapsed := time.Since(start)
	s.recordQuery(ctx, operation, elapsed, err)

	if err != nil {
		log.WithError(err).Error("Lỗi chạy aggregation")
		return nil, err
	}

	if s.slowQuery > 0 && elapsed > s.slowQuery {
		logger.GetPerformanceLogger().WithFields(logrus.Fields{
			"operation":   operation,
			"collection":  s.collection,
			"duration_ms": elapsed.Milliseconds(),
			"stages":      len(pipeline),
		}).Warn("Aggregation chậm")
	}
	log.WithFields(logrus.Fields{"rows": len(rows), "duration_ms": elapsed.Milliseconds()}).Debug("Aggregation xong")
	return rows, nil
}

func runAggregate[T any](ctx context.Context, col OrdersCollection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := col.Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []T{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
