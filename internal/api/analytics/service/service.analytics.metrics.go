package analyticssvc

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// recordQuery ghi thời gian chạy và số lỗi theo operation
func (s *AnalyticsService) recordQuery(ctx context.Context, operation string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("collection", s.collection),
	)
	if err != nil {
		s.queryErrors.Add(ctx, 1, attrs)
		return
	}
	s.queryDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}

// recordUnmatched cộng số lượng sản phẩm không khớp luật phân loại nào
func (s *AnalyticsService) recordUnmatched(ctx context.Context, units int64) {
	if units <= 0 {
		return
	}
	s.unmatchedUnits.Add(ctx, units, metric.WithAttributes(attribute.String("category", CategoryOther)))
}
