package analyticssvc

import (
	"context"
	"time"

	analyticsmodels "barfer_analytics/internal/api/analytics/models"
	"barfer_analytics/internal/logger"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// BackfillResult là kết quả gán orderType
type BackfillResult struct {
	OrderType string `json:"orderType"`
	Matched   int64  `json:"matched"`
	Modified  int64  `json:"modified"`
}

// BackfillOrderType gán orderType cho các đơn chưa có field này.
// Đây là thao tác ghi duy nhất của service, chỉ gọi từ CLI.
func (s *AnalyticsService) BackfillOrderType(ctx context.Context, orderType string) (BackfillResult, error) {
	if orderType == "" {
		orderType = analyticsmodels.DefaultOrderType
	}
	log := logger.WithContext(ctx).WithFields(logrus.Fields{
		"operation":  "backfill_order_type",
		"collection": s.collection,
	})

	col, err := s.resolve(ctx)
	if err != nil {
		log.WithError(err).Error("Không lấy được collection")
		return BackfillResult{}, err
	}

	filter := bson.M{"orderType": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"orderType": orderType}}
	res, err := col.UpdateMany(ctx, filter, update)
	if err != nil {
		log.WithError(err).Error("Lỗi gán orderType")
		return BackfillResult{}, err
	}

	out := BackfillResult{OrderType: orderType, Matched: res.MatchedCount, Modified: res.ModifiedCount}
	s.backfilledOrders.Add(ctx, out.Modified)
	logger.LogAction(logger.AuditAction{
		Action:     "backfill_order_type",
		Collection: s.collection,
		Actor:      "cli",
		Details: map[string]any{
			"orderType": orderType,
			"matched":   out.Matched,
			"modified":  out.Modified,
		},
		Timestamp: time.Now(),
	})
	log.WithFields(logrus.Fields{"matched": out.Matched, "modified": out.Modified}).Info("Đã gán orderType")
	return out, nil
}
