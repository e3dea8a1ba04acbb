package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditAction mô tả một thao tác ghi dữ liệu ngoài luồng đọc (vd: backfill)
type AuditAction struct {
	Action     string                 `json:"action"`     // Tên hành động (vd: "order_type_backfill")
	Collection string                 `json:"collection"` // Collection bị ảnh hưởng
	Actor      string                 `json:"actor"`      // Người/lệnh thực hiện
	Details    map[string]interface{} `json:"details"`    // Chi tiết bổ sung
	Timestamp  time.Time              `json:"timestamp"`  // Thời gian
}

// LogAction ghi một hành động audit vào audit logger
func LogAction(action AuditAction) {
	if action.Timestamp.IsZero() {
		action.Timestamp = time.Now()
	}
	fields := logrus.Fields{
		"action":     action.Action,
		"collection": action.Collection,
		"actor":      action.Actor,
		"timestamp":  action.Timestamp.Format(time.RFC3339),
	}
	for k, v := range action.Details {
		fields[k] = v
	}
	GetAuditLogger().WithFields(fields).Info("Audit action")
}
