package basehdl

import (
	"context"
	"time"

	"barfer_analytics/internal/api/middleware"
	"barfer_analytics/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Pinger là nguồn dữ liệu có thể kiểm tra kết nối
type Pinger interface {
	Ping(ctx context.Context) error
}

// MetricsCollector đọc snapshot metrics hiện tại (sdkmetric.ManualReader thỏa interface này)
type MetricsCollector interface {
	Collect(ctx context.Context, rm *metricdata.ResourceMetrics) error
}

// SystemHandler xử lý các route liên quan đến system operations
type SystemHandler struct {
	db      Pinger
	metrics MetricsCollector
	version string
}

// NewSystemHandler tạo một instance mới của SystemHandler. metrics có thể nil.
func NewSystemHandler(db Pinger, metrics MetricsCollector, version string) *SystemHandler {
	return &SystemHandler{db: db, metrics: metrics, version: version}
}

// HandleHealth kiểm tra tình trạng hệ thống và kết nối MongoDB
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	services := fiber.Map{"api": "ok"}
	healthData := fiber.Map{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	}

	if h.db == nil {
		healthData["status"] = "degraded"
		services["database"] = "not_initialized"
		return middleware.JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
			"code":    common.StatusServiceUnavailable,
			"message": "Hệ thống đang gặp sự cố",
			"data":    healthData,
			"status":  "error",
		})
	}

	if err := h.db.Ping(ctx); err != nil {
		healthData["status"] = "degraded"
		services["database"] = "error"
		healthData["database_error"] = err.Error()
		return middleware.JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
			"code":    common.StatusServiceUnavailable,
			"message": "Hệ thống đang gặp sự cố",
			"data":    healthData,
			"status":  "error",
		})
	}
	services["database"] = "ok"

	return middleware.JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    healthData,
		"status":  "success",
	})
}

// metricPoint là một điểm dữ liệu rút gọn để trả về JSON
type metricPoint struct {
	Name  string    `json:"name"`
	Unit  string    `json:"unit,omitempty"`
	Attrs fiber.Map `json:"attributes,omitempty"`
	Value float64   `json:"value"`
	Count uint64    `json:"count,omitempty"`
}

// HandleMetrics trả về snapshot các metrics analytics (thời gian query, số lỗi, ...)
func (h *SystemHandler) HandleMetrics(c fiber.Ctx) error {
	if h.metrics == nil {
		HandleResponse(c, []metricPoint{}, nil)
		return nil
	}
	var rm metricdata.ResourceMetrics
	if err := h.metrics.Collect(c.Context(), &rm); err != nil {
		HandleResponse(c, nil, common.NewError(common.ErrCodeInternalServer, common.MsgInternalError, common.StatusInternalServerError, err.Error()))
		return nil
	}
	HandleResponse(c, flattenMetrics(rm), nil)
	return nil
}

// flattenMetrics chuyển ResourceMetrics thành danh sách phẳng; histogram trả về tổng và số lần đo
func flattenMetrics(rm metricdata.ResourceMetrics) []metricPoint {
	points := []metricPoint{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					points = append(points, metricPoint{Name: m.Name, Unit: m.Unit, Attrs: attrsMap(dp.Attributes.ToSlice()), Value: float64(dp.Value)})
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					points = append(points, metricPoint{Name: m.Name, Unit: m.Unit, Attrs: attrsMap(dp.Attributes.ToSlice()), Value: dp.Value})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					points = append(points, metricPoint{Name: m.Name, Unit: m.Unit, Attrs: attrsMap(dp.Attributes.ToSlice()), Value: dp.Sum, Count: dp.Count})
				}
			}
		}
	}
	return points
}

func attrsMap(kvs []attribute.KeyValue) fiber.Map {
	if len(kvs) == 0 {
		return nil
	}
	out := fiber.Map{}
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}
