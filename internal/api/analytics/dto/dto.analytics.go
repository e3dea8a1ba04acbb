// Package analyticsdto - DTO cho các endpoint báo cáo đơn hàng.
package analyticsdto

import (
	"time"

	analyticssvc "barfer_analytics/internal/api/analytics/service"
	"barfer_analytics/internal/common"
)

// DateLayout là định dạng ngày của from/to
const DateLayout = "2006-01-02"

// MaxLimit là giới hạn trên của limit
const MaxLimit = 1000

// AnalyticsQueryParams query params chung cho GET /analytics/*.
type AnalyticsQueryParams struct {
	From          string `query:"from" validate:"omitempty,datetime=2006-01-02"`    // yyyy-mm-dd, tính từ đầu ngày
	To            string `query:"to" validate:"omitempty,datetime=2006-01-02"`      // yyyy-mm-dd, tính đến hết ngày
	Status        string `query:"status" validate:"omitempty,max=32,no_xss"`        // pending|confirmed|...
	Limit         int    `query:"limit" validate:"gte=0,lte=1000"`                  // 0 = không giới hạn
	PaymentMethod string `query:"paymentMethod" validate:"omitempty,max=64,no_xss"` // Khớp một phần
	Period        string `query:"period" validate:"omitempty,period"`               // daily|weekly|monthly
	Product       string `query:"product" validate:"omitempty,max=128,no_xss"`      // Khớp một phần tên sản phẩm
}

// ToFilter chuyển query params thành Filter; ngày được hiểu theo múi giờ loc.
func (q AnalyticsQueryParams) ToFilter(loc *time.Location) (analyticssvc.Filter, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := analyticssvc.Filter{
		Status:        q.Status,
		Limit:         q.Limit,
		PaymentMethod: q.PaymentMethod,
		Period:        analyticssvc.ParseGranularity(q.Period),
		Product:       q.Product,
	}

	if q.From != "" {
		from, err := time.ParseInLocation(DateLayout, q.From, loc)
		if err != nil {
			return analyticssvc.Filter{}, common.WithDetails(common.ErrInvalidFormat, "from: "+q.From)
		}
		f.From = &from
	}
	if q.To != "" {
		day, err := time.ParseInLocation(DateLayout, q.To, loc)
		if err != nil {
			return analyticssvc.Filter{}, common.WithDetails(common.ErrInvalidFormat, "to: "+q.To)
		}
		// Mongo lưu date theo mili giây
		to := day.AddDate(0, 0, 1).Add(-time.Millisecond)
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return analyticssvc.Filter{}, common.WithDetails(common.ErrInvalidInput, "from phải trước hoặc bằng to")
	}
	return f, nil
}
