package analyticssvc

import (
	"regexp"
	"strings"
	"time"

	"barfer_analytics/internal/pipeline"

	"go.mongodb.org/mongo-driver/bson"
)

// Granularity là độ chia chu kỳ của chuỗi thời gian
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// ParseGranularity đọc chuỗi period; giá trị lạ trả về daily
func ParseGranularity(s string) Granularity {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case GranularityWeekly:
		return GranularityWeekly
	case GranularityMonthly:
		return GranularityMonthly
	default:
		return GranularityDaily
	}
}

// Filter là tham số chung của các báo cáo. Field rỗng nghĩa là không lọc.
type Filter struct {
	From          *time.Time  // createdAt >= From
	To            *time.Time  // createdAt <= To
	Status        string      // Khớp chính xác; giá trị lạ trả về tập rỗng
	Limit         int         // <= 0 là không giới hạn
	PaymentMethod string      // Khớp một phần, không phân biệt hoa thường
	Period        Granularity // daily | weekly | monthly
	Product       string      // Khớp một phần tên sản phẩm, không phân biệt hoa thường
}

// createdAtRange trả về điều kiện khoảng đóng trên createdAt, nil nếu không có mốc nào
func (f Filter) createdAtRange() bson.M {
	if f.From == nil && f.To == nil {
		return nil
	}
	r := bson.M{}
	if f.From != nil {
		r["$gte"] = *f.From
	}
	if f.To != nil {
		r["$lte"] = *f.To
	}
	return r
}

// match dựng điều kiện $match. status khác rỗng thì ghi đè f.Status.
func (f Filter) match(status string) bson.M {
	m := bson.M{}
	if r := f.createdAtRange(); r != nil {
		m["createdAt"] = r
	}
	if status == "" {
		status = f.Status
	}
	if status != "" {
		m["status"] = status
	}
	return m
}

// withPaymentMethod thêm điều kiện paymentMethod khớp một phần
func (f Filter) withPaymentMethod(m bson.M) bson.M {
	if f.PaymentMethod != "" {
		m["paymentMethod"] = containsRegex(f.PaymentMethod)
	}
	return m
}

// containsRegex là $regex khớp một phần, không phân biệt hoa thường. Ký tự đặc biệt được escape.
func containsRegex(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// customerIdentity: user._id nếu user là object, ngược lại chính user
func customerIdentity() bson.M {
	return pipeline.IfNull(pipeline.Field("user._id"), pipeline.Field("user"))
}

// sameDayExpr: đơn giao trong ngày khi deliveryArea.sameDayDelivery hoặc bất kỳ item nào có cờ này
func sameDayExpr() bson.M {
	return pipeline.Or(
		pipeline.Eq(pipeline.Field("deliveryArea.sameDayDelivery"), true),
		pipeline.In(true, pipeline.IfNull(pipeline.Field("items.sameDayDelivery"), bson.A{})),
	)
}

// lineRevenue là price * quantity của option sau khi unwind
func lineRevenue() bson.M {
	return pipeline.Multiply(
		pipeline.IfNull(pipeline.Field("items.options.price"), 0),
		pipeline.IfNull(pipeline.Field("items.options.quantity"), 0),
	)
}

// PeriodKey là khóa chu kỳ sau khi group
type PeriodKey struct {
	Year  int `bson:"year"`
	Month int `bson:"month,omitempty"`
	Day   int `bson:"day,omitempty"`
	Week  int `bson:"week,omitempty"`
}

// periodGroupKey trả về các phần ngày dùng làm _id khi group theo chu kỳ
func (s *AnalyticsService) periodGroupKey(g Granularity) bson.D {
	tz := s.timezone
	switch g {
	case GranularityWeekly:
		return bson.D{
			{Key: "year", Value: pipeline.DatePart("isoWeekYear", "createdAt", tz)},
			{Key: "week", Value: pipeline.DatePart("isoWeek", "createdAt", tz)},
		}
	case GranularityMonthly:
		return bson.D{
			{Key: "year", Value: pipeline.DatePart("year", "createdAt", tz)},
			{Key: "month", Value: pipeline.DatePart("month", "createdAt", tz)},
		}
	default:
		return bson.D{
			{Key: "year", Value: pipeline.DatePart("year", "createdAt", tz)},
			{Key: "month", Value: pipeline.DatePart("month", "createdAt", tz)},
			{Key: "day", Value: pipeline.DatePart("dayOfMonth", "createdAt", tz)},
		}
	}
}

// periodSort: tuần sắp theo (year, week), còn lại theo (year, month, day)
func periodSort(g Granularity, prefix string) []pipeline.SortKey {
	if g == GranularityWeekly {
		return []pipeline.SortKey{pipeline.Asc(prefix + "year"), pipeline.Asc(prefix + "week")}
	}
	keys := []pipeline.SortKey{pipeline.Asc(prefix + "year"), pipeline.Asc(prefix + "month")}
	if g != GranularityMonthly {
		keys = append(keys, pipeline.Asc(prefix+"day"))
	}
	return keys
}

// withPeriod ghép khóa chu kỳ với các khóa group khác
func withPeriod(period bson.D, extra ...bson.E) bson.D {
	key := make(bson.D, 0, len(period)+len(extra))
	key = append(key, period...)
	return append(key, extra...)
}
