package analyticssvc

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// RoundMoney làm tròn tiền về số nguyên gần nhất (0.5 làm tròn ra xa 0)
func RoundMoney(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(0).InexactFloat64()
}

// RoundRate làm tròn tỉ lệ về 2 chữ số thập phân
func RoundRate(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Percentage = part/total*100, làm tròn 2 chữ số. total == 0 trả về 0.
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return RoundRate(part / total * 100)
}

// ratio = part/total, trả về 0 khi total == 0
func ratio(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total
}

// FormatDay trả về YYYY-MM-DD
func FormatDay(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// FormatMonth trả về YYYY-MM
func FormatMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// FormatWeek trả về tuần ISO dạng YYYY-Www
func FormatWeek(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// FormatPeriod định dạng khóa chu kỳ theo granularity
func FormatPeriod(g Granularity, k PeriodKey) string {
	switch g {
	case GranularityWeekly:
		return FormatWeek(k.Year, k.Week)
	case GranularityMonthly:
		return FormatMonth(k.Year, k.Month)
	default:
		return FormatDay(k.Year, k.Month, k.Day)
	}
}

// DayGaps sắp xếp các mốc thời gian và trả về khoảng cách (số ngày nguyên,
// làm tròn xuống) giữa hai lần mua liên tiếp. Khoảng cách 0 ngày bị loại.
func DayGaps(times []time.Time) []int {
	if len(times) < 2 {
		return nil
	}
	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var gaps []int
	for i := 1; i < len(sorted); i++ {
		days := int(sorted[i].Sub(sorted[i-1]) / (24 * time.Hour))
		if days > 0 {
			gaps = append(gaps, days)
		}
	}
	return gaps
}

// AverageGap là trung bình các khoảng cách, làm tròn về số nguyên. Rỗng trả về 0.
func AverageGap(gaps []int) float64 {
	if len(gaps) == 0 {
		return 0
	}
	total := 0
	for _, g := range gaps {
		total += g
	}
	return RoundMoney(float64(total) / float64(len(gaps)))
}
