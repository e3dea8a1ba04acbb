package analyticssvc

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	cases := map[float64]float64{
		0:      0,
		199.4:  199,
		199.5:  200,
		200.49: 200,
		-2.5:   -3,
	}
	for in, want := range cases {
		assert.Equal(t, want, RoundMoney(in), "RoundMoney(%v)", in)
	}
	assert.Equal(t, 0.0, RoundMoney(math.NaN()))
	assert.Equal(t, 0.0, RoundMoney(math.Inf(1)))
}

func TestPercentage_GuardsZero(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 40.0, Percentage(2, 5))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 100.0, Percentage(3, 3))
}

func TestFormatPeriod_ZeroPadded(t *testing.T) {
	assert.Equal(t, "2024-03-05", FormatDay(2024, 3, 5))
	assert.Equal(t, "2024-03", FormatMonth(2024, 3))
	assert.Equal(t, "2024-11", FormatMonth(2024, 11))
	assert.Equal(t, "2025-W01", FormatWeek(2025, 1))

	assert.Equal(t, "2024-01-09", FormatPeriod(GranularityDaily, PeriodKey{Year: 2024, Month: 1, Day: 9}))
	assert.Equal(t, "2024-01", FormatPeriod(GranularityMonthly, PeriodKey{Year: 2024, Month: 1, Day: 9}))
	assert.Equal(t, "2024-W52", FormatPeriod(GranularityWeekly, PeriodKey{Year: 2024, Week: 52}))
}

func TestParseGranularity(t *testing.T) {
	assert.Equal(t, GranularityWeekly, ParseGranularity("WEEKLY"))
	assert.Equal(t, GranularityMonthly, ParseGranularity(" monthly "))
	assert.Equal(t, GranularityDaily, ParseGranularity(""))
	assert.Equal(t, GranularityDaily, ParseGranularity("yearly"))
}

func TestDayGaps(t *testing.T) {
	d0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	assert.Nil(t, DayGaps(nil))
	assert.Nil(t, DayGaps([]time.Time{d0}))

	// không cần sắp xếp trước; gap 0 bị loại; làm tròn xuống
	gaps := DayGaps([]time.Time{
		d0.Add(72 * time.Hour),
		d0,
		d0.Add(3 * time.Hour),
		d0.Add(47 * time.Hour),
	})
	assert.Equal(t, []int{1, 1}, gaps)
}

func TestAverageGap(t *testing.T) {
	assert.Equal(t, 0.0, AverageGap(nil))
	assert.Equal(t, 3.0, AverageGap([]int{2, 4}))
	assert.Equal(t, 2.0, AverageGap([]int{1, 2, 2}))
}
