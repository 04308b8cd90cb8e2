package shelf

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Pace is the reading rate and current streak derived from daily totals.
type Pace struct {
	AvgPagesPerDay float64 `json:"avgPagesPerDay" yaml:"avg_pages_per_day"`
	ActiveDays     int     `json:"activeDays" yaml:"active_days"`
	TotalPages     int     `json:"totalPages" yaml:"total_pages"`
	StreakDays     int     `json:"streakDays" yaml:"streak_days"`
}

// PaceAndStreak averages pages over the days present in daily and counts
// consecutive days with pages read, walking back from today. A day that
// is missing or has zero pages ends the streak, today included.
func PaceAndStreak(daily Daily, today Day) Pace {
	var pace Pace
	for _, pages := range daily {
		pace.TotalPages += pages
	}
	pace.ActiveDays = len(daily)
	if pace.ActiveDays > 0 {
		pace.AvgPagesPerDay = float64(pace.TotalPages) / float64(pace.ActiveDays)
	}

	if !today.Valid() {
		return pace
	}
	for day := today; daily[day] > 0; day = day.AddDays(-1) {
		pace.StreakDays++
	}
	return pace
}

// AvgDisplay renders the average with one decimal, or "0" when there are
// no days to average.
func (p Pace) AvgDisplay() string {
	if p.ActiveDays == 0 {
		return "0"
	}
	return decimal.NewFromInt(int64(p.TotalPages)).
		Div(decimal.NewFromInt(int64(p.ActiveDays))).
		StringFixed(1)
}

// PaceLabel is the "Avg pages/day" line.
func (p Pace) PaceLabel() string {
	return "Avg pages/day: " + p.AvgDisplay()
}

// StreakLabel is the "Reading streak" line.
func (p Pace) StreakLabel() string {
	unit := "days"
	if p.StreakDays == 1 {
		unit = "day"
	}
	return fmt.Sprintf("Reading streak: %d %s", p.StreakDays, unit)
}
