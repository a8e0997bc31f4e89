// Package completion decides whether a goal is done. Everything here is a
// pure function of the goal's own fields, so the same inputs always give
// the same answer; "did this update just complete the goal" is computed by
// running the same evaluation before and after the update.
package completion

import (
	"math"
	"time"

	"github.com/arnold/streaks-api/internal/models"
)

// DateLayout is the YYYY-MM-DD form progress dates are stored in.
const DateLayout = "2006-01-02"

// Midnight normalizes to midnight UTC of the same calendar day. Date
// comparisons only care about the calendar day, and pinning to UTC keeps
// day arithmetic exact across DST transitions.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TotalDays is the inclusive day count of the goal's range. A single-day
// goal has exactly 1.
func TotalDays(start, end time.Time) int {
	days := int(Midnight(end).Sub(Midnight(start)).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// ValidCount counts the progress dates that fall inside the goal's range.
// Dates outside the range stay in the set (a shrunk end date must not
// destroy history) but never count toward completion. Unparseable entries
// are ignored.
func ValidCount(g models.Goal) int {
	start := Midnight(g.StartDate)
	end := Midnight(g.EndDate)

	count := 0
	for _, ds := range g.Progress {
		d, err := time.ParseInLocation(DateLayout, ds, time.UTC)
		if err != nil {
			continue
		}
		if !d.Before(start) && !d.After(end) {
			count++
		}
	}
	return count
}

// Required is the number of valid progress dates the goal needs to be
// complete. Without a frequency every day in the range must be marked.
// With one, the target scales the day count by the frequency: per-week
// and per-month targets divide by exactly 7 and 30 and round. The
// divisors are deliberate approximations, not calendar math; changing
// them changes which goals count as done.
func Required(g models.Goal) int {
	totalDays := TotalDays(g.StartDate, g.EndDate)
	f := g.Frequency
	if f == nil {
		return totalDays
	}
	switch f.Period {
	case models.PeriodDay:
		return f.Count * totalDays
	case models.PeriodWeek:
		return int(math.Round(float64(f.Count) * float64(totalDays) / 7))
	case models.PeriodMonth:
		return int(math.Round(float64(f.Count) * float64(totalDays) / 30))
	}
	return totalDays
}

// IsComplete reports whether the goal has met its target.
func IsComplete(g models.Goal) bool {
	return ValidCount(g) >= Required(g)
}

// JustCompleted reports whether replacing oldProgress with newProgress
// takes the goal from not-complete to complete. It evaluates IsComplete
// on both sets rather than diffing them, so it can never disagree with
// the displayed completion state.
func JustCompleted(g models.Goal, oldProgress, newProgress []string) bool {
	before := g
	before.Progress = oldProgress
	after := g
	after.Progress = newProgress
	return !IsComplete(before) && IsComplete(after)
}
