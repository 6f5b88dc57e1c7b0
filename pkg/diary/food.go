package diary

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrEntryNotFound is returned when no food entry exists for an id.
	ErrEntryNotFound = errors.New("food entry not found")

	// ErrInvalidEntry is returned when a food entry fails validation.
	ErrInvalidEntry = errors.New("invalid food entry")
)

// Food is a single logged meal or snack.
type Food struct {
	ID        int64
	Name      string
	Calories  float64
	Protein   float64
	Carbs     float64
	Fats      float64
	CreatedAt time.Time
}

// Validate checks that the entry can be stored.
func (f Food) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}
	for _, v := range []struct {
		field string
		value float64
	}{
		{"calories", f.Calories},
		{"protein", f.Protein},
		{"carbs", f.Carbs},
		{"fats", f.Fats},
	} {
		if v.value < 0 || math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidEntry, v.field, v.value)
		}
	}
	if f.CreatedAt.IsZero() {
		return fmt.Errorf("%w: created_at is required", ErrInvalidEntry)
	}
	return nil
}

// DailyStats aggregates nutrition totals over a time range.
// TotalCalories is truncated to a whole number, the macros are not.
type DailyStats struct {
	TotalCalories int
	Protein       float64
	Carbs         float64
	Fat           float64
}

// Sum folds entries into a DailyStats value.
func Sum(entries []Food) DailyStats {
	var cal float64
	var stats DailyStats
	for _, f := range entries {
		cal += f.Calories
		stats.Protein += f.Protein
		stats.Carbs += f.Carbs
		stats.Fat += f.Fats
	}
	stats.TotalCalories = int(cal)
	return stats
}

// TimeRange is an inclusive [Start, End] interval.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range, bounds included.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// DayRange returns the range covering the calendar day of day in loc,
// from local midnight to one millisecond before the next midnight.
// A nil loc means time.Local.
func DayRange(day time.Time, loc *time.Location) TimeRange {
	if loc == nil {
		loc = time.Local
	}
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	next := start.AddDate(0, 0, 1)
	return TimeRange{Start: start, End: next.Add(-time.Millisecond)}
}
