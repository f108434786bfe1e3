package stats

import (
	"fmt"
	"time"
)

// TimeRange is a half-open [Start, End) window used to slice snapshot
// history.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// WeekRange returns the Monday-to-Sunday week at the given offset from
// now. Offset 0 is the current week, -1 the week before.
func WeekRange(offset int) TimeRange {
	return WeekRangeFrom(time.Now(), offset)
}

// WeekRangeFrom returns the week containing reference, shifted by
// offset weeks. Weeks start on Monday.
func WeekRangeFrom(reference time.Time, offset int) TimeRange {
	weekday := int(reference.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := reference.AddDate(0, 0, -weekday+1).Truncate(24 * time.Hour)
	weekStart = weekStart.AddDate(0, 0, offset*7)
	return TimeRange{Start: weekStart, End: weekStart.AddDate(0, 0, 7)}
}

// MonthRange returns the calendar month at the given offset from now.
func MonthRange(offset int) TimeRange {
	return MonthRangeFrom(time.Now(), offset)
}

// MonthRangeFrom returns the month containing reference, shifted by
// offset months.
func MonthRangeFrom(reference time.Time, offset int) TimeRange {
	monthStart := time.Date(reference.Year(), reference.Month(), 1, 0, 0, 0, 0, reference.Location())
	monthStart = monthStart.AddDate(0, offset, 0)
	return TimeRange{Start: monthStart, End: monthStart.AddDate(0, 1, 0)}
}

// Contains reports whether t falls inside the window.
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && t.Before(tr.End)
}

// FormatPeriod renders the window for display. End is exclusive, so
// the shown last day is one before it.
func (tr TimeRange) FormatPeriod() string {
	start := tr.Start.Format("2006-01-02")
	end := tr.End.AddDate(0, 0, -1).Format("2006-01-02")
	return fmt.Sprintf("%s to %s", start, end)
}

// WeekLabel describes a week offset for display.
func WeekLabel(offset int) string {
	switch offset {
	case 0:
		return "This Week"
	case -1:
		return "Last Week"
	default:
		if offset < 0 {
			return fmt.Sprintf("%d Weeks Ago", -offset)
		}
		return fmt.Sprintf("%d Weeks From Now", offset)
	}
}

// MonthLabel describes a month offset for display.
func MonthLabel(offset int) string {
	switch offset {
	case 0:
		return "This Month"
	case -1:
		return "Last Month"
	default:
		if offset < 0 {
			return fmt.Sprintf("%d Months Ago", -offset)
		}
		return fmt.Sprintf("%d Months From Now", offset)
	}
}
