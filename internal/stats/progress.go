package stats

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// SeriesPoint is one recorded value of a stat at a moment in time.
type SeriesPoint struct {
	At    time.Time
	Value float64
}

// Progress summarizes how a stat moved across a snapshot series.
type Progress struct {
	Points int
	First  SeriesPoint
	Last   SeriesPoint
	Delta  float64
	PerDay float64
}

// SummarizeSeries reduces a snapshot series to its overall movement.
// Points may arrive in any order; they are sorted by time here.
// Returns nil for an empty series.
func SummarizeSeries(points []SeriesPoint) *Progress {
	if len(points) == 0 {
		return nil
	}
	sorted := make([]SeriesPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	first := sorted[0]
	last := sorted[len(sorted)-1]
	p := &Progress{
		Points: len(sorted),
		First:  first,
		Last:   last,
		Delta:  last.Value - first.Value,
	}
	if days := last.At.Sub(first.At).Hours() / 24; days > 0 {
		p.PerDay = p.Delta / days
	}
	return p
}

// FormatDelta renders the movement with its direction, honoring
// whether growth is an improvement for this stat.
func (p *Progress) FormatDelta(higherIsBetter bool) string {
	if p == nil || p.Delta == 0 {
		return "no change"
	}
	direction := "up"
	if p.Delta < 0 {
		direction = "down"
	}
	trend := "improving"
	if (p.Delta > 0) != higherIsBetter {
		trend = "worsening"
	}
	return fmt.Sprintf("%s %s, %s", direction, FormatValue(math.Abs(p.Delta)), trend)
}
