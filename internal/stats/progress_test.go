package stats

import (
	"testing"
	"time"
)

func TestSummarizeSeries(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	day3 := day1.AddDate(0, 0, 2)

	t.Run("empty series", func(t *testing.T) {
		if got := SummarizeSeries(nil); got != nil {
			t.Errorf("SummarizeSeries(nil) = %+v, want nil", got)
		}
	})

	t.Run("single point", func(t *testing.T) {
		p := SummarizeSeries([]SeriesPoint{{At: day1, Value: 10}})
		if p == nil {
			t.Fatal("expected a summary")
		}
		if p.Points != 1 || p.Delta != 0 || p.PerDay != 0 {
			t.Errorf("got %+v, want one flat point", p)
		}
	})

	t.Run("unsorted input", func(t *testing.T) {
		p := SummarizeSeries([]SeriesPoint{
			{At: day3, Value: 16},
			{At: day1, Value: 10},
		})
		if p == nil {
			t.Fatal("expected a summary")
		}
		if p.First.Value != 10 || p.Last.Value != 16 {
			t.Errorf("endpoints %v..%v, want 10..16", p.First.Value, p.Last.Value)
		}
		if p.Delta != 6 {
			t.Errorf("Delta = %v, want 6", p.Delta)
		}
		if p.PerDay != 3 {
			t.Errorf("PerDay = %v, want 3", p.PerDay)
		}
	})
}

func TestFormatDelta(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	summarize := func(first, last float64) *Progress {
		return SummarizeSeries([]SeriesPoint{
			{At: day1, Value: first},
			{At: day1.AddDate(0, 0, 1), Value: last},
		})
	}

	tests := []struct {
		name           string
		p              *Progress
		higherIsBetter bool
		want           string
	}{
		{"growth improves", summarize(10, 16), true, "up 6, improving"},
		{"growth worsens loss stats", summarize(10, 16), false, "up 6, worsening"},
		{"drop improves loss stats", summarize(10, 8), false, "down 2, improving"},
		{"drop worsens", summarize(10, 8), true, "down 2, worsening"},
		{"flat", summarize(10, 10), true, "no change"},
		{"nil summary", nil, true, "no change"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.FormatDelta(tt.higherIsBetter); got != tt.want {
				t.Errorf("FormatDelta = %q, want %q", got, tt.want)
			}
		})
	}
}
