package charts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func comparisonSeries() []SeriesData {
	return []SeriesData{
		{
			Name: "Mario",
			Points: []DataPoint{
				{Label: "Battles Won", Value: 12},
				{Label: "Solo Wins", Value: 4},
			},
		},
		{
			Name: "Samus",
			Points: []DataPoint{
				{Label: "Battles Won", Value: 9},
				{Label: "Solo Wins", Value: 6},
			},
		},
	}
}

func TestRenderBarChart(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "comparison.html")

	config := DefaultChartConfig()
	config.Title = "Player Comparison"

	if err := RenderBarChart(comparisonSeries(), config, outputPath); err != nil {
		t.Fatalf("RenderBarChart failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read chart file: %v", err)
	}

	html := string(content)
	for _, want := range []string{"echarts", "Player Comparison", "Mario", "Samus", "Battles Won"} {
		if !strings.Contains(html, want) {
			t.Errorf("Chart HTML missing %q", want)
		}
	}
}

func TestRenderLineChart(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "history.html")

	series := []SeriesData{
		{
			Name: "Mario",
			Points: []DataPoint{
				{Label: "2026-08-01", Value: 10},
				{Label: "2026-08-08", Value: 14},
				{Label: "2026-08-15", Value: 19},
			},
		},
	}

	config := DefaultChartConfig()
	config.Title = "Battles Won Over Time"

	if err := RenderLineChart(series, config, outputPath); err != nil {
		t.Fatalf("RenderLineChart failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read chart file: %v", err)
	}

	html := string(content)
	for _, want := range []string{"echarts", "Battles Won Over Time", "2026-08-08"} {
		if !strings.Contains(html, want) {
			t.Errorf("Chart HTML missing %q", want)
		}
	}
}

func TestRenderRejectsEmptySeries(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.html")
	config := DefaultChartConfig()

	if err := RenderBarChart(nil, config, outputPath); err == nil {
		t.Error("RenderBarChart accepted empty series")
	}
	if err := RenderLineChart(nil, config, outputPath); err == nil {
		t.Error("RenderLineChart accepted empty series")
	}
}
