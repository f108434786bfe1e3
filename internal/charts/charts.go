// Package charts renders tracker data as interactive HTML charts:
// grouped bars for player-vs-player stat comparisons and lines for
// snapshot history.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartConfig holds presentation settings shared by every chart kind.
type ChartConfig struct {
	Title      string
	Subtitle   string
	XAxisLabel string
	YAxisLabel string
	Width      string // e.g. "900px"
	Height     string // e.g. "500px"
	Theme      string
	ShowLegend bool
	Smooth     bool // smooth lines, ignored by bar charts
	Colors     []string
}

// DefaultChartConfig returns the default chart presentation.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Smooth:     true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint is one labeled value on a chart axis.
type DataPoint struct {
	Label string
	Value float64
}

// SeriesData is one named series, typically one player. Every series
// on a chart must carry its points in the same label order; the first
// series defines the X axis.
type SeriesData struct {
	Name   string
	Points []DataPoint
}

// RenderBarChart writes a grouped bar chart comparing the series side
// by side, one bar group per label.
func RenderBarChart(series []SeriesData, config ChartConfig, outputPath string) error {
	if len(series) == 0 {
		return fmt.Errorf("no data series provided")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(config)...)
	bar.SetXAxis(xLabels(series[0]))

	for _, s := range series {
		data := make([]opts.BarData, len(s.Points))
		for i, point := range s.Points {
			data[i] = opts.BarData{Value: point.Value}
		}
		bar.AddSeries(s.Name, data).
			SetSeriesOptions(
				charts.WithLabelOpts(opts.Label{
					Show: opts.Bool(false),
				}),
			)
	}

	return renderToFile(bar, outputPath)
}

// RenderLineChart writes a line chart with one line per series, for
// values tracked over time.
func RenderLineChart(series []SeriesData, config ChartConfig, outputPath string) error {
	if len(series) == 0 {
		return fmt.Errorf("no data series provided")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(config)...)
	line.SetXAxis(xLabels(series[0]))

	for _, s := range series {
		data := make([]opts.LineData, len(s.Points))
		for i, point := range s.Points {
			data[i] = opts.LineData{Value: point.Value}
		}
		line.AddSeries(s.Name, data).
			SetSeriesOptions(
				charts.WithLineChartOpts(opts.LineChart{
					Smooth: opts.Bool(config.Smooth),
				}),
				charts.WithLabelOpts(opts.Label{
					Show: opts.Bool(false),
				}),
			)
	}

	return renderToFile(line, outputPath)
}

func globalOptions(config ChartConfig) []charts.GlobalOpts {
	options := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: config.XAxisLabel,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: config.YAxisLabel,
		}),
	}
	if len(config.Colors) > 0 {
		options = append(options, charts.WithColorsOpts(opts.Colors(config.Colors)))
	}
	return options
}

func xLabels(s SeriesData) []string {
	labels := make([]string, len(s.Points))
	for i, point := range s.Points {
		labels[i] = point.Label
	}
	return labels
}

type renderable interface {
	Render(w io.Writer) error
}

func renderToFile(chart renderable, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
