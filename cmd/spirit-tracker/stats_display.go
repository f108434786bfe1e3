package main

import (
	"fmt"
	"strings"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/stats"
)

// displayResults renders the stat comparison table with one column
// per player plus the shared column.
func displayResults(blog *battlelog.Log, results []*stats.Result) {
	if len(results) == 0 {
		fmt.Println("No statistics to display.")
		return
	}

	fmt.Println()
	fmt.Println("Statistics")
	fmt.Println("==========")
	fmt.Println()

	header := fmt.Sprintf("%-34s", "Stat")
	for seat := 0; seat < blog.PlayerCount(); seat++ {
		header += fmt.Sprintf("  %12s", blog.PlayerName(battlelog.Seat(seat)))
	}
	header += fmt.Sprintf("  %12s", "Shared")
	fmt.Println(header)
	fmt.Println(strings.Repeat("-", len(header)))

	for _, res := range results {
		row := fmt.Sprintf("%-34s", res.Title)
		for _, slot := range res.PlayerSlots() {
			row += fmt.Sprintf("  %12s", slot.Display)
		}
		row += fmt.Sprintf("  %12s", res.SharedSlot().Display)
		fmt.Println(row)
	}
	fmt.Println()
}

// historyRow pairs a player slot with its snapshot movement.
type historyRow struct {
	Name     string
	Progress *stats.Progress
}

// displayHistory renders how one stat moved across snapshots.
func displayHistory(def *stats.Definition, window stats.TimeRange, rows []historyRow) {
	title := fmt.Sprintf("History: %s", def.Title)
	fmt.Println()
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", len(title)))
	if !window.Start.IsZero() {
		fmt.Printf("Period: %s\n", window.FormatPeriod())
	}
	fmt.Println()

	for _, row := range rows {
		if row.Progress == nil {
			fmt.Printf("%s: no snapshots recorded\n\n", row.Name)
			continue
		}
		p := row.Progress
		fmt.Printf("%s: %s -> %s (%s)\n",
			row.Name,
			stats.FormatValue(p.First.Value),
			stats.FormatValue(p.Last.Value),
			p.FormatDelta(def.HigherIsBetter))
		fmt.Printf("  %d snapshot(s), %s to %s",
			p.Points,
			p.First.At.Format("2006-01-02"),
			p.Last.At.Format("2006-01-02"))
		if p.PerDay != 0 {
			fmt.Printf(", %+.2f/day", p.PerDay)
		}
		fmt.Println()
		fmt.Println()
	}
}
