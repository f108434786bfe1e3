package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/charts"
	"github.com/tovenaar/spirit-tracker/internal/stats"
	"github.com/tovenaar/spirit-tracker/internal/storage"
)

// openSnapshotDB opens the snapshot database, creating and migrating
// it on first use.
func openSnapshotDB(dbPath string) (*storage.DB, error) {
	config := storage.DefaultConfig(dbPath)
	config.AutoMigrate = true
	return storage.Open(config)
}

// runSnapshotCommand tallies the current stats and records them in
// the snapshot history.
func runSnapshotCommand(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	pruneDays := fs.Int("prune-days", 0, "Also delete snapshots older than this many days (0 keeps everything)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	cfg := loadConfig()
	catalog := mustBuildCatalog(cfg)
	blog, savePath := mustOpenLog(cfg)
	saveName := filepath.Base(savePath)

	results := stats.TallyAll(standardDefinitions(cfg, stats.CommonFilter{}), blog, catalog)

	db, err := openSnapshotDB(mustSnapshotDBPath(cfg))
	if err != nil {
		log.Fatalf("Error opening snapshot database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	repo := storage.NewSnapshotRepository(db)
	snapshots := storage.SnapshotsFromResults(saveName, time.Now(), results)
	if err := repo.Record(ctx, snapshots); err != nil {
		log.Fatalf("Error recording snapshots: %v", err)
	}
	fmt.Printf("✓ Recorded %d stat values for %s\n", len(snapshots), saveName)

	if *pruneDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -*pruneDays)
		deleted, err := repo.PruneOlderThan(ctx, cutoff)
		if err != nil {
			log.Fatalf("Error pruning snapshots: %v", err)
		}
		fmt.Printf("✓ Pruned %d snapshots older than %d days\n", deleted, *pruneDays)
	}
}

// runHistoryCommand summarizes how one stat moved across recorded
// snapshots, per player slot.
func runHistoryCommand(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	statID := fs.String("stat", "battles_won", "Stat ID to summarize (see 'export stats' for IDs)")
	player := fs.String("player", "", "Only this player (name or 1-based seat)")
	weeks := fs.Int("weeks", 0, "Restrict to the last N weeks (0 means all time)")
	chartPath := fs.String("chart", "", "Also render the series as a line chart to this HTML file")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	cfg := loadConfig()
	blog, savePath := mustOpenLog(cfg)
	saveName := filepath.Base(savePath)

	def := findDefinition(standardDefinitions(cfg, stats.CommonFilter{}), *statID)
	if def == nil {
		log.Fatalf("Unknown stat ID %q (try 'spirit-tracker export stats' to list IDs)", *statID)
	}

	var window stats.TimeRange
	if *weeks > 0 {
		window = stats.TimeRange{
			Start: stats.WeekRange(-(*weeks - 1)).Start,
			End:   stats.WeekRange(0).End,
		}
	}

	slots := []battlelog.PlayerRef{}
	if *player != "" {
		ref, err := resolvePlayer(blog, *player)
		if err != nil {
			log.Fatalf("Error resolving player: %v", err)
		}
		slots = append(slots, ref)
	} else {
		for seat := 0; seat < blog.PlayerCount(); seat++ {
			slots = append(slots, battlelog.Seat(seat))
		}
		slots = append(slots, battlelog.Shared)
	}

	db, err := openSnapshotDB(mustSnapshotDBPath(cfg))
	if err != nil {
		log.Fatalf("Error opening snapshot database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	repo := storage.NewSnapshotRepository(db)

	var (
		rows      []historyRow
		chartData []charts.SeriesData
	)
	for _, ref := range slots {
		seat := ref.SeatIndex()
		if ref.IsShared() {
			seat = storage.SharedSeat
		}
		points, err := repo.Series(ctx, saveName, def.ID, seat, window)
		if err != nil {
			log.Fatalf("Error loading snapshot series: %v", err)
		}
		name := blog.PlayerName(ref)
		rows = append(rows, historyRow{
			Name:     name,
			Progress: stats.SummarizeSeries(points),
		})
		if *chartPath != "" && len(points) > 0 {
			sd := charts.SeriesData{Name: name}
			for _, p := range points {
				sd.Points = append(sd.Points, charts.DataPoint{
					Label: p.At.Format("2006-01-02"),
					Value: p.Value,
				})
			}
			chartData = append(chartData, sd)
		}
	}

	displayHistory(def, window, rows)

	if *chartPath != "" {
		if len(chartData) == 0 {
			log.Fatalf("No snapshots recorded for %q; run 'spirit-tracker snapshot' first", def.ID)
		}
		chartConfig := charts.DefaultChartConfig()
		chartConfig.Title = def.Title
		chartConfig.Subtitle = "Snapshot history"
		if err := charts.RenderLineChart(chartData, chartConfig, *chartPath); err != nil {
			log.Fatalf("Error rendering chart: %v", err)
		}
		fmt.Printf("✓ Chart written to %s\n", *chartPath)
	}
}

// findDefinition returns the definition with the given ID, or nil.
func findDefinition(defs []*stats.Definition, id string) *stats.Definition {
	for _, def := range defs {
		if def.ID == id {
			return def
		}
	}
	return nil
}
