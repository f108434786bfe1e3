package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/charts"
	"github.com/tovenaar/spirit-tracker/internal/export"
	"github.com/tovenaar/spirit-tracker/internal/stats"
	"github.com/tovenaar/spirit-tracker/internal/version"
)

var (
	// Global flags, valid before any command
	configFile = flag.String("config", "", "Path to config file (default: ~/.spirit-tracker/config.toml)")
	dataDir    = flag.String("data-dir", "", "Override the configured data directory")
	debugMode  = flag.Bool("debug", false, "Enable verbose debug logging")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		return
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "stats":
		runStatsCommand(args)
	case "log":
		runLogCommand(args)
	case "catalog":
		runCatalogCommand(args)
	case "export":
		runExportCommand(args)
	case "chart":
		runChartCommand(args)
	case "snapshot":
		runSnapshotCommand(args)
	case "history":
		runHistoryCommand(args)
	case "backup":
		runBackupCommand(args)
	case "migrate":
		runMigrateCommand(args)
	case "migrate-save":
		runMigrateSaveCommand(args)
	case "watch":
		runWatchCommand(args)
	case "version":
		fmt.Printf("spirit-tracker %s\n", version.GetVersion())
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Spirit Tracker")
	fmt.Println("==============")
	fmt.Println()
	fmt.Println("Usage: spirit-tracker [flags] <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  stats        - Show the stat comparison table")
	fmt.Println("  log          - Manage battle log entries (list/add/win/loss/remove)")
	fmt.Println("  catalog      - Show catalog records built from the wiki sources")
	fmt.Println("  export       - Export stats, log, or catalog to CSV/JSON")
	fmt.Println("  chart        - Render an interactive comparison chart")
	fmt.Println("  snapshot     - Record the current stats in the snapshot history")
	fmt.Println("  history      - Show stat progression from recorded snapshots")
	fmt.Println("  backup       - Manage save-document backups (create/list/restore/verify)")
	fmt.Println("  migrate      - Run snapshot database migrations")
	fmt.Println("  migrate-save - Convert a legacy save document to the current schema")
	fmt.Println("  watch        - Watch the addendum directory and refresh stats on change")
	fmt.Println("  version      - Print the application version")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  spirit-tracker stats")
	fmt.Println("  spirit-tracker stats -kind spirit -affinity attack")
	fmt.Println("  spirit-tracker log add -kind boss -shared Master Hand")
	fmt.Println("  spirit-tracker log win -player Mario Goomba")
	fmt.Println("  spirit-tracker export stats -format csv -out stats.csv")
	fmt.Println("  spirit-tracker snapshot")
	fmt.Println("  spirit-tracker history -stat battles_won")
	fmt.Println()
}

// runStatsCommand renders the full stat table for the current save.
func runStatsCommand(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	kindStr := fs.String("kind", "", "Only count battles of this kind: spirit, fighter, boss")
	affinityStr := fs.String("affinity", "", "Only count entities with this affinity: neutral, attack, shield, grab")
	usageStr := fs.String("usage", "", "Only count entities with this usage type: fighter, primary, support, master")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	base, err := parseCommonFilter(*kindStr, *affinityStr, *usageStr)
	if err != nil {
		log.Fatalf("Invalid filter: %v", err)
	}

	cfg := loadConfig()
	catalog := mustBuildCatalog(cfg)
	blog, _ := mustOpenLog(cfg)

	results := stats.TallyAll(standardDefinitions(cfg, base), blog, catalog)
	displayResults(blog, results)
}

// runLogCommand dispatches the battle log subcommands.
func runLogCommand(args []string) {
	if len(args) < 1 {
		printLogUsage()
		os.Exit(1)
	}

	sub := args[0]
	rest := args[1:]

	switch sub {
	case "list", "ls":
		cfg := loadConfig()
		blog, _ := mustOpenLog(cfg)
		displayEntries(blog)

	case "add":
		fs := flag.NewFlagSet("log add", flag.ExitOnError)
		kindStr := fs.String("kind", "spirit", "Battle kind: spirit, fighter, boss")
		shared := fs.Bool("shared", false, "Track one shared loss counter instead of per-player counters")
		if err := fs.Parse(rest); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}
		name := strings.Join(fs.Args(), " ")
		if strings.TrimSpace(name) == "" {
			log.Fatal("log add requires an entity name")
		}

		kind, ok := parseKindName(*kindStr)
		if !ok {
			log.Fatalf("Unknown battle kind %q (expected spirit, fighter, or boss)", *kindStr)
		}

		cfg := loadConfig()
		blog, savePath := mustOpenLog(cfg)

		if blog.Get(name) != nil {
			fmt.Printf("%q is already in the battle log.\n", name)
			return
		}

		entry := battlelog.NewEntry(kind)
		entry.IsShared = *shared
		blog.AddOrUpdate(name, entry)
		writeLog(savePath, blog)
		fmt.Printf("✓ Added %q to the battle log (%s)\n", name, kind)

	case "win":
		fs := flag.NewFlagSet("log win", flag.ExitOnError)
		player := fs.String("player", "", "Winning player (name or 1-based seat)")
		if err := fs.Parse(rest); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}
		name := strings.Join(fs.Args(), " ")
		if strings.TrimSpace(name) == "" {
			log.Fatal("log win requires an entity name")
		}
		if *player == "" {
			log.Fatal("log win requires -player")
		}

		cfg := loadConfig()
		blog, savePath := mustOpenLog(cfg)

		winner, err := resolvePlayer(blog, *player)
		if err != nil {
			log.Fatalf("Error resolving player: %v", err)
		}
		if !blog.SetWinner(name, winner) {
			log.Fatalf("No battle log entry for %q", name)
		}
		writeLog(savePath, blog)
		fmt.Printf("✓ %s won against %q\n", blog.PlayerName(winner), name)

	case "loss":
		fs := flag.NewFlagSet("log loss", flag.ExitOnError)
		player := fs.String("player", "", "Losing player (name or 1-based seat); optional for shared entries")
		count := fs.Int("n", 1, "Number of losses to add (negative to correct)")
		if err := fs.Parse(rest); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}
		name := strings.Join(fs.Args(), " ")
		if strings.TrimSpace(name) == "" {
			log.Fatal("log loss requires an entity name")
		}

		cfg := loadConfig()
		blog, savePath := mustOpenLog(cfg)

		entry := blog.Get(name)
		if entry == nil {
			log.Fatalf("No battle log entry for %q", name)
		}
		if *player == "" && !entry.IsShared {
			log.Fatalf("%q tracks per-player losses; pass -player", name)
		}

		loser, err := resolvePlayer(blog, *player)
		if err != nil {
			log.Fatalf("Error resolving player: %v", err)
		}
		blog.UpdateLoss(name, loser, *count)
		writeLog(savePath, blog)
		fmt.Printf("✓ Recorded %+d loss(es) against %q (now %d)\n", *count, name, entry.Losses(loser))

	case "remove", "rm":
		name := strings.Join(rest, " ")
		if strings.TrimSpace(name) == "" {
			log.Fatal("log remove requires an entity name")
		}

		cfg := loadConfig()
		blog, savePath := mustOpenLog(cfg)

		if !blog.Remove(name) {
			fmt.Printf("%q is not in the battle log.\n", name)
			return
		}
		writeLog(savePath, blog)
		fmt.Printf("✓ Removed %q from the battle log\n", name)

	default:
		fmt.Printf("Unknown log command: %s\n\n", sub)
		printLogUsage()
		os.Exit(1)
	}
}

func printLogUsage() {
	fmt.Println("Usage: spirit-tracker log <command> [options] [name]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  list             List all battle log entries")
	fmt.Println("  add [flags] <name>     Add a new battle")
	fmt.Println("  win -player <p> <name>   Record a win")
	fmt.Println("  loss [flags] <name>    Record losses")
	fmt.Println("  remove <name>    Remove an entry")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  spirit-tracker log add -kind spirit Goomba")
	fmt.Println("  spirit-tracker log add -kind boss -shared Master Hand")
	fmt.Println("  spirit-tracker log loss -player Samus -n 2 Goomba")
	fmt.Println("  spirit-tracker log win -player Samus Goomba")
}

// runCatalogCommand shows the merged catalog, or one record when a
// name is given.
func runCatalogCommand(args []string) {
	cfg := loadConfig()
	catalog := mustBuildCatalog(cfg)

	name := strings.Join(args, " ")
	if strings.TrimSpace(name) != "" {
		rec := catalog.Lookup(name)
		if rec == nil {
			fmt.Printf("No catalog record for %q.\n", name)
			os.Exit(1)
		}
		displayRecord(rec)
		return
	}

	displayCatalogSummary(catalog)
}

// runExportCommand writes stats, the battle log, or the catalog to a
// file or stdout.
func runExportCommand(args []string) {
	if len(args) < 1 {
		printExportUsage()
		os.Exit(1)
	}

	what := args[0]
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	formatStr := fs.String("format", "csv", "Output format: csv or json")
	outPath := fs.String("out", "", "Output file (stdout when omitted)")
	pretty := fs.Bool("pretty", true, "Indent JSON output")
	overwrite := fs.Bool("overwrite", false, "Replace the output file if it exists")
	if err := fs.Parse(args[1:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	format, err := export.ParseFormat(*formatStr)
	if err != nil {
		log.Fatalf("Invalid format: %v", err)
	}

	cfg := loadConfig()

	var (
		data interface{}
		rows int
	)
	switch what {
	case "stats":
		catalog := mustBuildCatalog(cfg)
		blog, _ := mustOpenLog(cfg)
		results := stats.TallyAll(standardDefinitions(cfg, stats.CommonFilter{}), blog, catalog)
		statRows := export.StatRows(results)
		data, rows = statRows, len(statRows)
	case "log":
		blog, _ := mustOpenLog(cfg)
		entryRows := export.EntryRows(blog)
		data, rows = entryRows, len(entryRows)
	case "catalog":
		catalog := mustBuildCatalog(cfg)
		recordRows := export.RecordRows(catalog)
		data, rows = recordRows, len(recordRows)
	default:
		fmt.Printf("Unknown export target: %s\n\n", what)
		printExportUsage()
		os.Exit(1)
	}

	if *outPath == "" {
		if err := export.ExportToWriter(os.Stdout, format, data, *pretty); err != nil {
			log.Fatalf("Error exporting: %v", err)
		}
		return
	}

	exporter := export.NewExporter(export.Options{
		Format:     format,
		FilePath:   *outPath,
		PrettyJSON: *pretty,
		Overwrite:  *overwrite,
	})
	if err := exporter.Export(data); err != nil {
		log.Fatalf("Error exporting: %v", err)
	}
	fmt.Printf("✓ Exported %d rows to %s\n", rows, *outPath)
}

func printExportUsage() {
	fmt.Println("Usage: spirit-tracker export <stats|log|catalog> [flags]")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  spirit-tracker export stats -format csv -out stats.csv")
	fmt.Println("  spirit-tracker export log -format json -out battles.json -overwrite")
	fmt.Println("  spirit-tracker export catalog")
}

// runChartCommand renders the player comparison as a grouped bar
// chart.
func runChartCommand(args []string) {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	outPath := fs.String("out", "spirit-stats.html", "Output HTML file")
	statIDs := fs.String("stats", "battles_won,solo_wins,savior_wins,losses_total", "Comma-separated stat IDs to chart")
	openBrowser := fs.Bool("open", false, "Open the chart in the default browser")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	cfg := loadConfig()
	catalog := mustBuildCatalog(cfg)
	blog, _ := mustOpenLog(cfg)

	results := stats.TallyAll(standardDefinitions(cfg, stats.CommonFilter{}), blog, catalog)

	wanted := make(map[string]bool)
	for _, id := range strings.Split(*statIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = true
		}
	}

	series := make([]charts.SeriesData, blog.PlayerCount())
	for seat := range series {
		series[seat].Name = blog.PlayerName(battlelog.Seat(seat))
	}
	for _, res := range results {
		if !wanted[res.ID] {
			continue
		}
		for _, slot := range res.PlayerSlots() {
			seat := slot.Slot.SeatIndex()
			if seat < 0 || seat >= len(series) {
				continue
			}
			series[seat].Points = append(series[seat].Points, charts.DataPoint{
				Label: res.Title,
				Value: slot.Value,
			})
		}
	}

	chartConfig := charts.DefaultChartConfig()
	chartConfig.Title = "Player Comparison"
	chartConfig.Subtitle = fmt.Sprintf("%d battles logged", len(blog.Keys()))

	if err := charts.RenderBarChart(series, chartConfig, *outPath); err != nil {
		log.Fatalf("Error rendering chart: %v", err)
	}
	fmt.Printf("✓ Chart written to %s\n", *outPath)

	if *openBrowser {
		if err := charts.OpenInBrowser(*outPath); err != nil {
			log.Printf("Warning: could not open browser: %v", err)
		}
	}
}
