package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/config"
	"github.com/tovenaar/spirit-tracker/internal/document"
	"github.com/tovenaar/spirit-tracker/internal/ingest"
	"github.com/tovenaar/spirit-tracker/internal/spirit"
	"github.com/tovenaar/spirit-tracker/internal/stats"
)

// loadConfig loads and validates the configuration, applying global
// flag overrides. Configuration problems are fatal.
func loadConfig() *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// newLogger builds the structured logger used by catalog loading and
// the watcher.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if *debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildCatalog merges every configured source into a fresh catalog:
// roster first, then the two battle tables, then addenda. Scanner
// warnings are logged and skipped; a missing configured file is fatal
// to the caller.
func buildCatalog(cfg *config.Config, logger *slog.Logger) (*spirit.Catalog, error) {
	catalog := spirit.NewCatalog()

	merge := func(records []ingest.ParsedRecord, warnings []ingest.Warning) {
		for _, pr := range records {
			catalog.Put(pr.Key, pr.Record)
		}
		for _, w := range warnings {
			logger.Warn("Skipped source data", "source", w.Source, "line", w.Line, "reason", w.Msg)
		}
	}

	if cfg.Sources.Roster != "" {
		src, err := ingest.ReadSource(cfg.Sources.Roster)
		if err != nil {
			return nil, fmt.Errorf("roster source: %w", err)
		}
		merge(ingest.ScanRoster(src))
	}

	if cfg.Sources.SpiritBattles != "" {
		src, err := ingest.ReadSource(cfg.Sources.SpiritBattles)
		if err != nil {
			return nil, fmt.Errorf("spirit battle source: %w", err)
		}
		merge(ingest.ScanBattles(src, catalog, ingest.SpiritBattles()))
	}

	if cfg.Sources.FighterBattles != "" {
		src, err := ingest.ReadSource(cfg.Sources.FighterBattles)
		if err != nil {
			return nil, fmt.Errorf("fighter battle source: %w", err)
		}
		merge(ingest.ScanBattles(src, catalog, ingest.FighterBattles()))
	}

	if cfg.Sources.AddendumDir != "" {
		records, warnings, err := ingest.LoadAddenda(cfg.Sources.AddendumDir)
		if err != nil {
			return nil, fmt.Errorf("addenda: %w", err)
		}
		merge(records, warnings)
	}

	catalog.Finalize()
	logger.Debug("Catalog built", "records", catalog.Len())
	return catalog, nil
}

// mustBuildCatalog is buildCatalog with fatal error handling for
// commands that cannot run without one.
func mustBuildCatalog(cfg *config.Config) *spirit.Catalog {
	catalog, err := buildCatalog(cfg, newLogger())
	if err != nil {
		log.Fatalf("Error building catalog: %v", err)
	}
	return catalog
}

// openLog loads the battle log from the save document, returning a
// fresh log when no save exists yet. A save that had to be repaired
// is written back immediately so disk matches memory.
func openLog(cfg *config.Config) (*battlelog.Log, string, error) {
	savePath, err := cfg.SavePath()
	if err != nil {
		return nil, "", err
	}

	blog := battlelog.NewLog(cfg.Players.Names)

	raw, err := os.ReadFile(savePath)
	if os.IsNotExist(err) {
		return blog, savePath, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read save document: %w", err)
	}

	version, err := battlelog.DetectVersion(raw)
	if err != nil {
		return nil, "", fmt.Errorf("inspect save document: %w", err)
	}
	if version < battlelog.SchemaVersion {
		return nil, "", fmt.Errorf("save document %s uses legacy schema version %d: run 'spirit-tracker migrate-save' first", savePath, version)
	}

	clean, err := document.Read(savePath, blog)
	if err != nil {
		return nil, "", err
	}
	if !clean {
		if err := document.Write(savePath, blog); err != nil {
			return nil, "", fmt.Errorf("write repaired save document: %w", err)
		}
		log.Printf("Repaired save document: %s", savePath)
	}
	return blog, savePath, nil
}

// mustOpenLog is openLog with fatal error handling.
func mustOpenLog(cfg *config.Config) (*battlelog.Log, string) {
	blog, savePath, err := openLog(cfg)
	if err != nil {
		log.Fatalf("Error opening battle log: %v", err)
	}
	return blog, savePath
}

// mustSavePath resolves the save document path, fatally when the data
// directory cannot be created.
func mustSavePath(cfg *config.Config) string {
	path, err := cfg.SavePath()
	if err != nil {
		log.Fatalf("Error resolving save document path: %v", err)
	}
	return path
}

// mustSnapshotDBPath resolves the snapshot database path.
func mustSnapshotDBPath(cfg *config.Config) string {
	path, err := cfg.SnapshotDBPath()
	if err != nil {
		log.Fatalf("Error resolving snapshot database path: %v", err)
	}
	return path
}

// writeLog persists the battle log, fatally on failure since a lost
// mutation is worse than an aborted command.
func writeLog(savePath string, blog *battlelog.Log) {
	if err := document.Write(savePath, blog); err != nil {
		log.Fatalf("Error writing save document: %v", err)
	}
}

// standardDefinitions assembles the full stat set in display order.
// Every definition gets its own filter value since commonality stats
// mutate theirs when they install a key function.
func standardDefinitions(cfg *config.Config, base stats.CommonFilter) []*stats.Definition {
	common := func() stats.Filter {
		f := base
		return &f
	}
	seriesFilter := func() *stats.CommonalityFilter {
		return &stats.CommonalityFilter{CommonFilter: base, Exclude: cfg.Stats.ExcludedSeries}
	}
	abilityFilter := func() *stats.CommonalityFilter {
		return &stats.CommonalityFilter{CommonFilter: base}
	}

	most := stats.CommonalityOptions{
		MostCommon: true,
		Rank:       cfg.Stats.CommonalityRank,
		MinCount:   cfg.Stats.CommonalityMinCount,
	}
	least := most
	least.MostCommon = false

	return []*stats.Definition{
		stats.BattlesTotal(common()),
		stats.BattlesUnique(common()),
		stats.BattlesWon(common(), false),
		stats.BattlesWon(common(), true),
		stats.SoloWins(common(), false),
		stats.SoloWins(common(), true),
		stats.SaviorWins(common(), cfg.Stats.SaviorMinLosses, false),
		stats.SaviorWins(common(), cfg.Stats.SaviorMinLosses, true),
		stats.LossesTotal(common()),
		stats.LossesUnique(common()),
		stats.PowerWon(common(), false),
		stats.PowerWon(common(), true),
		stats.RankWon(common(), false),
		stats.RankWon(common(), true),
		stats.CommonSeries(seriesFilter(), most),
		stats.CommonSeries(seriesFilter(), least),
		stats.CommonAbility(abilityFilter(), most),
		stats.CommonAbility(abilityFilter(), least),
		stats.ToughestBattle(common(), stats.CommonalityOptions{MostCommon: true, Rank: cfg.Stats.CommonalityRank, MinCount: 1}),
	}
}

// parseCommonFilter builds the shared stat filter from command-line
// strings; empty strings leave checks unset.
func parseCommonFilter(kindStr, affinityStr, usageStr string) (stats.CommonFilter, error) {
	var base stats.CommonFilter

	if kindStr != "" {
		kind, ok := parseKindName(kindStr)
		if !ok {
			return base, fmt.Errorf("unknown battle kind %q (expected spirit, fighter, or boss)", kindStr)
		}
		base.Kind = &kind
	}

	if affinityStr != "" {
		affinity, ok := parseAffinityName(affinityStr)
		if !ok {
			return base, fmt.Errorf("unknown affinity %q (expected neutral, attack, shield, or grab)", affinityStr)
		}
		base.Affinity = &affinity
	}

	if usageStr != "" {
		usage, ok := parseUsageName(usageStr)
		if !ok {
			return base, fmt.Errorf("unknown usage type %q (expected fighter, primary, support, or master)", usageStr)
		}
		base.Usage = &usage
	}

	return base, nil
}

func parseKindName(s string) (battlelog.Kind, bool) {
	for _, k := range []battlelog.Kind{battlelog.KindSpirit, battlelog.KindFighter, battlelog.KindBoss} {
		if strings.EqualFold(s, k.String()) {
			return k, true
		}
	}
	return 0, false
}

func parseAffinityName(s string) (spirit.Affinity, bool) {
	for _, a := range []spirit.Affinity{spirit.AffinityNeutral, spirit.AffinityAttack, spirit.AffinityShield, spirit.AffinityGrab} {
		if strings.EqualFold(s, a.String()) {
			return a, true
		}
	}
	return 0, false
}

func parseUsageName(s string) (spirit.UsageType, bool) {
	for _, u := range []spirit.UsageType{spirit.UsageFighter, spirit.UsagePrimary, spirit.UsageSupport, spirit.UsageMaster} {
		if strings.EqualFold(s, u.String()) {
			return u, true
		}
	}
	return 0, false
}

// resolvePlayer maps a -player argument to a seat: a 1-based seat
// number or a configured player name, case-insensitively.
func resolvePlayer(blog *battlelog.Log, s string) (battlelog.PlayerRef, error) {
	if s == "" {
		return battlelog.Shared, nil
	}

	for i, name := range blog.Settings.PlayerNames {
		if strings.EqualFold(s, name) {
			return battlelog.Seat(i), nil
		}
	}

	var seat int
	if _, err := fmt.Sscanf(s, "%d", &seat); err == nil {
		if seat >= 1 && seat <= blog.PlayerCount() {
			return battlelog.Seat(seat - 1), nil
		}
		return battlelog.Shared, fmt.Errorf("seat %d out of range (log has %d players)", seat, blog.PlayerCount())
	}

	return battlelog.Shared, fmt.Errorf("unknown player %q", s)
}
