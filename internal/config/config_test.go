package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Data.SaveFile != "save.json" {
		t.Errorf("Expected save file 'save.json', got %q", cfg.Data.SaveFile)
	}
	if cfg.Data.SnapshotDB != "snapshots.db" {
		t.Errorf("Expected snapshot db 'snapshots.db', got %q", cfg.Data.SnapshotDB)
	}
	if cfg.Stats.SaviorMinLosses != 3 {
		t.Errorf("Expected savior minimum 3, got %d", cfg.Stats.SaviorMinLosses)
	}
	if cfg.Stats.CommonalityRank != 1 || cfg.Stats.CommonalityMinCount != 1 {
		t.Errorf("Unexpected commonality defaults: %+v", cfg.Stats)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}

	debounce, err := cfg.GetDebounce()
	if err != nil {
		t.Fatalf("GetDebounce failed: %v", err)
	}
	if debounce != 2*time.Second {
		t.Errorf("Expected 2s debounce, got %v", debounce)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Data.SaveFile != "save.json" {
		t.Errorf("Expected defaults for missing file, got %+v", cfg.Data)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Players.Names = []string{"Mario", "Samus"}
	cfg.Sources.Roster = "/data/roster.txt"
	cfg.Sources.SpiritBattles = "/data/spirit-battles.txt"
	cfg.Stats.SaviorMinLosses = 5
	cfg.Stats.ExcludedSeries = []string{"Others"}
	cfg.Watch.Debounce = "500ms"
	cfg.Backup.Encrypt = true

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if len(loaded.Players.Names) != 2 || loaded.Players.Names[0] != "Mario" {
		t.Errorf("Players not round-tripped: %+v", loaded.Players)
	}
	if loaded.Sources.Roster != "/data/roster.txt" {
		t.Errorf("Sources not round-tripped: %+v", loaded.Sources)
	}
	if loaded.Stats.SaviorMinLosses != 5 {
		t.Errorf("Stats not round-tripped: %+v", loaded.Stats)
	}
	if len(loaded.Stats.ExcludedSeries) != 1 || loaded.Stats.ExcludedSeries[0] != "Others" {
		t.Errorf("Excluded series not round-tripped: %+v", loaded.Stats.ExcludedSeries)
	}
	if loaded.Watch.Debounce != "500ms" {
		t.Errorf("Watch not round-tripped: %+v", loaded.Watch)
	}
	if !loaded.Backup.Encrypt {
		t.Errorf("Backup not round-tripped: %+v", loaded.Backup)
	}
}

func TestLoadFromRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("Expected parse error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "bad debounce", mutate: func(c *Config) { c.Watch.Debounce = "soon" }, wantErr: true},
		{name: "bad backup interval", mutate: func(c *Config) { c.Backup.Interval = "daily" }, wantErr: true},
		{name: "empty backup interval ok", mutate: func(c *Config) { c.Backup.Interval = "" }},
		{name: "negative savior minimum", mutate: func(c *Config) { c.Stats.SaviorMinLosses = -1 }, wantErr: true},
		{name: "negative rank", mutate: func(c *Config) { c.Stats.CommonalityRank = -2 }, wantErr: true},
		{name: "negative min count", mutate: func(c *Config) { c.Stats.CommonalityMinCount = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestGetBackupInterval(t *testing.T) {
	cfg := DefaultConfig()

	interval, err := cfg.GetBackupInterval()
	if err != nil {
		t.Fatalf("GetBackupInterval failed: %v", err)
	}
	if interval != 24*time.Hour {
		t.Errorf("Expected 24h, got %v", interval)
	}

	cfg.Backup.Interval = ""
	interval, err = cfg.GetBackupInterval()
	if err != nil {
		t.Fatalf("GetBackupInterval failed for empty interval: %v", err)
	}
	if interval != 0 {
		t.Errorf("Expected zero for empty interval, got %v", interval)
	}
}

func TestResolvedPaths(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "tracker-data")

	cfg := DefaultConfig()
	cfg.Data.Dir = dataDir

	savePath, err := cfg.SavePath()
	if err != nil {
		t.Fatalf("SavePath failed: %v", err)
	}
	if savePath != filepath.Join(dataDir, "save.json") {
		t.Errorf("Unexpected save path: %s", savePath)
	}

	dbPath, err := cfg.SnapshotDBPath()
	if err != nil {
		t.Fatalf("SnapshotDBPath failed: %v", err)
	}
	if dbPath != filepath.Join(dataDir, "snapshots.db") {
		t.Errorf("Unexpected snapshot db path: %s", dbPath)
	}

	// DataDir creates the directory on resolution.
	if _, err := os.Stat(dataDir); err != nil {
		t.Errorf("Data directory not created: %v", err)
	}
}
