// Package config loads and persists the tracker's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Data locations
	Data DataConfig `toml:"data"`

	// Player roster for new battle logs
	Players PlayersConfig `toml:"players"`

	// Wiki-markup source files
	Sources SourcesConfig `toml:"sources"`

	// Stat tally defaults
	Stats StatsConfig `toml:"stats"`

	// Watch-mode settings
	Watch WatchConfig `toml:"watch"`

	// Backup settings
	Backup BackupConfig `toml:"backup"`
}

// DataConfig locates the files the tracker owns.
type DataConfig struct {
	Dir        string `toml:"dir"`         // Data directory ("" = ~/.spirit-tracker)
	SaveFile   string `toml:"save_file"`   // Save document file name
	SnapshotDB string `toml:"snapshot_db"` // Snapshot history database file name
}

// PlayersConfig names the seats of a freshly created battle log.
// Existing save documents keep the names they were created with.
type PlayersConfig struct {
	Names []string `toml:"names"` // Seat order, first name is seat 1
}

// SourcesConfig points at the wiki-markup exports and the addendum
// directory.
type SourcesConfig struct {
	Roster         string `toml:"roster"`          // Roster table markup
	SpiritBattles  string `toml:"spirit_battles"`  // Spirit battle table markup
	FighterBattles string `toml:"fighter_battles"` // Fighter battle table markup
	AddendumDir    string `toml:"addendum_dir"`    // Directory of *.toml overrides
}

// StatsConfig carries the tunable stat parameters.
type StatsConfig struct {
	SaviorMinLosses     int      `toml:"savior_min_losses"`     // Losses every other player needs for a savior win
	CommonalityRank     int      `toml:"commonality_rank"`      // 1 = most/least common, 2 = runner-up
	CommonalityMinCount int      `toml:"commonality_min_count"` // Keys below this count are skipped
	ExcludedSeries      []string `toml:"excluded_series"`       // Series left out of commonality rankings
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce string `toml:"debounce"` // Reload debounce interval (e.g., "2s")
}

// BackupConfig controls save-document backups. The encryption
// passphrase is never stored here; it comes from the command line or
// the environment.
type BackupConfig struct {
	Dir      string `toml:"dir"`      // Backup directory ("" = <save dir>/backups)
	Interval string `toml:"interval"` // Periodic backup interval in watch mode (e.g., "24h")
	Encrypt  bool   `toml:"encrypt"`  // Encrypt backups
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:        "",
			SaveFile:   "save.json",
			SnapshotDB: "snapshots.db",
		},
		Players: PlayersConfig{
			Names: nil,
		},
		Sources: SourcesConfig{
			AddendumDir: "",
		},
		Stats: StatsConfig{
			SaviorMinLosses:     3,
			CommonalityRank:     1,
			CommonalityMinCount: 1,
		},
		Watch: WatchConfig{
			Debounce: "2s",
		},
		Backup: BackupConfig{
			Interval: "24h",
			Encrypt:  false,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".spirit-tracker")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from the default location. Returns the
// default config if no file exists yet.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path. Returns the
// default config if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to the default location.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo saves the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
	}

	if c.Backup.Interval != "" {
		if _, err := time.ParseDuration(c.Backup.Interval); err != nil {
			return fmt.Errorf("invalid backup interval %q: %w", c.Backup.Interval, err)
		}
	}

	if c.Stats.SaviorMinLosses < 0 {
		return fmt.Errorf("savior minimum losses cannot be negative: %d", c.Stats.SaviorMinLosses)
	}

	if c.Stats.CommonalityRank < 0 {
		return fmt.Errorf("commonality rank cannot be negative: %d", c.Stats.CommonalityRank)
	}

	if c.Stats.CommonalityMinCount < 0 {
		return fmt.Errorf("commonality minimum count cannot be negative: %d", c.Stats.CommonalityMinCount)
	}

	return nil
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() (time.Duration, error) {
	return time.ParseDuration(c.Watch.Debounce)
}

// GetBackupInterval returns the backup interval as a duration, zero
// when unset.
func (c *Config) GetBackupInterval() (time.Duration, error) {
	if c.Backup.Interval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Backup.Interval)
}

// DataDir resolves the data directory, creating it when missing.
func (c *Config) DataDir() (string, error) {
	dir := c.Data.Dir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".spirit-tracker")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}

// SavePath resolves the full path of the save document.
func (c *Config) SavePath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	name := c.Data.SaveFile
	if name == "" {
		name = "save.json"
	}
	return filepath.Join(dir, name), nil
}

// SnapshotDBPath resolves the full path of the snapshot database.
func (c *Config) SnapshotDBPath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	name := c.Data.SnapshotDB
	if name == "" {
		name = "snapshots.db"
	}
	return filepath.Join(dir, name), nil
}
