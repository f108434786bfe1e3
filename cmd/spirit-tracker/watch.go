package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tovenaar/spirit-tracker/internal/ingest"
	"github.com/tovenaar/spirit-tracker/internal/stats"
	"github.com/tovenaar/spirit-tracker/internal/storage"
)

// runWatchCommand keeps a live stat table: it rebuilds the catalog and
// redisplays the stats whenever an addendum override changes. A backup
// scheduler runs alongside when the config asks for one.
func runWatchCommand(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	noBackup := fs.Bool("no-backup", false, "Disable the periodic backup scheduler for this session")
	passwordEnv := fs.String("password-env", "", "Environment variable containing the backup encryption password")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	cfg := loadConfig()
	logger := newLogger()

	addendumDir := cfg.Sources.AddendumDir
	if addendumDir == "" {
		log.Fatal("No addendum directory configured; set sources.addendum_dir in the config")
	}
	if _, err := os.Stat(addendumDir); os.IsNotExist(err) {
		log.Fatalf("Addendum directory does not exist: %s", addendumDir)
	}

	// The watcher callback and the initial display share one refresh
	// path. The mutex keeps a mid-refresh signal from interleaving
	// two table renders.
	var mu sync.Mutex
	refresh := func() {
		mu.Lock()
		defer mu.Unlock()
		catalog, err := buildCatalog(cfg, logger)
		if err != nil {
			logger.Error("Catalog rebuild failed", "error", err)
			return
		}
		blog, _, err := openLog(cfg)
		if err != nil {
			logger.Error("Save document reload failed", "error", err)
			return
		}
		results := stats.TallyAll(standardDefinitions(cfg, stats.CommonFilter{}), blog, catalog)
		displayResults(blog, results)
	}

	refresh()

	debounce, err := cfg.GetDebounce()
	if err != nil {
		log.Fatalf("Invalid watch debounce: %v", err)
	}

	watcher, err := ingest.NewWatcher(ingest.WatcherConfig{
		Dir:         addendumDir,
		MinInterval: debounce,
		OnChange:    refresh,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("Error creating watcher: %v", err)
	}
	if err := watcher.Start(); err != nil {
		log.Fatalf("Error starting watcher: %v", err)
	}
	defer func() { _ = watcher.Close() }()

	interval, err := cfg.GetBackupInterval()
	if err != nil {
		log.Fatalf("Invalid backup interval: %v", err)
	}

	var scheduler *storage.BackupScheduler
	if interval > 0 && !*noBackup {
		backupConfig := storage.DefaultBackupConfig()
		backupConfig.BackupDir = cfg.Backup.Dir
		if cfg.Backup.Encrypt {
			if *passwordEnv == "" {
				log.Fatal("Error: config enables backup encryption, --password-env is required")
			}
			backupConfig.Encryption = storage.DefaultEncryptionConfig(passwordFromEnv(*passwordEnv))
		}

		scheduler = storage.NewBackupScheduler(
			storage.NewBackupManager(mustSavePath(cfg)),
			&storage.SchedulerConfig{
				Interval:     interval,
				BackupConfig: backupConfig,
				OnBackupComplete: func(backupPath string, err error) {
					if err != nil {
						logger.Error("Scheduled backup failed", "error", err)
						return
					}
					logger.Info("Scheduled backup complete", "path", backupPath)
				},
			},
		)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Error starting backup scheduler: %v", err)
		}
		logger.Info("Backup scheduler started", "interval", interval)
	}

	fmt.Println("\nWatching for changes. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	if scheduler != nil && scheduler.IsRunning() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Error stopping backup scheduler: %v", err)
		}
	}
}
