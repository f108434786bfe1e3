package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/document"
	"github.com/tovenaar/spirit-tracker/internal/storage"
)

// passwordFromEnv reads a backup password from the named environment
// variable. Passwords never appear as flag values.
func passwordFromEnv(envVar string) string {
	if envVar == "" {
		return ""
	}
	password := os.Getenv(envVar)
	if password == "" {
		log.Fatalf("Error: environment variable %s is not set or empty", envVar)
	}
	return password
}

// runBackupCommand handles backup and restore of the save document.
func runBackupCommand(args []string) {
	cfg := loadConfig()
	savePath := mustSavePath(cfg)
	backupMgr := storage.NewBackupManager(savePath)

	if len(args) < 1 {
		printBackupUsage()
		os.Exit(1)
	}

	command := args[0]
	rest := args[1:]

	// Creating a backup needs an existing save document; the other
	// commands work from the backup file alone.
	if command == "create" {
		if _, err := os.Stat(savePath); os.IsNotExist(err) {
			log.Fatalf("Save document does not exist: %s", savePath)
		}
	}

	switch command {
	case "create":
		createFlags := flag.NewFlagSet("create", flag.ExitOnError)
		backupDir := createFlags.String("dir", cfg.Backup.Dir, "Backup directory")
		backupName := createFlags.String("name", "", "Backup name (default: auto-generated timestamp)")
		encrypt := createFlags.Bool("encrypt", cfg.Backup.Encrypt, "Encrypt backup")
		passwordEnv := createFlags.String("password-env", "", "Environment variable containing encryption password")
		verify := createFlags.Bool("verify", true, "Verify backup after creation")

		if err := createFlags.Parse(rest); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		config := storage.DefaultBackupConfig()
		config.BackupDir = *backupDir
		config.BackupName = *backupName
		config.VerifyBackup = *verify

		if *encrypt {
			if *passwordEnv == "" {
				log.Fatal("Error: --password-env is required when --encrypt is specified")
			}
			config.Encryption = storage.DefaultEncryptionConfig(passwordFromEnv(*passwordEnv))
		}

		fmt.Println("Creating backup...")
		if *encrypt {
			fmt.Println("  Encryption: enabled")
		}

		backupPath, err := backupMgr.Backup(config)
		if err != nil {
			log.Fatalf("Error creating backup: %v", err)
		}

		fmt.Printf("\n✓ Backup created successfully: %s\n", backupPath)
		if info, err := os.Stat(backupPath); err == nil {
			fmt.Printf("  Size: %.1f KB\n", float64(info.Size())/1024)
		}

	case "restore":
		restoreFlags := flag.NewFlagSet("restore", flag.ExitOnError)
		passwordEnv := restoreFlags.String("password-env", "", "Environment variable containing decryption password")
		noConfirm := restoreFlags.Bool("yes", false, "Skip confirmation prompt")

		if err := restoreFlags.Parse(rest); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}
		if restoreFlags.NArg() < 1 {
			fmt.Println("Error: restore command requires a backup file path")
			fmt.Println("Usage: spirit-tracker backup restore <backup-file> [flags]")
			os.Exit(1)
		}
		backupPath := restoreFlags.Arg(0)

		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			log.Fatalf("Backup file does not exist: %s", backupPath)
		}

		if !*noConfirm {
			fmt.Println("WARNING: This will overwrite the current save document!")
			fmt.Printf("Save:   %s\n", savePath)
			fmt.Printf("Backup: %s\n", backupPath)
			fmt.Print("\nAre you sure you want to continue? (yes/no): ")

			reader := bufio.NewReader(os.Stdin)
			response, err := reader.ReadString('\n')
			if err != nil {
				log.Fatalf("Error reading input: %v", err)
			}
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "yes" && response != "y" {
				fmt.Println("Restore cancelled.")
				return
			}
		}

		var enc *storage.EncryptionConfig
		encrypted, err := storage.IsEncrypted(backupPath)
		if err != nil {
			log.Fatalf("Error inspecting backup: %v", err)
		}
		if encrypted {
			if *passwordEnv == "" {
				log.Fatal("Error: backup is encrypted, --password-env is required")
			}
			enc = storage.DefaultEncryptionConfig(passwordFromEnv(*passwordEnv))
		}

		fmt.Println("\nRestoring save document from backup...")
		if err := backupMgr.Restore(backupPath, enc); err != nil {
			log.Fatalf("Error restoring backup: %v", err)
		}
		fmt.Println("✓ Save document restored successfully!")

	case "list", "ls":
		listFlags := flag.NewFlagSet("list", flag.ExitOnError)
		format := listFlags.String("format", "table", "Output format: 'table' or 'json'")
		backupDir := listFlags.String("dir", cfg.Backup.Dir, "Backup directory")

		if err := listFlags.Parse(rest); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		if *backupDir == "" {
			*backupDir = backupMgr.DefaultDir()
		}

		backups, err := backupMgr.ListBackups(*backupDir)
		if err != nil {
			log.Fatalf("Error listing backups: %v", err)
		}
		if len(backups) == 0 {
			fmt.Println("No backups found.")
			return
		}

		switch *format {
		case "json":
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(backups); err != nil {
				log.Fatalf("Error encoding JSON: %v", err)
			}
		case "table":
			fmt.Printf("\nFound %d backup(s) in %s:\n\n", len(backups), *backupDir)
			for i, backup := range backups {
				fmt.Printf("%d. %s\n", i+1, backup.Name)
				fmt.Printf("   Path:      %s\n", backup.Path)
				fmt.Printf("   Size:      %.1f KB\n", float64(backup.Size)/1024)
				fmt.Printf("   Modified:  %s\n", backup.ModTime.Format("2006-01-02 15:04:05"))
				fmt.Printf("   Encrypted: %v\n", backup.Encrypted)
				fmt.Printf("   Checksum:  %s\n", backup.Checksum)
				fmt.Println()
			}
		default:
			log.Fatalf("Invalid format: %s (must be 'table' or 'json')", *format)
		}

	case "verify":
		verifyFlags := flag.NewFlagSet("verify", flag.ExitOnError)
		passwordEnv := verifyFlags.String("password-env", "", "Environment variable containing decryption password")

		if err := verifyFlags.Parse(rest); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}
		if verifyFlags.NArg() < 1 {
			fmt.Println("Error: verify command requires a backup file path")
			fmt.Println("Usage: spirit-tracker backup verify <backup-file>")
			os.Exit(1)
		}
		backupPath := verifyFlags.Arg(0)

		var enc *storage.EncryptionConfig
		if encrypted, err := storage.IsEncrypted(backupPath); err == nil && encrypted {
			if *passwordEnv == "" {
				log.Fatal("Error: backup is encrypted, --password-env is required")
			}
			enc = storage.DefaultEncryptionConfig(passwordFromEnv(*passwordEnv))
		}

		fmt.Printf("Verifying backup: %s\n", backupPath)
		if err := backupMgr.Verify(backupPath, enc); err != nil {
			log.Fatalf("Backup verification failed: %v", err)
		}
		fmt.Println("✓ Backup verification successful!")

	case "cleanup":
		cleanupFlags := flag.NewFlagSet("cleanup", flag.ExitOnError)
		backupDir := cleanupFlags.String("dir", cfg.Backup.Dir, "Backup directory")
		olderThan := cleanupFlags.Int("older-than", 0, "Delete backups older than N days (0 = disabled)")
		keepLast := cleanupFlags.Int("keep-last", 0, "Keep only the last N backups (0 = disabled)")
		dryRun := cleanupFlags.Bool("dry-run", false, "Show what would be deleted without actually deleting")

		if err := cleanupFlags.Parse(rest); err != nil {
			log.Fatalf("Error parsing flags: %v", err)
		}

		if *olderThan == 0 && *keepLast == 0 {
			fmt.Println("Error: either --older-than or --keep-last must be specified")
			os.Exit(1)
		}

		if *backupDir == "" {
			*backupDir = backupMgr.DefaultDir()
		}

		backups, err := backupMgr.ListBackups(*backupDir)
		if err != nil {
			log.Fatalf("Error listing backups: %v", err)
		}
		if len(backups) == 0 {
			fmt.Println("No backups found.")
			return
		}

		doomed := selectForCleanup(backups, *olderThan, *keepLast, time.Now())
		if len(doomed) == 0 {
			fmt.Println("Nothing to clean up.")
			return
		}

		for _, backup := range doomed {
			if *dryRun {
				fmt.Printf("Would delete: %s\n", backup.Path)
				continue
			}
			if err := os.Remove(backup.Path); err != nil {
				log.Printf("Warning: could not delete %s: %v", backup.Path, err)
			}
		}
		if *dryRun {
			fmt.Printf("DRY RUN: %d backup(s) would be deleted.\n", len(doomed))
			return
		}
		fmt.Printf("✓ Cleanup complete. %d backup(s) deleted, %d remaining.\n",
			len(doomed), len(backups)-len(doomed))

	default:
		fmt.Printf("Unknown backup command: %s\n\n", command)
		printBackupUsage()
		os.Exit(1)
	}
}

// selectForCleanup picks the backups a retention policy would delete.
// Newest backups are kept first; keepLast wins over olderThan.
func selectForCleanup(backups []storage.BackupInfo, olderThanDays, keepLast int, now time.Time) []storage.BackupInfo {
	sorted := make([]storage.BackupInfo, len(backups))
	copy(sorted, backups)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ModTime.After(sorted[j].ModTime) })

	var doomed []storage.BackupInfo
	cutoff := now.AddDate(0, 0, -olderThanDays)
	for i, backup := range sorted {
		if keepLast > 0 {
			if i >= keepLast {
				doomed = append(doomed, backup)
			}
			continue
		}
		if olderThanDays > 0 && backup.ModTime.Before(cutoff) {
			doomed = append(doomed, backup)
		}
	}
	return doomed
}

func printBackupUsage() {
	fmt.Println("Spirit Tracker - Save Document Backup Management")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  spirit-tracker backup <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  create     Create a new save document backup")
	fmt.Println("  restore    Restore the save document from a backup")
	fmt.Println("  list, ls   List all available backups")
	fmt.Println("  verify     Verify backup integrity")
	fmt.Println("  cleanup    Delete old backups based on retention policy")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  spirit-tracker backup create")
	fmt.Println()
	fmt.Println("  export BACKUP_PWD=mypassword")
	fmt.Println("  spirit-tracker backup create --encrypt --password-env BACKUP_PWD")
	fmt.Println()
	fmt.Println("  spirit-tracker backup restore backup_20250101_120000.json")
	fmt.Println("  spirit-tracker backup list --format json")
	fmt.Println("  spirit-tracker backup cleanup --keep-last 10")
	fmt.Println()
}

// runMigrateCommand manages snapshot database migrations.
func runMigrateCommand(args []string) {
	if len(args) < 1 {
		printMigrateUsage()
		os.Exit(1)
	}

	cfg := loadConfig()
	mgr, err := storage.NewMigrator(mustSnapshotDBPath(cfg))
	if err != nil {
		log.Fatalf("Error creating migrator: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migrator: %v", err)
		}
	}()

	command := args[0]

	switch command {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
		printMigrationVersion(mgr)

	case "down":
		fmt.Println("Rolling back migrations...")
		if err := mgr.Down(); err != nil {
			log.Fatalf("Error rolling back migrations: %v", err)
		}
		printMigrationVersion(mgr)

	case "status", "version":
		version, dirty, err := mgr.Version()
		if err != nil {
			log.Fatalf("Error getting version: %v", err)
		}
		if dirty {
			fmt.Printf("Current version: %d (dirty - migration failed or interrupted)\n", version)
			fmt.Println("Use 'migrate force <version>' to recover")
		} else {
			fmt.Printf("Current version: %d\n", version)
		}

	case "force":
		if len(args) < 2 {
			fmt.Println("Error: force command requires a version number")
			fmt.Println("Usage: spirit-tracker migrate force <version>")
			os.Exit(1)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}
		fmt.Printf("Forcing migration version to %d...\n", version)
		fmt.Println("WARNING: This does not run migrations, only sets the version.")
		if err := mgr.Force(version); err != nil {
			log.Fatalf("Error forcing version: %v", err)
		}
		fmt.Println("Version forced successfully!")

	default:
		fmt.Printf("Unknown migration command: %s\n\n", command)
		printMigrateUsage()
		os.Exit(1)
	}
}

func printMigrationVersion(mgr *storage.Migrator) {
	version, dirty, err := mgr.Version()
	if err != nil {
		log.Fatalf("Error getting version: %v", err)
	}
	if dirty {
		fmt.Printf("Current version: %d (dirty)\n", version)
	} else {
		fmt.Printf("Current version: %d\n", version)
	}
}

func printMigrateUsage() {
	fmt.Println("Spirit Tracker - Snapshot Database Migration Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  spirit-tracker migrate <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                Apply all pending migrations")
	fmt.Println("  down              Rollback migrations")
	fmt.Println("  status            Show current migration version")
	fmt.Println("  force <version>   Force set migration version (use with caution)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  spirit-tracker migrate up")
	fmt.Println("  spirit-tracker migrate status")
}

// runMigrateSaveCommand converts a legacy save document to the
// current schema. The original is kept under a .v0.bak suffix.
func runMigrateSaveCommand(args []string) {
	fs := flag.NewFlagSet("migrate-save", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	cfg := loadConfig()
	inputPath := mustSavePath(cfg)
	if fs.NArg() > 0 {
		inputPath = fs.Arg(0)
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		log.Fatalf("Error reading save document: %v", err)
	}

	version, err := battlelog.DetectVersion(raw)
	if err != nil {
		log.Fatalf("Error detecting schema version: %v", err)
	}
	if version == battlelog.SchemaVersion {
		fmt.Printf("Save document is already at schema version %d.\n", version)
		return
	}
	if version != 0 {
		log.Fatalf("Cannot migrate schema version %d (only version 0 is supported)", version)
	}

	fmt.Printf("Migrating %s from schema version 0 to %d...\n", inputPath, battlelog.SchemaVersion)

	migrated, warnings, err := battlelog.MigrateV0(raw, cfg.Players.Names)
	if err != nil {
		log.Fatalf("Error migrating save document: %v", err)
	}
	for _, w := range warnings {
		log.Printf("Warning: %s", w)
	}

	backupPath := inputPath + ".v0.bak"
	if err := os.WriteFile(backupPath, raw, 0o644); err != nil {
		log.Fatalf("Error backing up original document: %v", err)
	}
	if err := document.Write(inputPath, migrated); err != nil {
		log.Fatalf("Error writing migrated document: %v", err)
	}

	fmt.Printf("✓ Migrated %d entries (original kept at %s)\n", len(migrated.Entries), backupPath)
}
