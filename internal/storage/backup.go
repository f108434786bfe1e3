package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	backupExtPlain     = ".json"
	backupExtEncrypted = ".json.enc"
)

// BackupManager handles backup and restore of the save document.
type BackupManager struct {
	savePath string
}

// NewBackupManager creates a backup manager for the save document at
// savePath.
func NewBackupManager(savePath string) *BackupManager {
	return &BackupManager{savePath: savePath}
}

// DefaultDir returns the backup directory used when none is
// configured: a "backups" directory next to the save document.
func (bm *BackupManager) DefaultDir() string {
	return filepath.Join(filepath.Dir(bm.savePath), "backups")
}

// BackupConfig holds settings for one backup operation.
type BackupConfig struct {
	// BackupDir is where backups land. Empty means a "backups"
	// subdirectory next to the save document.
	BackupDir string

	// BackupName is the file name without extension. Empty generates
	// a timestamped name.
	BackupName string

	// Encryption, when set, seals the backup with the configured
	// password. Nil writes a plain copy.
	Encryption *EncryptionConfig

	// VerifyBackup re-reads the backup after writing it.
	VerifyBackup bool
}

// DefaultBackupConfig returns a BackupConfig that verifies and does
// not encrypt.
func DefaultBackupConfig() *BackupConfig {
	return &BackupConfig{VerifyBackup: true}
}

// Backup writes a copy of the save document and returns its path.
func (bm *BackupManager) Backup(config *BackupConfig) (string, error) {
	if config == nil {
		config = DefaultBackupConfig()
	}

	backupDir := config.BackupDir
	if backupDir == "" {
		backupDir = bm.DefaultDir()
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupName := config.BackupName
	if backupName == "" {
		backupName = fmt.Sprintf("backup_%s", time.Now().Format("20060102_150405"))
	}
	ext := backupExtPlain
	if config.Encryption != nil {
		ext = backupExtEncrypted
	}
	backupPath := filepath.Join(backupDir, backupName+ext)

	if config.Encryption != nil {
		if err := EncryptFile(bm.savePath, backupPath, config.Encryption); err != nil {
			return "", fmt.Errorf("failed to write encrypted backup: %w", err)
		}
	} else {
		if err := copyFile(bm.savePath, backupPath); err != nil {
			return "", fmt.Errorf("failed to copy save document: %w", err)
		}
	}

	if config.VerifyBackup {
		if err := bm.Verify(backupPath, config.Encryption); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("backup verification failed: %w", err)
		}
	}
	return backupPath, nil
}

// Verify checks that a backup holds well-formed JSON, decrypting it
// first when needed.
func (bm *BackupManager) Verify(backupPath string, enc *EncryptionConfig) error {
	encrypted, err := IsEncrypted(backupPath)
	if err != nil {
		return fmt.Errorf("failed to inspect backup: %w", err)
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if encrypted {
		if enc == nil {
			return fmt.Errorf("backup is encrypted and no password was given")
		}
		data, err = DecryptData(data[len(EncryptionMagicHeader):], enc)
		if err != nil {
			return err
		}
	}

	if !json.Valid(data) {
		return fmt.Errorf("backup does not contain valid JSON")
	}
	return nil
}

// Restore replaces the save document with a backup. The current
// document, if any, is kept next to it under an .old suffix.
func (bm *BackupManager) Restore(backupPath string, enc *EncryptionConfig) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if err := bm.Verify(backupPath, enc); err != nil {
		return err
	}

	encrypted, err := IsEncrypted(backupPath)
	if err != nil {
		return fmt.Errorf("failed to inspect backup: %w", err)
	}

	tempPath := bm.savePath + ".restore.tmp"
	if encrypted {
		if err := DecryptFile(backupPath, tempPath, enc); err != nil {
			return err
		}
	} else {
		if err := copyFile(backupPath, tempPath); err != nil {
			return fmt.Errorf("failed to stage restore: %w", err)
		}
	}

	if _, err := os.Stat(bm.savePath); err == nil {
		oldPath := bm.savePath + ".old." + time.Now().Format("20060102_150405")
		if err := os.Rename(bm.savePath, oldPath); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to set aside current save: %w", err)
		}
	}

	if err := os.Rename(tempPath, bm.savePath); err != nil {
		return fmt.Errorf("failed to move restored save into place: %w", err)
	}
	return nil
}

// BackupInfo describes one backup file.
type BackupInfo struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	Encrypted bool
	Checksum  string
}

// ListBackups returns the backups in backupDir, or in the default
// directory when empty. A missing directory is an empty list.
func (bm *BackupManager) ListBackups(backupDir string) ([]BackupInfo, error) {
	if backupDir == "" {
		backupDir = bm.DefaultDir()
	}
	if _, err := os.Stat(backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, backupExtPlain) && !strings.HasSuffix(name, backupExtEncrypted) {
			continue
		}

		backupPath := filepath.Join(backupDir, name)
		info, err := entry.Info()
		if err != nil {
			continue
		}
		encrypted, err := IsEncrypted(backupPath)
		if err != nil {
			encrypted = strings.HasSuffix(name, backupExtEncrypted)
		}
		checksum, err := calculateChecksum(backupPath)
		if err != nil {
			checksum = "unknown"
		}

		backups = append(backups, BackupInfo{
			Path:      backupPath,
			Name:      name,
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Encrypted: encrypted,
			Checksum:  checksum,
		})
	}
	return backups, nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = sourceFile.Close() }()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = destFile.Close() }()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return destFile.Close()
}

func calculateChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
