package storage

import (
	"fmt"
	"sync"
	"time"
)

// BackupScheduler takes periodic backups of the save document while a
// long session (watch mode) is running.
type BackupScheduler struct {
	manager       *BackupManager
	config        *SchedulerConfig
	ticker        *time.Ticker
	stopChan      chan struct{}
	mu            sync.RWMutex
	running       bool
	lastBackup    time.Time
	lastError     error
	backupCount   int
	failureCount  int
	backupHandler func(backupPath string, err error)
}

// SchedulerConfig holds configuration for the backup scheduler.
type SchedulerConfig struct {
	// Interval is the time between backups.
	Interval time.Duration

	// BackupConfig is used for every scheduled backup.
	BackupConfig *BackupConfig

	// StartImmediately takes a backup as soon as the scheduler
	// starts instead of waiting one interval.
	StartImmediately bool

	// OnBackupComplete is called after each attempt, success or not.
	OnBackupComplete func(backupPath string, err error)
}

// DefaultSchedulerConfig returns a config with daily backups.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Interval:     24 * time.Hour,
		BackupConfig: DefaultBackupConfig(),
	}
}

// NewBackupScheduler creates a scheduler over manager.
func NewBackupScheduler(manager *BackupManager, config *SchedulerConfig) *BackupScheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	return &BackupScheduler{
		manager:       manager,
		config:        config,
		stopChan:      make(chan struct{}),
		backupHandler: config.OnBackupComplete,
	}
}

// Start begins the backup loop. Starting a running scheduler is an
// error.
func (s *BackupScheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.ticker = time.NewTicker(s.config.Interval)
	s.running = true
	ticker := s.ticker
	s.mu.Unlock()

	if s.config.StartImmediately {
		go s.runBackup()
	}
	go s.run(ticker)
	return nil
}

// Stop halts the backup loop.
func (s *BackupScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is not running")
	}
	s.mu.Unlock()

	close(s.stopChan)

	s.mu.Lock()
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	s.running = false
	s.stopChan = make(chan struct{})
	s.mu.Unlock()
	return nil
}

func (s *BackupScheduler) run(ticker *time.Ticker) {
	for {
		select {
		case <-ticker.C:
			s.runBackup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *BackupScheduler) runBackup() {
	backupPath, err := s.manager.Backup(s.config.BackupConfig)

	s.mu.Lock()
	s.lastBackup = time.Now()
	s.lastError = err
	if err != nil {
		s.failureCount++
	} else {
		s.backupCount++
	}
	s.mu.Unlock()

	if s.backupHandler != nil {
		s.backupHandler(backupPath, err)
	}
}

// IsRunning reports whether the loop is active.
func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// TriggerBackup takes a backup now without moving the schedule.
func (s *BackupScheduler) TriggerBackup() error {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()
	if !running {
		return fmt.Errorf("scheduler is not running")
	}
	go s.runBackup()
	return nil
}

// SchedulerStatus describes the scheduler state for display.
type SchedulerStatus struct {
	Running      bool
	Interval     time.Duration
	LastBackup   time.Time
	NextBackup   time.Time
	BackupCount  int
	FailureCount int
	LastError    error
}

// Status returns a point-in-time view of the scheduler.
func (s *BackupScheduler) Status() *SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nextBackup time.Time
	if s.running && !s.lastBackup.IsZero() {
		nextBackup = s.lastBackup.Add(s.config.Interval)
	}
	return &SchedulerStatus{
		Running:      s.running,
		Interval:     s.config.Interval,
		LastBackup:   s.lastBackup,
		NextBackup:   nextBackup,
		BackupCount:  s.backupCount,
		FailureCount: s.failureCount,
		LastError:    s.lastError,
	}
}

// String renders the status for terminal display.
func (s *SchedulerStatus) String() string {
	if !s.Running {
		return "Scheduler: Stopped"
	}
	status := "Scheduler: Running\n"
	status += fmt.Sprintf("  Interval: %s\n", s.Interval)
	status += fmt.Sprintf("  Total Backups: %d\n", s.BackupCount)
	status += fmt.Sprintf("  Failures: %d\n", s.FailureCount)
	if !s.LastBackup.IsZero() {
		status += fmt.Sprintf("  Last Backup: %s\n", s.LastBackup.Format(time.RFC3339))
	}
	if !s.NextBackup.IsZero() {
		status += fmt.Sprintf("  Next Backup: %s\n", s.NextBackup.Format(time.RFC3339))
	}
	if s.LastError != nil {
		status += fmt.Sprintf("  Last Error: %v\n", s.LastError)
	}
	return status
}
