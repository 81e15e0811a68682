package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
)

// ScanJobName is the job the scheduler registers for the periodic rescan.
const ScanJobName = "content_scan"

// jobEntry represents a registered job with metadata
type jobEntry struct {
	name      string
	schedule  string
	handler   func() error
	enabled   bool
	cronID    cron.EntryID
	lastRun   *time.Time
	isRunning bool
	lastError string
}

// Service implements SchedulerService interface
type Service struct {
	contentService interfaces.ContentService
	cron           *cron.Cron
	logger         arbor.ILogger
	jobMu          sync.Mutex // Protects jobs map
	globalMu       sync.Mutex // Prevents concurrent job execution
	jobs           map[string]*jobEntry
	running        bool
}

// NewService creates a new scheduler service. Schedules use the six-field
// cron form with a seconds column.
func NewService(contentService interfaces.ContentService, logger arbor.ILogger) interfaces.SchedulerService {
	return &Service{
		contentService: contentService,
		cron:           cron.New(cron.WithSeconds()),
		logger:         logger,
		jobs:           make(map[string]*jobEntry),
	}
}

// Start registers the rescan job with the given cron expression and begins
// the scheduler
func (s *Service) Start(cronExpr string) error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if cronExpr == "" {
		cronExpr = "0 */5 * * * *" // Default: every 5 minutes
	}

	s.jobMu.Lock()
	_, registered := s.jobs[ScanJobName]
	s.jobMu.Unlock()

	if !registered {
		if err := s.RegisterJob(ScanJobName, cronExpr, s.runScan); err != nil {
			return fmt.Errorf("failed to register scan job: %w", err)
		}
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", cronExpr).
		Msg("Scheduler started")

	return nil
}

// Stop halts the scheduler
func (s *Service) Stop() error {
	if !s.running {
		return nil
	}

	// Wait for the in-flight job, if any, to finish
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// TriggerScanNow runs the rescan job immediately, serialized against any
// scheduled run
func (s *Service) TriggerScanNow() error {
	s.logger.Info().Msg("Manual scan trigger requested")

	s.jobMu.Lock()
	_, registered := s.jobs[ScanJobName]
	s.jobMu.Unlock()
	if !registered {
		return fmt.Errorf("job %s not registered", ScanJobName)
	}

	s.executeJob(ScanJobName)

	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if entry := s.jobs[ScanJobName]; entry != nil && entry.lastError != "" {
		return fmt.Errorf("scan failed: %s", entry.lastError)
	}
	return nil
}

// IsRunning returns true if scheduler is active
func (s *Service) IsRunning() bool {
	return s.running
}

// runScan reconciles the catalog against the content roots. Integrity
// errors count as a failed run so they surface in the job status.
func (s *Service) runScan() error {
	report, err := s.contentService.Reconcile(context.Background())
	if err != nil {
		return err
	}
	if report.Failed() {
		return fmt.Errorf("scan found %d integrity errors", len(report.Errors))
	}
	return nil
}

// RegisterJob registers a new job with the scheduler
func (s *Service) RegisterJob(name string, schedule string, handler func() error) error {
	if err := common.ValidateScanSchedule(schedule); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	entry := &jobEntry{
		name:     name,
		schedule: schedule,
		handler:  handler,
		enabled:  true,
	}

	cronID, err := s.cron.AddFunc(schedule, func() {
		s.executeJob(name)
	})
	if err != nil {
		return fmt.Errorf("failed to add job to cron: %w", err)
	}

	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Info().
		Str("job_name", name).
		Str("schedule", schedule).
		Msg("Job registered")

	return nil
}

// EnableJob enables a disabled job
func (s *Service) EnableJob(name string) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	if entry.enabled {
		return nil // Already enabled
	}

	cronID, err := s.cron.AddFunc(entry.schedule, func() {
		s.executeJob(name)
	})
	if err != nil {
		return fmt.Errorf("failed to add job to cron: %w", err)
	}

	entry.cronID = cronID
	entry.enabled = true

	s.logger.Info().
		Str("job_name", name).
		Msg("Job enabled")

	return nil
}

// DisableJob disables an enabled job
func (s *Service) DisableJob(name string) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	if !entry.enabled {
		return nil // Already disabled
	}

	s.cron.Remove(entry.cronID)
	entry.enabled = false

	s.logger.Info().
		Str("job_name", name).
		Msg("Job disabled")

	return nil
}

// GetJobStatus returns the status of a specific job
func (s *Service) GetJobStatus(name string) (*interfaces.JobStatus, error) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}

	// Get next run time from cron
	var nextRun *time.Time
	if entry.enabled {
		for _, cronEntry := range s.cron.Entries() {
			if cronEntry.ID == entry.cronID {
				next := cronEntry.Next
				nextRun = &next
				break
			}
		}
	}

	return &interfaces.JobStatus{
		Name:      entry.name,
		Enabled:   entry.enabled,
		Schedule:  entry.schedule,
		LastRun:   entry.lastRun,
		NextRun:   nextRun,
		IsRunning: entry.isRunning,
		LastError: entry.lastError,
	}, nil
}

// GetAllJobStatuses returns all job statuses
func (s *Service) GetAllJobStatuses() map[string]*interfaces.JobStatus {
	s.jobMu.Lock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	s.jobMu.Unlock()

	statuses := make(map[string]*interfaces.JobStatus)
	for _, name := range names {
		status, err := s.GetJobStatus(name)
		if err == nil {
			statuses[name] = status
		}
	}

	return statuses
}

// executeJob wraps job execution with mutex, panic recovery, and status
// tracking
func (s *Service) executeJob(name string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("job_name", name).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in job execution")

			s.jobMu.Lock()
			if entry, exists := s.jobs[name]; exists {
				entry.isRunning = false
				entry.lastError = fmt.Sprintf("panic: %v", r)
			}
			s.jobMu.Unlock()
		}
	}()

	// Jobs never overlap; a slow scan delays the next one
	s.globalMu.Lock()
	defer s.globalMu.Unlock()

	s.logger.Info().
		Str("job_name", name).
		Msg("🚀 Job execution started")

	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists {
		s.jobMu.Unlock()
		s.logger.Warn().
			Str("job_name", name).
			Msg("Job not found")
		return
	}

	entry.isRunning = true
	started := time.Now()
	handler := entry.handler
	s.jobMu.Unlock()

	err := handler()

	completionTime := time.Now()
	s.jobMu.Lock()
	entry.isRunning = false
	entry.lastRun = &completionTime
	if err != nil {
		entry.lastError = err.Error()
		s.logger.Error().
			Str("job_name", name).
			Err(err).
			Dur("duration", time.Since(started)).
			Msg("❌ Job execution failed")
	} else {
		entry.lastError = ""
		s.logger.Info().
			Str("job_name", name).
			Dur("duration", time.Since(started)).
			Msg("✅ Job execution completed successfully")
	}
	s.jobMu.Unlock()
}
