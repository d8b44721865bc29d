package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oactree/internal/common"
)

// RunFunc executes one scheduled procedure file to completion.
type RunFunc func(file string) error

// entry is one registered schedule with run bookkeeping.
type entry struct {
	name      string
	file      string
	schedule  string
	entryID   cron.EntryID
	lastRun   *time.Time
	lastError string
	isRunning bool
}

// Service runs procedure files on cron schedules. Each schedule has at most
// one run active; a schedule firing while its previous run is still active
// is skipped. Runs of different schedules may overlap.
type Service struct {
	cron    *cron.Cron
	logger  arbor.ILogger
	run     RunFunc
	mu      sync.Mutex
	entries map[string]*entry
	running bool
}

// NewService creates a scheduler executing procedures through run
func NewService(run RunFunc, logger arbor.ILogger) *Service {
	return &Service{
		cron:    cron.New(),
		logger:  logger,
		run:     run,
		entries: make(map[string]*entry),
	}
}

// Register adds one schedule from the daemon configuration
func (s *Service) Register(config common.ScheduleConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[config.Name]; exists {
		return fmt.Errorf("schedule %q already registered", config.Name)
	}
	e := &entry{
		name:     config.Name,
		file:     config.File,
		schedule: config.Schedule,
	}
	id, err := s.cron.AddFunc(config.Schedule, func() { s.fire(e) })
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for schedule %q: %w",
			config.Schedule, config.Name, err)
	}
	e.entryID = id
	s.entries[config.Name] = e

	s.logger.Debug().
		Str("schedule", config.Name).
		Str("file", config.File).
		Str("cron", config.Schedule).
		Msg("Procedure schedule registered")
	return nil
}

// Start begins firing registered schedules
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Int("schedules", len(s.entries)).Msg("Scheduler started")
}

// Stop halts the scheduler and waits for a running procedure to finish
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// Entries returns a snapshot of schedule names
func (s *Service) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

func (s *Service) fire(e *entry) {
	s.mu.Lock()
	if e.isRunning {
		s.mu.Unlock()
		s.logger.Warn().
			Str("schedule", e.name).
			Msg("Schedule fired while previous run still active - skipped")
		return
	}
	e.isRunning = true
	s.mu.Unlock()

	now := time.Now()
	s.logger.Info().
		Str("schedule", e.name).
		Str("file", e.file).
		Msg("Scheduled procedure starting")

	err := s.run(e.file)

	s.mu.Lock()
	e.isRunning = false
	e.lastRun = &now
	if err != nil {
		e.lastError = err.Error()
	} else {
		e.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Err(err).Str("schedule", e.name).Msg("Scheduled procedure failed")
	} else {
		s.logger.Info().Str("schedule", e.name).Msg("Scheduled procedure finished")
	}
}
