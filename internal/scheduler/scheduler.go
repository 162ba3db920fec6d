// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/events"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// EventEmitter publishes job completion events
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// JobInfo describes a registered job
type JobInfo struct {
	Name      string `json:"name"`
	Schedule  string `json:"schedule"`
	NextRun   string `json:"next_run,omitempty"`
	LastRun   string `json:"last_run,omitempty"`
	LastError string `json:"last_error,omitempty"`
	Status    string `json:"status"` // idle, running, failed
}

type registeredJob struct {
	job      Job
	schedule string
	entryID  cron.EntryID
	lastRun  time.Time
	lastErr  error
	running  bool
}

// Scheduler manages background jobs
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	jobs    map[string]*registeredJob
	emitter EventEmitter
	log     zerolog.Logger
}

// New creates a new scheduler. Schedules accept an optional leading seconds
// field and descriptors such as @daily. emitter may be nil.
func New(emitter EventEmitter, log zerolog.Logger) *Scheduler {
	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser)),
		jobs:    make(map[string]*registeredJob),
		emitter: emitter,
		log:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "30 18 * * MON-FRI"  - 18:30 on weekdays
//   - "@daily"             - Every day at midnight
//   - "@every 30s"         - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.mu.Lock()
	if _, exists := s.jobs[job.Name()]; exists {
		s.mu.Unlock()
		return fmt.Errorf("job %s already registered", job.Name())
	}
	s.mu.Unlock()

	entryID, err := s.cron.AddFunc(schedule, func() {
		_ = s.execute(job)
	})
	if err != nil {
		return fmt.Errorf("failed to register job %s with schedule %q: %w", job.Name(), schedule, err)
	}

	s.mu.Lock()
	s.jobs[job.Name()] = &registeredJob{job: job, schedule: schedule, entryID: entryID}
	s.mu.Unlock()

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// Register makes a job available to RunByName without scheduling it
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.Name()]; !exists {
		s.jobs[job.Name()] = &registeredJob{job: job}
	}
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.execute(job)
}

// RunByName executes a registered job immediately
func (s *Scheduler) RunByName(name string) error {
	s.mu.Lock()
	reg, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.RunNow(reg.job)
}

// Jobs returns the registered jobs sorted by name
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, reg := range s.jobs {
		info := JobInfo{Name: name, Schedule: reg.schedule, Status: "idle"}
		if reg.schedule != "" {
			if next := s.cron.Entry(reg.entryID).Next; !next.IsZero() {
				info.NextRun = next.Format(time.RFC3339)
			}
		}
		if !reg.lastRun.IsZero() {
			info.LastRun = reg.lastRun.Format(time.RFC3339)
		}
		if reg.lastErr != nil {
			info.LastError = reg.lastErr.Error()
			info.Status = "failed"
		}
		if reg.running {
			info.Status = "running"
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func (s *Scheduler) execute(job Job) error {
	name := job.Name()
	s.setRunning(name, true)
	start := time.Now()

	s.log.Debug().Str("job", name).Msg("Running job")
	err := s.runRecovering(job)
	duration := time.Since(start)

	s.mu.Lock()
	if reg, ok := s.jobs[name]; ok {
		reg.running = false
		reg.lastRun = start
		reg.lastErr = err
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().
			Err(err).
			Str("job", name).
			Msg("Job failed")
	} else {
		s.log.Debug().Str("job", name).Dur("duration", duration).Msg("Job completed")
	}

	if s.emitter != nil {
		data := &events.ScheduledJobDoneData{
			Job:        name,
			Success:    err == nil,
			DurationMs: duration.Milliseconds(),
		}
		if err != nil {
			data.Error = err.Error()
		}
		s.emitter.EmitTyped("scheduler", data)
	}
	return err
}

func (s *Scheduler) runRecovering(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
		}
	}()
	return job.Run()
}

func (s *Scheduler) setRunning(name string, running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reg, ok := s.jobs[name]; ok {
		reg.running = running
	}
}
