package scheduler

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"
	cron "github.com/robfig/cron/v3"
)

// Job represents a scheduled job that can be executed
type Job interface {
	Execute() error
	Name() string
}

// CronScheduler manages cron jobs
type CronScheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	mutex   sync.RWMutex
	running bool
}

// NewCronScheduler creates a new cron scheduler
func NewCronScheduler() *CronScheduler {
	return &CronScheduler{
		cron: cron.New(),
		jobs: make(map[string]cron.EntryID),
	}
}

// AddJob adds a job with the given schedule
func (s *CronScheduler) AddJob(name string, schedule string, job Job) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.jobs[name] != 0 {
		// Job already exists, remove it first
		s.cron.Remove(s.jobs[name])
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		if err := job.Execute(); err != nil {
			log.Warnf("Job %s failed: %v", job.Name(), err)
		}
	})
	if err != nil {
		return err
	}

	s.jobs[name] = entryID
	return nil
}

// RemoveJob removes a job by name
func (s *CronScheduler) RemoveJob(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}
}

// Start starts the scheduler
func (s *CronScheduler) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.running {
		s.cron.Start()
		s.running = true
	}
}

// Stop stops the scheduler
func (s *CronScheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		s.cron.Stop()
		s.running = false
	}
}

// IsRunning returns whether the scheduler is running
func (s *CronScheduler) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.running
}
