package scheduler

import (
	"context"
	"fmt"
	"time"

	"portfolio-stack/shared/monitoring"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Metrics defines the common interface for agent metrics
type Metrics interface {
	// GetSummary returns a human-readable summary of the run
	GetSummary() string
}

// AgentEvents provides callbacks for monitoring agent execution
type AgentEvents struct {
	OnSuccess         func(metrics Metrics, duration time.Duration)
	OnPartialFailure  func(err error, duration time.Duration)
	OnCriticalFailure func(err error, duration time.Duration)
}

// Agent defines the interface that all agents must implement
type Agent interface {
	Name() string
	RunOnce(ctx context.Context, events *AgentEvents) error
	Initialize() error
}

type job struct {
	schedule string
	agent    Agent
}

// Scheduler runs registered agents on their cron schedules. A run that is
// still going when its next tick fires is skipped.
type Scheduler struct {
	monitor *monitoring.Monitor
	cron    *cron.Cron
	jobs    []job
}

func New(monitor *monitoring.Monitor) *Scheduler {
	return &Scheduler{
		monitor: monitor,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Register validates the six-field schedule and queues the agent. An empty
// schedule disables the agent.
func (s *Scheduler) Register(schedule string, agent Agent) error {
	if schedule == "" {
		log.Printf("No schedule configured for %s, skipping", agent.Name())
		return nil
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", schedule, agent.Name(), err)
	}
	s.jobs = append(s.jobs, job{schedule: schedule, agent: agent})
	return nil
}

// Start initializes every agent, starts cron, and blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, j := range s.jobs {
		if err := j.agent.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize agent %s: %w", j.agent.Name(), err)
		}

		agent := j.agent
		_, err := s.cron.AddFunc(j.schedule, func() {
			if err := s.RunOnce(ctx, agent); err != nil {
				log.Printf("Error running scheduled job for %s: %v", agent.Name(), err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to add cron job: %w", err)
		}
		log.Printf("Scheduled %s with schedule: %s", agent.Name(), j.schedule)
	}

	s.cron.Start()

	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	log.Println("Scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) RunOnce(ctx context.Context, agent Agent) error {
	startTime := time.Now()
	agentName := agent.Name()

	log.Printf("Starting %s run...", agentName)

	events := &AgentEvents{
		OnSuccess: func(metrics Metrics, duration time.Duration) {
			s.monitor.RecordSuccess(agentName, metrics.GetSummary(), duration)
		},
		OnPartialFailure: func(err error, duration time.Duration) {
			s.monitor.RecordPartialFailure(agentName, err, duration)
		},
		OnCriticalFailure: func(err error, duration time.Duration) {
			s.monitor.RecordCriticalFailure(agentName, err, duration)
		},
	}

	if err := agent.RunOnce(ctx, events); err != nil {
		s.monitor.RecordCriticalFailure(agentName, err, time.Since(startTime))
		return fmt.Errorf("%s run failed: %w", agentName, err)
	}

	return nil
}
