package monitoring

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// RunStatus is the last recorded outcome of one agent.
type RunStatus struct {
	Agent       string        `json:"agent"`
	Success     bool          `json:"success"`
	LastRunTime time.Time     `json:"lastRunTime"`
	Duration    time.Duration `json:"duration"`
	Summary     string        `json:"summary"`
	LastError   string        `json:"lastError,omitempty"`
}

type Monitor struct {
	mu   sync.RWMutex
	runs map[string]*RunStatus
}

func NewMonitor() *Monitor {
	return &Monitor{runs: make(map[string]*RunStatus)}
}

func (m *Monitor) RecordSuccess(agent, summary string, duration time.Duration) {
	m.mu.Lock()
	m.runs[agent] = &RunStatus{
		Agent:       agent,
		Success:     true,
		LastRunTime: time.Now(),
		Duration:    duration,
		Summary:     summary,
	}
	m.mu.Unlock()

	log.Printf("✅ %s completed successfully - %s (took %v)", agent, summary, duration)
}

func (m *Monitor) RecordPartialFailure(agent string, err error, duration time.Duration) {
	// Don't change health status for partial failures
	log.Printf("⚠️  %s PARTIAL FAILURE: %s (Duration: %v)", agent, err.Error(), duration)
}

func (m *Monitor) RecordCriticalFailure(agent string, err error, duration time.Duration) {
	m.mu.Lock()
	m.runs[agent] = &RunStatus{
		Agent:       agent,
		Success:     false,
		LastRunTime: time.Now(),
		Duration:    duration,
		LastError:   err.Error(),
	}
	m.mu.Unlock()

	log.Printf("🚨 %s CRITICAL FAILURE: %s (Duration: %v)", agent, err.Error(), duration)
}

// IsHealthy is true until some agent's latest run failed.
func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.runs {
		if !r.Success {
			return false
		}
	}
	return true
}

// Status returns a snapshot sorted by agent name.
func (m *Monitor) Status() []RunStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]RunStatus, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Agent < out[j].Agent })
	return out
}

func (m *Monitor) GetStatusSummary() string {
	runs := m.Status()
	if len(runs) == 0 {
		return "No runs yet"
	}

	parts := make([]string, 0, len(runs))
	for _, r := range runs {
		if r.Success {
			parts = append(parts, fmt.Sprintf("✅ %s last run: %s", r.Agent, r.LastRunTime.Format("Jan 2 15:04")))
		} else {
			parts = append(parts, fmt.Sprintf("❌ %s last run failed: %s", r.Agent, r.LastRunTime.Format("Jan 2 15:04")))
		}
	}
	return strings.Join(parts, "; ")
}
