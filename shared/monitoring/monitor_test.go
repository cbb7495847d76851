package monitoring

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMonitor(t *testing.T) {
	m := NewMonitor()

	if !m.IsHealthy() {
		t.Error("fresh monitor should be healthy")
	}
	if got := m.GetStatusSummary(); got != "No runs yet" {
		t.Errorf("summary = %q", got)
	}

	m.RecordSuccess("youtube-sync", "6 videos", time.Second)
	m.RecordPartialFailure("youtube-sync", errors.New("audit log write failed"), time.Second)
	if !m.IsHealthy() {
		t.Error("partial failure should not change health")
	}

	m.RecordCriticalFailure("profile-writer", errors.New("boom"), time.Second)
	if m.IsHealthy() {
		t.Error("critical failure should mark unhealthy")
	}

	status := m.Status()
	if len(status) != 2 || status[0].Agent != "profile-writer" || status[0].LastError != "boom" {
		t.Errorf("status = %+v", status)
	}
	if !strings.Contains(m.GetStatusSummary(), "profile-writer last run failed") {
		t.Errorf("summary = %q", m.GetStatusSummary())
	}

	m.RecordSuccess("profile-writer", "profile saved", time.Second)
	if !m.IsHealthy() {
		t.Error("recovery run should restore health")
	}
}
