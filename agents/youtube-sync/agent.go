package youtubesync

import (
	"context"
	"fmt"
	"time"

	"portfolio-stack/shared/scheduler"

	log "github.com/sirupsen/logrus"
)

// SyncMetrics tracks one scheduled ingestion run.
type SyncMetrics struct {
	Stored   int
	Rejected int
	NoVideos bool
}

func (m SyncMetrics) GetSummary() string {
	if m.NoVideos {
		return "no videos found, store unchanged"
	}
	return fmt.Sprintf("stored %d videos, rejected %d", m.Stored, m.Rejected)
}

// Agent runs Service.Sync on the scheduler.
type Agent struct {
	service *Service
}

func NewAgent(service *Service) *Agent {
	return &Agent{service: service}
}

func (a *Agent) Name() string {
	return "youtube-sync"
}

func (a *Agent) Initialize() error {
	if a.service == nil {
		return fmt.Errorf("youtube sync service is not configured")
	}
	log.Printf("Initialized %s for channel %s", a.Name(), a.service.channelID)
	return nil
}

func (a *Agent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	result, err := a.service.Sync(ctx)
	if err != nil {
		return err
	}

	metrics := SyncMetrics{
		Stored:   result.Count,
		Rejected: result.Debug.Rejected,
		NoVideos: result.NoVideos,
	}
	if metrics.Rejected > 0 {
		events.OnPartialFailure(fmt.Errorf("%d videos failed channel validation", metrics.Rejected), time.Since(startTime))
	}
	events.OnSuccess(metrics, time.Since(startTime))
	return nil
}
