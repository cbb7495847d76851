package profilewriter

import (
	"context"
	"fmt"
	"time"

	"portfolio-stack/internal/models"
	"portfolio-stack/shared/scheduler"
	"portfolio-stack/shared/storage"

	log "github.com/sirupsen/logrus"
)

// Writer is satisfied by *ai.ProfileWriter.
type Writer interface {
	Write(ctx context.Context, videos []models.Video) (*models.Profile, bool)
}

// Service regenerates the site profile from the stored videos.
type Service struct {
	writer Writer
	store  storage.Store
}

func NewService(writer Writer, store storage.Store) *Service {
	return &Service{writer: writer, store: store}
}

type Result struct {
	Profile  *models.Profile
	FellBack bool
	Videos   int
}

// Regenerate writes a new profile and records the outcome in the audit log.
// A model failure still stores the fallback profile; only storage errors are
// returned.
func (s *Service) Regenerate(ctx context.Context) (*Result, error) {
	videos, err := s.store.ListVideos(ctx, storage.DefaultVideoLimit)
	if err != nil {
		s.audit(ctx, models.SyncError, "Failed to load videos for profile", err)
		return nil, err
	}

	profile, fellBack := s.writer.Write(ctx, videos)
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		s.audit(ctx, models.SyncError, "Failed to save profile", err)
		return nil, err
	}

	msg := "Profile generated successfully"
	if fellBack {
		msg = "Profile generated from fallback"
	}
	s.audit(ctx, models.SyncSuccess, msg, nil)
	return &Result{Profile: profile, FellBack: fellBack, Videos: len(videos)}, nil
}

func (s *Service) audit(ctx context.Context, status models.SyncStatus, msg string, cause error) {
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	entry := models.SyncLog{Type: models.SyncProfile, Status: status, Message: msg}
	if err := s.store.AppendSyncLog(ctx, entry); err != nil {
		log.WithError(err).Error("Failed to write sync log")
	}
}

type Metrics struct {
	Videos   int
	FellBack bool
}

func (m Metrics) GetSummary() string {
	if m.FellBack {
		return "fallback profile stored"
	}
	return fmt.Sprintf("profile generated from %d videos", m.Videos)
}

// Agent runs Regenerate on the scheduler.
type Agent struct {
	service *Service
}

func NewAgent(service *Service) *Agent {
	return &Agent{service: service}
}

func (a *Agent) Name() string {
	return "profile-writer"
}

func (a *Agent) Initialize() error {
	if a.service == nil {
		return fmt.Errorf("profile service is not configured")
	}
	log.Printf("Initialized %s", a.Name())
	return nil
}

func (a *Agent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	result, err := a.service.Regenerate(ctx)
	if err != nil {
		return err
	}

	metrics := Metrics{Videos: result.Videos, FellBack: result.FellBack}
	if result.FellBack {
		events.OnPartialFailure(fmt.Errorf("profile model unavailable, fallback stored"), time.Since(startTime))
	}
	events.OnSuccess(metrics, time.Since(startTime))
	return nil
}
