package profilewriter

import (
	"context"
	"testing"
	"time"

	"portfolio-stack/internal/models"
	"portfolio-stack/shared/monitoring"
	"portfolio-stack/shared/scheduler"
	"portfolio-stack/shared/storage"
)

type stubWriter struct {
	fellBack bool
	seen     []models.Video
}

func (w *stubWriter) Write(ctx context.Context, videos []models.Video) (*models.Profile, bool) {
	w.seen = videos
	return &models.Profile{Bio: "bio", Tagline: "tagline", Skills: []string{"Art"}, GeneratedAt: time.Now()}, w.fellBack
}

func newStore(t *testing.T) *storage.FileStore {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return store
}

func TestRegenerate(t *testing.T) {
	tests := []struct {
		name     string
		fellBack bool
		message  string
	}{
		{"Generated", false, "Profile generated successfully"},
		{"Fallback", true, "Profile generated from fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			store.ReplaceVideos(ctx, []models.Video{{VideoID: "a", Title: "Clay"}, {VideoID: "b", Title: "Ink"}})
			writer := &stubWriter{fellBack: tt.fellBack}

			result, err := NewService(writer, store).Regenerate(ctx)
			if err != nil {
				t.Fatalf("Regenerate() error = %v", err)
			}
			if result.FellBack != tt.fellBack || result.Videos != 2 || len(writer.seen) != 2 {
				t.Errorf("result = %+v, writer saw %d videos", result, len(writer.seen))
			}

			saved, err := store.GetProfile(ctx)
			if err != nil || saved.Bio != "bio" {
				t.Errorf("GetProfile() = %+v, %v", saved, err)
			}

			logs, _ := store.RecentSyncLogs(ctx, 1)
			if len(logs) != 1 || logs[0].Type != models.SyncProfile || logs[0].Message != tt.message {
				t.Errorf("logs = %+v", logs)
			}
		})
	}
}

func TestAgentReportsFallbackAsPartialFailure(t *testing.T) {
	monitor := monitoring.NewMonitor()
	agent := NewAgent(NewService(&stubWriter{fellBack: true}, newStore(t)))

	if err := scheduler.New(monitor).RunOnce(context.Background(), agent); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	status := monitor.Status()
	if len(status) != 1 || status[0].Agent != "profile-writer" || status[0].Summary != "fallback profile stored" {
		t.Errorf("status = %+v", status)
	}
}

func TestAgentRequiresService(t *testing.T) {
	if err := NewAgent(nil).Initialize(); err == nil {
		t.Error("expected error for missing service")
	}
}
