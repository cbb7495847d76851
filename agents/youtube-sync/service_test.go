package youtubesync

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-stack/agents/youtube-sync/youtube"
	"portfolio-stack/internal/apperr"
	"portfolio-stack/internal/models"
	"portfolio-stack/shared/monitoring"
	"portfolio-stack/shared/scheduler"
	"portfolio-stack/shared/storage"
)

const trusted = "UCtrusted"

type scriptedFetcher struct {
	results []*youtube.FetchResult
	errs    []error
	calls   int
}

func (f *scriptedFetcher) FetchVerifiedVideos(ctx context.Context) (*youtube.FetchResult, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var res *youtube.FetchResult
	if i < len(f.results) {
		res = f.results[i]
	}
	if res == nil {
		res = &youtube.FetchResult{}
	}
	return res, err
}

func videos(ids ...string) []models.Video {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Video, len(ids))
	for i, id := range ids {
		out[i] = models.Video{VideoID: id, ChannelID: trusted, PublishedAt: base.Add(time.Duration(i) * time.Hour)}
	}
	return out
}

func newStore(t *testing.T) *storage.FileStore {
	t.Helper()
	fs, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return fs
}

func storedIDs(t *testing.T, store storage.Store) map[string]bool {
	t.Helper()
	list, err := store.ListVideos(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListVideos() error = %v", err)
	}
	ids := make(map[string]bool)
	for _, v := range list {
		ids[v.VideoID] = true
	}
	return ids
}

func TestSyncSmallerSetReplacesOld(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	fetcher := &scriptedFetcher{results: []*youtube.FetchResult{
		{Videos: videos("a", "b", "c", "d")},
		{Videos: videos("c", "e")},
	}}
	svc := NewService(fetcher, store, trusted)

	if _, err := svc.Sync(ctx); err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}
	res, err := svc.Sync(ctx)
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	if res.Count != 2 || res.Message != "Fetched 2 videos" {
		t.Errorf("result = %+v", res)
	}

	ids := storedIDs(t, store)
	if len(ids) != 2 || !ids["c"] || !ids["e"] {
		t.Errorf("stored = %v, want exactly c and e", ids)
	}
}

func TestSyncIntegrityFailureLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	fetcher := &scriptedFetcher{
		results: []*youtube.FetchResult{{Videos: videos("a", "b")}, {Debug: models.FetchDebug{Fetched: 3, Rejected: 3}}},
		errs:    []error{nil, youtube.ErrUntrustedContent},
	}
	svc := NewService(fetcher, store, trusted)

	if _, err := svc.Sync(ctx); err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}
	_, err := svc.Sync(ctx)
	if !IsBlocked(err) {
		t.Fatalf("error = %v, want blocked", err)
	}

	ids := storedIDs(t, store)
	if len(ids) != 2 || !ids["a"] || !ids["b"] {
		t.Errorf("stored = %v, want previous set untouched", ids)
	}

	logs, _ := store.RecentSyncLogs(ctx, 1)
	if len(logs) != 1 || logs[0].Status != models.SyncError || logs[0].Message != "Blocked: Non-authorized channel content detected." {
		t.Errorf("latest audit entry = %+v", logs)
	}
}

func TestSyncSoftEmptyLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	fetcher := &scriptedFetcher{results: []*youtube.FetchResult{
		{Videos: videos("a")},
		{NoVideos: true},
	}}
	svc := NewService(fetcher, store, trusted)

	svc.Sync(ctx)
	res, err := svc.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !res.NoVideos || res.Message != youtube.NoVideosMessage {
		t.Errorf("result = %+v", res)
	}
	if ids := storedIDs(t, store); !ids["a"] {
		t.Errorf("stored = %v, want a kept", ids)
	}
}

func TestSyncUpstreamErrorIsAudited(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	upstream := apperr.New(apperr.KindUpstream, "Failed to fetch videos from Search API: quota")
	svc := NewService(&scriptedFetcher{errs: []error{upstream}}, store, trusted)

	if _, err := svc.Sync(ctx); !errors.Is(err, upstream) {
		t.Fatalf("error = %v, want upstream", err)
	}
	logs, _ := store.RecentSyncLogs(ctx, 10)
	if len(logs) != 1 || logs[0].Type != models.SyncYouTube || logs[0].Message != upstream.Message {
		t.Errorf("logs = %+v", logs)
	}
}

func TestPublicVideosRevalidatesStoredRecords(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	tampered := videos("good", "bad")
	tampered[1].ChannelID = "UCattacker"
	if err := store.ReplaceVideos(ctx, tampered); err != nil {
		t.Fatalf("ReplaceVideos() error = %v", err)
	}

	fetcher := &scriptedFetcher{}
	svc := NewService(fetcher, store, trusted)

	got, err := svc.PublicVideos(ctx)
	if err != nil {
		t.Fatalf("PublicVideos() error = %v", err)
	}
	if len(got) != 1 || got[0].VideoID != "good" {
		t.Errorf("got %+v, want only good", got)
	}
	if fetcher.calls != 0 {
		t.Error("no fresh fetch expected while verified records exist")
	}
}

func TestPublicVideosFallsBackToFreshFetch(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	bad := videos("x")
	bad[0].ChannelID = ""
	store.ReplaceVideos(ctx, bad)

	fetcher := &scriptedFetcher{results: []*youtube.FetchResult{{Videos: videos("1", "2", "3", "4", "5", "6", "7")}}}
	svc := NewService(fetcher, store, trusted)

	got, err := svc.PublicVideos(ctx)
	if err != nil {
		t.Fatalf("PublicVideos() error = %v", err)
	}
	if len(got) != storage.DefaultVideoLimit {
		t.Errorf("len = %d, want %d", len(got), storage.DefaultVideoLimit)
	}
	if ids := storedIDs(t, store); !ids["x"] || len(ids) != 1 {
		t.Errorf("fresh fetch must not be persisted, stored = %v", ids)
	}
}

func TestPublicVideosBlocksUntrustedFreshFetch(t *testing.T) {
	leaked := videos("z")
	leaked[0].ChannelID = "UCother"
	svc := NewService(&scriptedFetcher{results: []*youtube.FetchResult{{Videos: leaked}}}, newStore(t), trusted)

	_, err := svc.PublicVideos(context.Background())
	if !IsBlocked(err) {
		t.Errorf("error = %v, want blocked", err)
	}
}

func TestAgentRunOnce(t *testing.T) {
	store := newStore(t)
	fetcher := &scriptedFetcher{results: []*youtube.FetchResult{
		{Videos: videos("a"), Debug: models.FetchDebug{Rejected: 1}},
	}}
	agent := NewAgent(NewService(fetcher, store, trusted))
	monitor := monitoring.NewMonitor()

	if err := agent.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := scheduler.New(monitor).RunOnce(context.Background(), agent); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	status := monitor.Status()
	if len(status) != 1 || status[0].Summary != "stored 1 videos, rejected 1" {
		t.Errorf("status = %+v", status)
	}
}

func TestSyncMetricsSummary(t *testing.T) {
	if got := (SyncMetrics{NoVideos: true}).GetSummary(); got != "no videos found, store unchanged" {
		t.Errorf("GetSummary() = %q", got)
	}
	if got := (SyncMetrics{Stored: 6}).GetSummary(); got != "stored 6 videos, rejected 0" {
		t.Errorf("GetSummary() = %q", got)
	}
}
