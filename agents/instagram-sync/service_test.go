package instagramsync

import (
	"context"
	"testing"
	"time"

	"portfolio-stack/internal/models"
	"portfolio-stack/shared/config"
	"portfolio-stack/shared/storage"
)

func testConfig() *config.InstagramConfig {
	return &config.InstagramConfig{
		Main: []string{"https://www.instagram.com/p/M1/", "https://www.instagram.com/justpeggy/"},
		Art:  []string{"https://www.instagram.com/p/A1/"},
	}
}

func TestConfiguredPosts(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := ConfiguredPosts(testConfig(), now)

	if len(posts) != 2 {
		t.Fatalf("posts = %+v, want 2 (URL without id skipped)", posts)
	}
	if posts[0].PostID != "main-M1" || posts[0].AccountType != models.AccountMain || !posts[0].Timestamp.Equal(now) {
		t.Errorf("posts[0] = %+v", posts[0])
	}
	if posts[1].PostID != "art-A1" || !posts[1].Timestamp.Equal(now.Add(-24*time.Hour)) {
		t.Errorf("posts[1] = %+v", posts[1])
	}
}

func TestMerge(t *testing.T) {
	configured := []models.InstagramPost{{PostID: "main-1", PostURL: "config"}, {PostID: "art-2", PostURL: "config"}}
	stored := []models.InstagramPost{{PostID: "art-2", PostURL: "stored"}, {PostID: "main-9", PostURL: "stored"}}

	got := Merge(configured, stored)

	want := []struct{ id, url string }{{"main-1", "config"}, {"art-2", "stored"}, {"main-9", "stored"}}
	if len(got) != len(want) {
		t.Fatalf("Merge() = %+v", got)
	}
	for i, w := range want {
		if got[i].PostID != w.id || got[i].PostURL != w.url {
			t.Errorf("got[%d] = %+v, want %s from %s", i, got[i], w.id, w.url)
		}
	}
}

func TestSyncInsertsOnlyMissing(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	svc := NewService(testConfig(), store)

	for i := 0; i < 2; i++ {
		count, err := svc.Sync(ctx)
		if err != nil || count != 2 {
			t.Fatalf("Sync() = %d, %v", count, err)
		}
	}

	stored, _ := store.ListInstagramPosts(ctx)
	if len(stored) != 2 {
		t.Errorf("stored %d posts, want 2", len(stored))
	}

	logs, _ := store.RecentSyncLogs(ctx, 1)
	if len(logs) != 1 || logs[0].Type != models.SyncInstagram || logs[0].Message != "Synced 2 Instagram posts from config" {
		t.Errorf("logs = %+v", logs)
	}

	listed, err := svc.List(ctx)
	if err != nil || len(listed) != 2 {
		t.Errorf("List() = %+v, %v", listed, err)
	}
}
