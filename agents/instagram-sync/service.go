// Package instagramsync keeps the curated Instagram post list. Posts come from
// configuration; the store only adds overrides and history.
package instagramsync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"portfolio-stack/agents/reel-analyzer/scraper"
	"portfolio-stack/internal/models"
	"portfolio-stack/shared/config"
	"portfolio-stack/shared/storage"

	log "github.com/sirupsen/logrus"
)

type Service struct {
	cfg   *config.InstagramConfig
	store storage.Store
}

func NewService(cfg *config.InstagramConfig, store storage.Store) *Service {
	return &Service{cfg: cfg, store: store}
}

// ConfiguredPosts turns the configured URLs into posts, main account first.
// Timestamps are staggered one day apart so the configured order survives
// newest-first sorting.
func ConfiguredPosts(cfg *config.InstagramConfig, now time.Time) []models.InstagramPost {
	posts := make([]models.InstagramPost, 0, len(cfg.Main)+len(cfg.Art))
	offset := 0
	add := func(urls []string, account models.AccountType) {
		for _, u := range urls {
			id, ok := scraper.ExtractReelID(u)
			if !ok {
				log.WithField("post_url", u).Warn("Skipping configured Instagram URL without a post id")
				continue
			}
			posts = append(posts, models.InstagramPost{
				PostID:      fmt.Sprintf("%s-%s", account, id),
				PostURL:     u,
				AccountType: account,
				Timestamp:   now.Add(-time.Duration(offset) * 24 * time.Hour),
			})
			offset++
		}
	}
	add(cfg.Main, models.AccountMain)
	add(cfg.Art, models.AccountArt)

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.After(posts[j].Timestamp)
	})
	return posts
}

// Merge returns configured posts with stored ones replacing them by id.
// Stored posts with no configured counterpart are appended.
func Merge(configured, stored []models.InstagramPost) []models.InstagramPost {
	out := append([]models.InstagramPost{}, configured...)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.PostID] = i
	}
	for _, p := range stored {
		if i, ok := index[p.PostID]; ok {
			out[i] = p
			continue
		}
		index[p.PostID] = len(out)
		out = append(out, p)
	}
	return out
}

// Sync saves configured posts the store does not have yet.
func (s *Service) Sync(ctx context.Context) (int, error) {
	posts := ConfiguredPosts(s.cfg, time.Now())

	inserted := 0
	for _, p := range posts {
		added, err := s.store.SaveInstagramPost(ctx, p)
		if err != nil {
			s.audit(ctx, models.SyncLog{Status: models.SyncError, Message: err.Error()})
			return inserted, fmt.Errorf("failed to save post %s: %w", p.PostID, err)
		}
		if added {
			inserted++
		}
	}

	s.audit(ctx, models.SyncLog{
		Status:  models.SyncSuccess,
		Message: fmt.Sprintf("Synced %d Instagram posts from config", len(posts)),
		Data:    map[string]any{"count": len(posts), "inserted": inserted},
	})
	return len(posts), nil
}

func (s *Service) List(ctx context.Context) ([]models.InstagramPost, error) {
	stored, err := s.store.ListInstagramPosts(ctx)
	if err != nil {
		return nil, err
	}
	return Merge(ConfiguredPosts(s.cfg, time.Now()), stored), nil
}

func (s *Service) audit(ctx context.Context, entry models.SyncLog) {
	entry.Type = models.SyncInstagram
	if err := s.store.AppendSyncLog(ctx, entry); err != nil {
		log.WithError(err).Error("Failed to write sync log")
	}
}
