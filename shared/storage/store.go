// Package storage owns every piece of persisted state. Pipelines produce
// values and hand them here; nothing else mutates stored data.
package storage

import (
	"context"
	"fmt"

	"portfolio-stack/internal/apperr"
	"portfolio-stack/internal/models"
	"portfolio-stack/shared/config"
)

// ErrNotFound is returned when a lookup by key or id matches nothing.
var ErrNotFound = apperr.New(apperr.KindNotFound, "not found")

const (
	DefaultVideoLimit   = 6
	DefaultLogLimit     = 100
	DefaultMessageLimit = 100
	DefaultReelLimit    = 50
)

type Store interface {
	// ReplaceVideos swaps the entire stored video set for videos.
	ReplaceVideos(ctx context.Context, videos []models.Video) error
	// ListVideos returns stored videos, newest first.
	ListVideos(ctx context.Context, limit int) ([]models.Video, error)

	GetReelAnalysis(ctx context.Context, reelURL string) (*models.ReelAnalysis, error)
	// UpsertReelAnalysis overwrites the record for a.ReelURL, keeping the
	// CreatedAt of the first insert. It returns the stored record.
	UpsertReelAnalysis(ctx context.Context, a *models.ReelAnalysis) (*models.ReelAnalysis, error)
	ListReelAnalyses(ctx context.Context, limit int) ([]models.ReelAnalysis, error)

	AppendSyncLog(ctx context.Context, entry models.SyncLog) error
	RecentSyncLogs(ctx context.Context, limit int) ([]models.SyncLog, error)

	SaveContactMessage(ctx context.Context, msg *models.ContactMessage) error
	ListContactMessages(ctx context.Context, limit int) ([]models.ContactMessage, error)
	UpdateContactMessageStatus(ctx context.Context, id string, status models.MessageStatus) error
	DeleteContactMessage(ctx context.Context, id string) error

	GetProfile(ctx context.Context) (*models.Profile, error)
	SaveProfile(ctx context.Context, p *models.Profile) error

	// SaveInstagramPost inserts post unless one with the same PostID exists.
	SaveInstagramPost(ctx context.Context, post models.InstagramPost) (bool, error)
	ListInstagramPosts(ctx context.Context) ([]models.InstagramPost, error)

	Close(ctx context.Context) error
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg *config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "mongo":
		return NewMongoStore(ctx, cfg)
	case "file":
		return NewFileStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
