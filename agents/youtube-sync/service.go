package youtubesync

import (
	"context"
	"errors"
	"fmt"

	"portfolio-stack/agents/youtube-sync/youtube"
	"portfolio-stack/internal/apperr"
	"portfolio-stack/internal/models"
	"portfolio-stack/shared/storage"

	log "github.com/sirupsen/logrus"
)

// VideoFetcher is satisfied by *youtube.Client.
type VideoFetcher interface {
	FetchVerifiedVideos(ctx context.Context) (*youtube.FetchResult, error)
}

// Service runs channel ingestion and serves the public video list.
type Service struct {
	fetcher   VideoFetcher
	store     storage.Store
	channelID string
}

type SyncResult struct {
	Count    int               `json:"count"`
	NoVideos bool              `json:"noVideos,omitempty"`
	Message  string            `json:"message"`
	Debug    models.FetchDebug `json:"debug"`
}

func NewService(fetcher VideoFetcher, store storage.Store, channelID string) *Service {
	return &Service{fetcher: fetcher, store: store, channelID: channelID}
}

// Sync fetches the verified set and replaces the stored one with it. A failed
// or blocked fetch leaves the store untouched, as does a soft-empty one.
// Every outcome is written to the audit log.
func (s *Service) Sync(ctx context.Context) (*SyncResult, error) {
	result, err := s.fetcher.FetchVerifiedVideos(ctx)
	if err != nil {
		entry := models.SyncLog{Type: models.SyncYouTube, Status: models.SyncError, Message: apperr.Message(err)}
		if result != nil {
			entry.Data = map[string]any{"debug": result.Debug}
		}
		s.audit(ctx, entry)
		return nil, err
	}

	if result.NoVideos {
		log.WithField("channel_id", s.channelID).Warn(youtube.NoVideosMessage)
		s.audit(ctx, models.SyncLog{
			Type:    models.SyncYouTube,
			Status:  models.SyncSuccess,
			Message: youtube.NoVideosMessage,
			Data:    map[string]any{"count": 0, "debug": result.Debug},
		})
		return &SyncResult{NoVideos: true, Message: youtube.NoVideosMessage, Debug: result.Debug}, nil
	}

	if err := s.store.ReplaceVideos(ctx, result.Videos); err != nil {
		s.audit(ctx, models.SyncLog{Type: models.SyncYouTube, Status: models.SyncError, Message: err.Error()})
		return nil, fmt.Errorf("failed to persist videos: %w", err)
	}

	msg := fmt.Sprintf("Fetched %d videos", len(result.Videos))
	s.audit(ctx, models.SyncLog{
		Type:    models.SyncYouTube,
		Status:  models.SyncSuccess,
		Message: msg,
		Data:    map[string]any{"count": len(result.Videos), "debug": result.Debug},
	})

	return &SyncResult{Count: len(result.Videos), Message: msg, Debug: result.Debug}, nil
}

// PublicVideos returns stored videos that still carry the trusted channel id.
// When none survive it fetches a fresh set for display without storing it.
func (s *Service) PublicVideos(ctx context.Context) ([]models.Video, error) {
	stored, err := s.store.ListVideos(ctx, storage.DefaultVideoLimit)
	if err != nil {
		return nil, err
	}

	verified := s.trusted(stored)
	if dropped := len(stored) - len(verified); dropped > 0 {
		log.Warnf("Rejected %d stored videos that failed channel validation", dropped)
	}
	if len(verified) > 0 {
		return verified, nil
	}

	result, err := s.fetcher.FetchVerifiedVideos(ctx)
	if err != nil {
		return nil, err
	}

	fresh := s.trusted(result.Videos)
	if len(fresh) != len(result.Videos) {
		log.Error("Fetched videos failed the second channel check")
		return nil, youtube.ErrUntrustedContent
	}
	if len(fresh) > storage.DefaultVideoLimit {
		fresh = fresh[:storage.DefaultVideoLimit]
	}
	return fresh, nil
}

func (s *Service) trusted(videos []models.Video) []models.Video {
	out := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if v.ChannelID == "" || v.ChannelID != s.channelID {
			log.WithFields(log.Fields{"video_id": v.VideoID, "observed_channel_id": v.ChannelID}).
				Warn("Dropping video from untrusted channel")
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *Service) audit(ctx context.Context, entry models.SyncLog) {
	if err := s.store.AppendSyncLog(ctx, entry); err != nil {
		log.WithError(err).Error("Failed to write sync log")
	}
}

// IsBlocked reports whether err is the untrusted-content integrity failure.
func IsBlocked(err error) bool {
	return errors.Is(err, youtube.ErrUntrustedContent)
}
