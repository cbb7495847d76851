package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"portfolio-stack/internal/apperr"
	"portfolio-stack/internal/models"
	"portfolio-stack/shared/config"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	descriptionLimit = 200
	shortMaxSeconds  = 60
	watchURLPrefix   = "https://www.youtube.com/watch?v="

	// NoVideosMessage is the soft-empty status shown when the channel has nothing to list.
	NoVideosMessage = "No verified Just Peggy videos found."
)

// ErrUntrustedContent means the details call returned records but none came
// from the trusted channel. Nothing from such a fetch may be stored or served.
var ErrUntrustedContent = apperr.New(apperr.KindIntegrity, "Blocked: Non-authorized channel content detected.")

var durationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

type Client struct {
	service    *youtube.Service
	channelID  string
	maxResults int64
}

// FetchResult is one verified fetch. NoVideos marks the soft-empty outcome.
type FetchResult struct {
	Videos   []models.Video
	NoVideos bool
	Debug    models.FetchDebug
}

// NewClient authenticates with the API key, or with a stored OAuth token when
// youtube.token_file is set.
func NewClient(ctx context.Context, cfg *config.YouTubeConfig) (*Client, error) {
	if cfg.ChannelID == "" {
		return nil, apperr.New(apperr.KindConfig, "YOUTUBE_CHANNEL_ID is required")
	}

	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	switch {
	case cfg.TokenFile != "":
		token, err := loadToken(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to get OAuth token: %w", err)
		}
		ts := &tokenSaver{config: oauthConfig(cfg), token: token, tokenFile: cfg.TokenFile}
		opts = append(opts, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		return nil, apperr.New(apperr.KindConfig, "YOUTUBE_API_KEY environment variable is required")
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 12
	}

	return &Client{service: service, channelID: cfg.ChannelID, maxResults: maxResults}, nil
}

func (c *Client) ChannelID() string { return c.channelID }

// FetchVerifiedVideos searches the trusted channel's latest uploads, loads
// their details, and keeps only records whose channel id equals the trusted
// id. If details came back but every one was rejected it returns
// ErrUntrustedContent and no videos.
func (c *Client) FetchVerifiedVideos(ctx context.Context) (*FetchResult, error) {
	result := &FetchResult{Debug: models.FetchDebug{ChannelID: c.channelID}}
	logger := log.WithField("channel_id", c.channelID)

	searchResp, err := c.service.Search.List([]string{"snippet"}).
		ChannelId(c.channelID).
		Order("date").
		MaxResults(c.maxResults).
		Type("video").
		Context(ctx).
		Do()
	if err != nil {
		return result, upstreamError("Failed to fetch videos from Search API", err)
	}
	result.Debug.SearchResponse = searchResp
	result.Debug.SearchResults = len(searchResp.Items)
	logger.Printf("Search returned %d items", len(searchResp.Items))

	var ids []string
	for _, item := range searchResp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		logger.Warn("No video ids in search results")
		result.NoVideos = true
		return result, nil
	}

	videosResp, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(strings.Join(ids, ",")).
		Context(ctx).
		Do()
	if err != nil {
		return result, upstreamError("Failed to fetch video details", err)
	}
	result.Debug.VideosResponse = videosResp
	result.Debug.Fetched = len(videosResp.Items)

	if len(videosResp.Items) == 0 {
		logger.Warn("No video details returned")
		result.NoVideos = true
		return result, nil
	}

	videos, rejected := c.filterTrusted(videosResp.Items)
	result.Debug.Accepted = len(videos)
	result.Debug.Rejected = len(rejected)
	result.Debug.RejectedVideos = rejected
	result.Debug.ValidationPassed = len(rejected) == 0

	for _, r := range rejected {
		log.WithFields(log.Fields{"video_id": r.VideoID, "observed_channel_id": r.ChannelID}).
			Warnf("Rejected video: %s", r.Reason)
	}

	if len(videos) == 0 {
		logger.Errorf("All %d fetched videos failed channel validation", len(videosResp.Items))
		return result, ErrUntrustedContent
	}

	result.Videos = videos
	logger.Printf("Verified %d videos (%d rejected)", len(videos), len(rejected))
	return result, nil
}

func (c *Client) filterTrusted(items []*youtube.Video) ([]models.Video, []models.RejectedVideo) {
	var videos []models.Video
	var rejected []models.RejectedVideo

	for _, item := range items {
		var channelID string
		if item.Snippet != nil {
			channelID = item.Snippet.ChannelId
		}

		switch {
		case channelID == "":
			rejected = append(rejected, models.RejectedVideo{VideoID: item.Id, ChannelID: "MISSING", Reason: "Video has no channelId field"})
			continue
		case channelID != c.channelID:
			rejected = append(rejected, models.RejectedVideo{
				VideoID:   item.Id,
				ChannelID: channelID,
				Reason:    fmt.Sprintf("channelId (%s) does not match trusted channel ID (%s)", channelID, c.channelID),
			})
			continue
		}

		videos = append(videos, toVideo(item))
	}
	return videos, rejected
}

func toVideo(item *youtube.Video) models.Video {
	var duration string
	if item.ContentDetails != nil {
		duration = item.ContentDetails.Duration
	}
	seconds := parseDurationSeconds(duration)

	live := item.Snippet.LiveBroadcastContent
	if live == "" {
		live = "none"
	}

	v := models.Video{
		VideoID:              item.Id,
		Title:                item.Snippet.Title,
		Description:          truncateRunes(item.Snippet.Description, descriptionLimit),
		Thumbnail:            bestThumbnail(item.Snippet.Thumbnails),
		ViewCount:            "0",
		Duration:             duration,
		DurationSeconds:      seconds,
		URL:                  watchURLPrefix + item.Id,
		LiveBroadcastContent: live,
		ChannelID:            item.Snippet.ChannelId,
		IsShort:              seconds > 0 && seconds <= shortMaxSeconds,
		IsVideo:              seconds > shortMaxSeconds,
		IsLive:               live == "live",
	}

	if publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		v.PublishedAt = publishedAt
	}
	if item.Statistics != nil {
		v.ViewCount = strconv.FormatUint(item.Statistics.ViewCount, 10)
	}
	return v
}

func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

// parseDurationSeconds reads an ISO 8601 duration such as PT1H2M10S.
// Anything it cannot read counts as zero.
func parseDurationSeconds(duration string) int {
	if duration == "" {
		return 0
	}

	matches := durationPattern.FindStringSubmatch(duration)
	if len(matches) == 0 {
		return 0
	}

	var totalSeconds int
	for i, unit := range []int{3600, 60, 1} {
		if matches[i+1] == "" {
			continue
		}
		if n, err := strconv.Atoi(matches[i+1]); err == nil {
			totalSeconds += n * unit
		}
	}
	return totalSeconds
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// upstreamError keeps the API's own message when it sent one.
func upstreamError(prefix string, err error) error {
	msg := err.Error()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		msg = gerr.Message
	}
	return apperr.Wrap(apperr.KindUpstream, fmt.Sprintf("%s: %s", prefix, msg), err)
}
