// Package scraper reads public metadata for an Instagram reel. It tries the
// oEmbed endpoint first, then the post page itself, and finally returns a
// minimal record built from the URL alone.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"portfolio-stack/internal/apperr"
	"portfolio-stack/internal/models"
	"portfolio-stack/shared/config"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

const (
	unknownCreator = "unknown"
	maxBodyBytes   = 4 << 20
)

var (
	hashtagPattern     = regexp.MustCompile(`#\w+`)
	authorURLPattern   = regexp.MustCompile(`instagram\.com/([^/?#]+)`)
	ownerPattern       = regexp.MustCompile(`"owner":\s*\{\s*"username":\s*"([^"]+)"`)
	usernameKeyPattern = regexp.MustCompile(`"username":\s*"([^"]+)"`)
)

type Scraper struct {
	client    *http.Client
	oembedURL string
	userAgent string
	timeout   time.Duration
}

type oembedResponse struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	AuthorURL    string `json:"author_url"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func NewScraper(cfg *config.InstagramConfig) *Scraper {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		oembedURL: cfg.OEmbedURL,
		userAgent: cfg.UserAgent,
		timeout:   timeout,
	}
}

// Scrape never fails once the URL yields a shortcode. Upstream problems only
// downgrade the result.
func (s *Scraper) Scrape(ctx context.Context, reelURL string) (*models.ReelMetadata, error) {
	id, ok := ExtractReelID(reelURL)
	if !ok {
		return nil, apperr.New(apperr.KindValidation, "Invalid Instagram Reel URL format")
	}
	logger := log.WithField("reel_url", reelURL)

	meta, err := s.fromOEmbed(ctx, reelURL, id)
	if err == nil {
		return meta, nil
	}
	logger.WithError(err).Warn("oEmbed lookup failed, trying page fallback")

	meta, err = s.fromPage(ctx, reelURL, id)
	if err == nil {
		return meta, nil
	}
	logger.WithError(err).Warn("Page fallback failed, returning minimal metadata")

	return &models.ReelMetadata{
		Hashtags:        []string{},
		CreatorUsername: unknownCreator,
		ThumbnailURL:    fallbackThumbnail(id),
	}, nil
}

func (s *Scraper) fromOEmbed(ctx context.Context, reelURL, id string) (*models.ReelMetadata, error) {
	if s.oembedURL == "" {
		return nil, fmt.Errorf("no oEmbed endpoint configured")
	}
	body, err := s.fetch(ctx, s.oembedURL+"?url="+url.QueryEscape(reelURL))
	if err != nil {
		return nil, err
	}

	var resp oembedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode oEmbed response: %w", err)
	}

	creator := unknownCreator
	if m := authorURLPattern.FindStringSubmatch(resp.AuthorURL); m != nil {
		creator = m[1]
	}

	text := resp.Title
	if text == "" {
		text = resp.Description
	}

	thumbnail := resp.ThumbnailURL
	if thumbnail == "" {
		thumbnail = fallbackThumbnail(id)
	}

	return &models.ReelMetadata{
		Caption:         resp.Title,
		Hashtags:        ExtractHashtags(text),
		CreatorUsername: creator,
		ThumbnailURL:    thumbnail,
	}, nil
}

func (s *Scraper) fromPage(ctx context.Context, reelURL, id string) (*models.ReelMetadata, error) {
	body, err := s.fetch(ctx, reelURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	if meta, ok := fromJSONLD(doc, id); ok {
		return meta, nil
	}

	metaContent := func(property string) string {
		return strings.TrimSpace(doc.Find(`meta[property="` + property + `"]`).First().AttrOr("content", ""))
	}

	caption := metaContent("og:title")
	if caption == "" {
		caption = metaContent("og:description")
	}
	thumbnail := metaContent("og:image")
	if thumbnail == "" {
		thumbnail = fallbackThumbnail(id)
	}

	creator := unknownCreator
	if m := ownerPattern.FindSubmatch(body); m != nil {
		creator = string(m[1])
	} else if m := usernameKeyPattern.FindSubmatch(body); m != nil {
		creator = string(m[1])
	}

	return &models.ReelMetadata{
		Caption:         caption,
		Hashtags:        ExtractHashtags(caption),
		CreatorUsername: creator,
		ThumbnailURL:    thumbnail,
	}, nil
}

func fromJSONLD(doc *goquery.Document, id string) (*models.ReelMetadata, bool) {
	raw := doc.Find(`script[type="application/ld+json"]`).First().Text()
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	var ld map[string]any
	if err := json.Unmarshal([]byte(raw), &ld); err != nil {
		log.WithError(err).Debug("Ignoring unparsable JSON-LD block")
		return nil, false
	}

	caption, _ := ld["caption"].(string)
	if caption == "" {
		caption, _ = ld["description"].(string)
	}

	creator := unknownCreator
	switch author := ld["author"].(type) {
	case string:
		creator = strings.TrimPrefix(author, "@")
	case map[string]any:
		if name, ok := author["name"].(string); ok && name != "" {
			creator = strings.TrimPrefix(name, "@")
		}
	}

	thumbnail := fallbackThumbnail(id)
	switch image := ld["image"].(type) {
	case string:
		if image != "" {
			thumbnail = image
		}
	case []any:
		if len(image) > 0 {
			if first, ok := image[0].(string); ok && first != "" {
				thumbnail = first
			}
		}
	}

	return &models.ReelMetadata{
		Caption:         caption,
		Hashtags:        ExtractHashtags(caption),
		CreatorUsername: creator,
		ThumbnailURL:    thumbnail,
	}, true
}

func (s *Scraper) fetch(ctx context.Context, target string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// ExtractHashtags returns lowercased tags without the leading '#', in order
// of first appearance.
func ExtractHashtags(text string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, match := range hashtagPattern.FindAllString(text, -1) {
		tag := strings.ToLower(match[1:])
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
