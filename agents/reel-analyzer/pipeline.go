package reelanalyzer

import (
	"context"
	"errors"

	"portfolio-stack/agents/reel-analyzer/scraper"
	"portfolio-stack/internal/apperr"
	"portfolio-stack/internal/models"
	"portfolio-stack/shared/cache"
	"portfolio-stack/shared/storage"

	log "github.com/sirupsen/logrus"
)

const invalidURLMessage = "Invalid Instagram Reel URL. Must be instagram.com/reel/* or instagram.com/p/*"

type MetadataScraper interface {
	Scrape(ctx context.Context, reelURL string) (*models.ReelMetadata, error)
}

// ContentAnalyzer is satisfied by *ai.Analyzer.
type ContentAnalyzer interface {
	AnalyzeContent(ctx context.Context, caption string, hashtags []string) (*models.ContentAnalysis, error)
	DiscoverCompetitors(ctx context.Context, keywords []string, excludeUsername string) []models.Competitor
}

// Pipeline turns a reel URL into a stored analysis, reusing an existing one
// when the normalized URL was analyzed before.
type Pipeline struct {
	scraper  MetadataScraper
	analyzer ContentAnalyzer
	store    storage.Store
	cache    cache.ReelCache
}

func NewPipeline(s MetadataScraper, a ContentAnalyzer, store storage.Store) *Pipeline {
	return &Pipeline{scraper: s, analyzer: a, store: store}
}

// UseCache puts c in front of the store for lookups.
func (p *Pipeline) UseCache(c cache.ReelCache) {
	p.cache = c
}

// GetOrCreate returns the analysis for reelURL and whether it was already
// stored. A miss runs scrape, content analysis and competitor discovery in
// sequence; competitor failures yield an empty list.
func (p *Pipeline) GetOrCreate(ctx context.Context, reelURL string) (*models.ReelAnalysis, bool, error) {
	normalized := scraper.NormalizeURL(reelURL)
	if !scraper.ValidateURL(normalized) {
		return nil, false, apperr.New(apperr.KindValidation, invalidURLMessage)
	}
	logger := log.WithField("reel_url", normalized)

	if cached, ok := p.lookup(ctx, normalized); ok {
		logger.Info("Returning cached analysis")
		return cached, true, nil
	}

	existing, err := p.store.GetReelAnalysis(ctx, normalized)
	switch {
	case err == nil:
		logger.Info("Returning stored analysis")
		p.remember(ctx, existing)
		return existing, true, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, false, err
	}

	logger.Info("Scraping reel metadata")
	meta, err := p.scraper.Scrape(ctx, normalized)
	if err != nil {
		return nil, false, err
	}

	logger.Info("Analyzing content")
	analysis, err := p.analyzer.AnalyzeContent(ctx, meta.Caption, meta.Hashtags)
	if err != nil {
		return nil, false, err
	}

	logger.Info("Discovering competitors")
	keywords := append(append([]string{}, meta.Hashtags...), analysis.Keywords...)
	competitors := p.analyzer.DiscoverCompetitors(ctx, keywords, meta.CreatorUsername)
	if competitors == nil {
		competitors = []models.Competitor{}
	}

	saved, err := p.store.UpsertReelAnalysis(ctx, &models.ReelAnalysis{
		ReelURL:         normalized,
		Caption:         meta.Caption,
		Hashtags:        meta.Hashtags,
		CreatorUsername: meta.CreatorUsername,
		ThumbnailURL:    meta.ThumbnailURL,
		AudioName:       meta.AudioName,
		AIAnalysis:      *analysis,
		Competitors:     competitors,
	})
	if err != nil {
		return nil, false, err
	}

	logger.WithField("competitors", len(competitors)).Info("Analysis saved")
	p.remember(ctx, saved)
	return saved, false, nil
}

func (p *Pipeline) lookup(ctx context.Context, reelURL string) (*models.ReelAnalysis, bool) {
	if p.cache == nil {
		return nil, false
	}
	a, ok, err := p.cache.GetReelAnalysis(ctx, reelURL)
	if err != nil {
		log.WithError(err).Warn("Reel cache lookup failed")
		return nil, false
	}
	return a, ok
}

func (p *Pipeline) remember(ctx context.Context, a *models.ReelAnalysis) {
	if p.cache == nil {
		return
	}
	if err := p.cache.SetReelAnalysis(ctx, a); err != nil {
		log.WithError(err).Warn("Reel cache write failed")
	}
}
