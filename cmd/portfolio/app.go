package main

import (
	"context"
	"fmt"
	"os"
	"time"

	instagramsync "portfolio-stack/agents/instagram-sync"
	profilewriter "portfolio-stack/agents/profile-writer"
	reelanalyzer "portfolio-stack/agents/reel-analyzer"
	"portfolio-stack/agents/reel-analyzer/scraper"
	youtubesync "portfolio-stack/agents/youtube-sync"
	"portfolio-stack/agents/youtube-sync/youtube"
	"portfolio-stack/shared/ai"
	"portfolio-stack/shared/cache"
	"portfolio-stack/shared/config"
	"portfolio-stack/shared/logger"
	"portfolio-stack/shared/monitoring"
	"portfolio-stack/shared/storage"

	log "github.com/sirupsen/logrus"
)

// app holds the long-lived resources shared by every command.
type app struct {
	cfg       *config.Config
	store     storage.Store
	cache     *cache.Cache
	monitor   *monitoring.Monitor
	videos    *youtubesync.Service
	reels     *reelanalyzer.Pipeline
	profiles  *profilewriter.Service
	instagram *instagramsync.Service
}

func loadConfig() (*config.Config, error) {
	if opts.ConfigFile != "" {
		os.Setenv("CONFIG_FILE", opts.ConfigFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}

	a := &app{cfg: cfg, store: store, monitor: monitoring.NewMonitor()}

	redisCache, err := cache.NewCache(ctx, &cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
	}
	a.cache = redisCache

	client, err := youtube.NewClient(ctx, &cfg.YouTube)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.videos = youtubesync.NewService(client, store, client.ChannelID())

	gen := ai.NewGeminiGenerator(&cfg.AI)
	a.reels = reelanalyzer.NewPipeline(scraper.NewScraper(&cfg.Instagram), ai.NewAnalyzer(gen), store)
	if a.cache != nil {
		a.reels.UseCache(a.cache)
	}
	a.profiles = profilewriter.NewService(ai.NewProfileWriter(gen), store)
	a.instagram = instagramsync.NewService(&cfg.Instagram, store)

	return a, nil
}

func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.WithError(err).Warn("Failed to close Redis client")
		}
	}
	if err := a.store.Close(ctx); err != nil {
		log.WithError(err).Warn("Failed to close store")
	}
}
