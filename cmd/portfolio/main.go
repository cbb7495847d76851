package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	profilewriter "portfolio-stack/agents/profile-writer"
	youtubesync "portfolio-stack/agents/youtube-sync"
	"portfolio-stack/agents/youtube-sync/youtube"
	"portfolio-stack/internal/api"
	"portfolio-stack/shared/email"
	"portfolio-stack/shared/scheduler"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
)

type globalOptions struct {
	ConfigFile string `short:"c" long:"config" description:"Path to the YAML config file (default config.yaml)"`
}

var opts globalOptions

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("serve", "Run the HTTP server and scheduler",
		"Serves the public, admin and cron routes and runs scheduled syncs.", &serveCommand{})
	parser.AddCommand("sync-youtube", "Run YouTube ingestion once",
		"Fetches verified channel uploads and replaces the stored set.", &syncYouTubeCommand{})
	parser.AddCommand("sync-instagram", "Sync configured Instagram posts once",
		"Stores configured Instagram posts that are not stored yet.", &syncInstagramCommand{})
	parser.AddCommand("analyze-reel", "Analyze one Instagram reel",
		"Returns the stored analysis for a reel URL, creating it when missing.", &analyzeReelCommand{})
	parser.AddCommand("write-profile", "Regenerate the site profile once",
		"Asks the AI model for new profile text and stores it.", &writeProfileCommand{})
	parser.AddCommand("youtube-auth", "Authorize YouTube access",
		"Runs the OAuth device flow and saves the token to youtube.token_file.", &youtubeAuthCommand{})

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type serveCommand struct{}

func (c *serveCommand) Execute(args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(a.monitor)
	if err := sched.Register(a.cfg.Schedule.YouTube, youtubesync.NewAgent(a.videos)); err != nil {
		return err
	}
	if err := sched.Register(a.cfg.Schedule.Profile, profilewriter.NewAgent(a.profiles)); err != nil {
		return err
	}

	var notifier api.Notifier
	if a.cfg.Email.Enabled() {
		notifier = email.NewSender(&a.cfg.Email)
	} else {
		log.Info("SMTP not configured, contact notifications disabled")
	}

	handler := api.NewHandler(api.Options{
		Store:         a.store,
		Videos:        a.videos,
		Reels:         a.reels,
		Profiles:      a.profiles,
		Instagram:     a.instagram,
		Notifier:      notifier,
		Monitor:       a.monitor,
		Admin:         a.cfg.Admin,
		SecureCookies: a.cfg.Server.SecureCookies,
	})

	srv := &http.Server{
		Addr:         a.cfg.Server.Address,
		Handler:      api.NewServer(handler, a.cfg.Server.GinMode),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("scheduler failed: %w", err)
		}
	}()
	go func() {
		log.Infof("Starting HTTP server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-errCh:
		log.WithError(runErr).Error("Stopping after failure")
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown failed")
	}
	log.Info("Server stopped")
	return runErr
}

type syncYouTubeCommand struct{}

func (c *syncYouTubeCommand) Execute(args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.videos.Sync(ctx)
	if err != nil {
		return err
	}
	return printJSON(result)
}

type syncInstagramCommand struct{}

func (c *syncInstagramCommand) Execute(args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.instagram.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Synced %d Instagram posts\n", count)
	return nil
}

type analyzeReelCommand struct {
	Args struct {
		URL string `positional-arg-name:"reel-url" description:"Instagram reel or post URL"`
	} `positional-args:"yes" required:"yes"`
}

func (c *analyzeReelCommand) Execute(args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	analysis, cached, err := a.reels.GetOrCreate(ctx, c.Args.URL)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"analysis": analysis, "cached": cached})
}

type writeProfileCommand struct{}

func (c *writeProfileCommand) Execute(args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.profiles.Regenerate(ctx)
	if err != nil {
		return err
	}
	if result.FellBack {
		log.Warn("AI model unavailable, stored the fallback profile")
	}
	return printJSON(result.Profile)
}

type youtubeAuthCommand struct{}

func (c *youtubeAuthCommand) Execute(args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return youtube.Authorize(ctx, &cfg.YouTube)
}
