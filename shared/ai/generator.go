package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"portfolio-stack/internal/apperr"
	"portfolio-stack/shared/config"

	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// Generator turns a prompt into free text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator creates its client on first use and reuses it for the
// lifetime of the process.
type GeminiGenerator struct {
	apiKey string
	model  string

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGeminiGenerator(cfg *config.AIConfig) *GeminiGenerator {
	return &GeminiGenerator{
		apiKey: cfg.GeminiAPIKey,
		model:  cfg.Model,
	}
}

func (g *GeminiGenerator) Model() string { return g.model }

func (g *GeminiGenerator) getClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		if g.apiKey == "" {
			g.initErr = apperr.New(apperr.KindConfig, "GEMINI_API_KEY environment variable is required for AI analysis")
			return
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			g.initErr = fmt.Errorf("failed to create Gemini client: %w", err)
			return
		}
		g.client = client
		log.Printf("Gemini client initialized (model %s)", g.model)
	})
	return g.client, g.initErr
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Text()), nil
}

// classifyError maps a failed model call onto an actionable category.
func classifyError(err error) *apperr.Error {
	msg := strings.ToLower(err.Error())

	switch {
	case apperr.KindOf(err) == apperr.KindConfig:
		return apperr.Wrap(apperr.KindConfig, apperr.Message(err), err)
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		return apperr.Wrap(apperr.KindAIModelNotFound, "Gemini model not found. Please check API configuration.", err)
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "api key not valid") || strings.Contains(msg, "permission_denied"):
		return apperr.Wrap(apperr.KindAIUnauthorized, "Gemini API key is invalid. Please check your GEMINI_API_KEY.", err)
	case strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted"):
		return apperr.Wrap(apperr.KindAIQuota, "Gemini API quota exceeded. Please retry later.", err)
	default:
		return apperr.Wrap(apperr.KindAIFailed, "Gemini analysis failed. Please retry.", err)
	}
}
