package ai

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"portfolio-stack/internal/apperr"
	"portfolio-stack/internal/models"

	log "github.com/sirupsen/logrus"
)

const (
	maxCompetitorKeywords = 5
	maxCompetitors        = 10
	defaultViralityScore  = 5
)

type Analyzer struct {
	gen Generator
}

func NewAnalyzer(gen Generator) *Analyzer {
	return &Analyzer{gen: gen}
}

// AnalyzeContent asks the model for a structured reading of a reel caption.
// A failed model call returns a categorized *apperr.Error; a response that is
// present but malformed degrades field by field to safe defaults.
func (a *Analyzer) AnalyzeContent(ctx context.Context, caption string, hashtags []string) (*models.ContentAnalysis, error) {
	prompt := buildContentPrompt(caption, hashtags)

	responseText, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("Gemini content analysis failed")
		return nil, classifyError(err)
	}
	if responseText == "" {
		return nil, apperr.New(apperr.KindAIFailed, "Empty response from Gemini API. Please retry.")
	}

	return parseContentAnalysis(responseText), nil
}

// DiscoverCompetitors is best-effort: any failure yields an empty list.
func (a *Analyzer) DiscoverCompetitors(ctx context.Context, keywords []string, excludeUsername string) []models.Competitor {
	keywords = firstKeywords(keywords, maxCompetitorKeywords)
	if len(keywords) == 0 {
		log.Println("No keywords available for competitor discovery")
		return []models.Competitor{}
	}

	responseText, err := a.gen.Generate(ctx, buildCompetitorPrompt(keywords))
	if err != nil {
		log.WithError(err).Warn("Competitor discovery failed, returning empty list")
		return []models.Competitor{}
	}
	if responseText == "" {
		log.Warn("Empty response from competitor discovery, returning empty list")
		return []models.Competitor{}
	}

	competitors, err := parseCompetitors(responseText, excludeUsername)
	if err != nil {
		log.WithError(err).Warn("Failed to parse competitor response, returning empty list")
		return []models.Competitor{}
	}
	return competitors
}

func buildContentPrompt(caption string, hashtags []string) string {
	return fmt.Sprintf(`Analyze this Instagram reel content and return ONLY valid JSON (no markdown, no code blocks):

Caption: %s
Hashtags: %s

Return JSON in this exact format:
{
  "topic": "string describing the main topic/theme",
  "language": "string (e.g., English, Hindi, Hinglish)",
  "tone": "string (e.g., funny, educational, inspirational, casual)",
  "keywords": ["keyword1", "keyword2", "keyword3"],
  "audience": "string describing target audience",
  "viralityScore": number (1-10, where 10 is most viral),
  "improvementIdeas": ["idea1", "idea2", "idea3"],
  "recommendedHashtags": ["hashtag1", "hashtag2", "hashtag3"]
}

Only return valid JSON, nothing else.`,
		truncateString(caption, 2000),
		strings.Join(hashtags, ", "),
	)
}

func buildCompetitorPrompt(keywords []string) string {
	return fmt.Sprintf(`Based on these keywords: %s

Find and rank 5-10 Instagram reel creators who create similar content. These should be potential competitors.

Return ONLY valid JSON array (no markdown, no code blocks):
[
  {
    "username": "creator_username",
    "reelUrl": "https://www.instagram.com/reel/ABC123/",
    "reason": "Why this creator is a competitor (1-2 sentences)"
  }
]

Only return valid JSON array, nothing else. If you cannot find real competitors, return an empty array [].`,
		strings.Join(keywords, ", "),
	)
}

// parseContentAnalysis never fails; missing or mistyped fields fall back to defaults.
func parseContentAnalysis(response string) *models.ContentAnalysis {
	var raw map[string]any
	if err := ExtractJSONObject(response, &raw); err != nil {
		log.WithError(err).Warn("Gemini returned malformed analysis, using defaults")
		raw = map[string]any{}
	}

	return &models.ContentAnalysis{
		Topic:               stringField(raw, "topic", "Unknown"),
		Language:            stringField(raw, "language", "Unknown"),
		Tone:                stringField(raw, "tone", "Unknown"),
		Keywords:            stringList(raw["keywords"]),
		Audience:            stringField(raw, "audience", "General"),
		ViralityScore:       clampScore(raw["viralityScore"]),
		ImprovementIdeas:    stringList(raw["improvementIdeas"]),
		RecommendedHashtags: stringList(raw["recommendedHashtags"]),
	}
}

func parseCompetitors(response, excludeUsername string) ([]models.Competitor, error) {
	var raw []map[string]any
	if err := ExtractJSONArray(response, &raw); err != nil {
		return nil, err
	}

	exclude := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(excludeUsername), "@"))
	competitors := make([]models.Competitor, 0, len(raw))

	for _, entry := range raw {
		username := strings.TrimPrefix(stringField(entry, "username", ""), "@")
		if username == "" || strings.ToLower(username) == exclude {
			continue
		}
		competitors = append(competitors, models.Competitor{
			Username: username,
			ReelURL:  stringField(entry, "reelUrl", ""),
			Reason:   stringField(entry, "reason", "Similar content"),
		})
		if len(competitors) == maxCompetitors {
			break
		}
	}

	return competitors, nil
}

func stringField(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return fallback
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// clampScore maps the model's score onto 1..10. Absent, zero, or non-numeric
// values become the midpoint.
func clampScore(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return defaultViralityScore
		}
		f = parsed
	default:
		return defaultViralityScore
	}

	if f == 0 || math.IsNaN(f) {
		return defaultViralityScore
	}

	switch {
	case f < 1:
		return 1
	case f > 10:
		return 10
	}
	return int(math.Round(f))
}

func firstKeywords(keywords []string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range keywords {
		k = strings.TrimSpace(strings.TrimPrefix(k, "#"))
		key := strings.ToLower(k)
		if k == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
		if len(out) == limit {
			break
		}
	}
	return out
}

