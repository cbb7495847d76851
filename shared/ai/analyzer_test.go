package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"portfolio-stack/internal/apperr"
)

// scriptedGenerator returns canned responses in order and records prompts.
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := len(g.prompts)
	g.prompts = append(g.prompts, prompt)

	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", nil
}

func TestAnalyzeContent(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantTopic string
		wantScore int
		wantKW    int
	}{
		{
			name:      "Well formed",
			response:  `{"topic":"Painting","language":"Hinglish","tone":"casual","keywords":["art","paint"],"audience":"artists","viralityScore":8,"improvementIdeas":["hook"],"recommendedHashtags":["art"]}`,
			wantTopic: "Painting",
			wantScore: 8,
			wantKW:    2,
		},
		{"Score zero defaults", `{"topic":"x","viralityScore":0}`, "x", 5, 0},
		{"Score too high", `{"topic":"x","viralityScore":15}`, "x", 10, 0},
		{"Score negative", `{"topic":"x","viralityScore":-3}`, "x", 1, 0},
		{"Score non numeric", `{"topic":"x","viralityScore":"very viral"}`, "x", 5, 0},
		{"Score numeric string", `{"topic":"x","viralityScore":"7"}`, "x", 7, 0},
		{"Score fractional", `{"topic":"x","viralityScore":6.6}`, "x", 7, 0},
		{"Keywords wrong type", `{"topic":"x","keywords":"art, paint"}`, "x", 5, 0},
		{"Prose only", "I am unable to analyze this.", "Unknown", 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &scriptedGenerator{responses: []string{tt.response}}
			analysis, err := NewAnalyzer(gen).AnalyzeContent(context.Background(), "caption #art", []string{"art"})
			if err != nil {
				t.Fatalf("AnalyzeContent() error = %v", err)
			}
			if analysis.Topic != tt.wantTopic {
				t.Errorf("Topic = %q, want %q", analysis.Topic, tt.wantTopic)
			}
			if analysis.ViralityScore != tt.wantScore {
				t.Errorf("ViralityScore = %d, want %d", analysis.ViralityScore, tt.wantScore)
			}
			if analysis.ViralityScore < 1 || analysis.ViralityScore > 10 {
				t.Errorf("ViralityScore %d outside 1..10", analysis.ViralityScore)
			}
			if len(analysis.Keywords) != tt.wantKW {
				t.Errorf("Keywords = %v, want %d entries", analysis.Keywords, tt.wantKW)
			}
			if analysis.ImprovementIdeas == nil || analysis.RecommendedHashtags == nil {
				t.Error("list fields must never be nil")
			}
		})
	}
}

func TestAnalyzeContentDefaults(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"{}"}}
	analysis, err := NewAnalyzer(gen).AnalyzeContent(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("AnalyzeContent() error = %v", err)
	}
	if analysis.Language != "Unknown" || analysis.Tone != "Unknown" || analysis.Audience != "General" {
		t.Errorf("unexpected defaults: %+v", analysis)
	}
}

func TestAnalyzeContentCategorizesFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"Model not found", errors.New("Error 404, Message: models/gemini-x is not found"), apperr.KindAIModelNotFound},
		{"Bad key", errors.New("Error 400, Message: API key not valid. Please pass a valid API key."), apperr.KindAIUnauthorized},
		{"Unauthorized", errors.New("401 unauthorized"), apperr.KindAIUnauthorized},
		{"Quota", errors.New("Error 429, Status: RESOURCE_EXHAUSTED"), apperr.KindAIQuota},
		{"Other", errors.New("connection reset by peer"), apperr.KindAIFailed},
		{"Missing key", apperr.New(apperr.KindConfig, "GEMINI_API_KEY missing"), apperr.KindConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &scriptedGenerator{errs: []error{tt.err}}
			_, err := NewAnalyzer(gen).AnalyzeContent(context.Background(), "c", nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperr.KindOf(err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Error("original cause should be preserved")
			}
		})
	}
}

func TestAnalyzeContentEmptyResponse(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{""}}
	_, err := NewAnalyzer(gen).AnalyzeContent(context.Background(), "c", nil)
	if apperr.KindOf(err) != apperr.KindAIFailed {
		t.Errorf("error = %v, want ai_failed", err)
	}
}

func TestDiscoverCompetitors(t *testing.T) {
	t.Run("FiltersExcludedAndCaps", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("```json\n[")
		b.WriteString(`{"username":"@JustPeggy","reelUrl":"u","reason":"self"},`)
		b.WriteString(`{"username":"","reason":"nameless"},`)
		for i := 0; i < 12; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(`{"username":"creator` + string(rune('a'+i)) + `"}`)
		}
		b.WriteString("]\n```")

		gen := &scriptedGenerator{responses: []string{b.String()}}
		got := NewAnalyzer(gen).DiscoverCompetitors(context.Background(), []string{"art"}, "justpeggy")

		if len(got) != 10 {
			t.Fatalf("len = %d, want 10", len(got))
		}
		for _, c := range got {
			if strings.EqualFold(c.Username, "justpeggy") {
				t.Errorf("excluded creator returned: %+v", c)
			}
		}
		if got[0].Reason != "Similar content" {
			t.Errorf("Reason default = %q", got[0].Reason)
		}
	})

	t.Run("SendsAtMostFiveKeywords", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{"[]"}}
		keywords := []string{"#art", "art", "paint", "sketch", "diy", "craft", "music"}
		got := NewAnalyzer(gen).DiscoverCompetitors(context.Background(), keywords, "x")

		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
		if len(gen.prompts) != 1 {
			t.Fatalf("prompts = %d, want 1", len(gen.prompts))
		}
		if !strings.Contains(gen.prompts[0], "art, paint, sketch, diy, craft") {
			t.Errorf("prompt keywords wrong: %s", gen.prompts[0])
		}
		if strings.Contains(gen.prompts[0], "music") {
			t.Error("sixth keyword should not be sent")
		}
	})

	t.Run("UpstreamErrorIsSwallowed", func(t *testing.T) {
		gen := &scriptedGenerator{errs: []error{errors.New("429 quota")}}
		got := NewAnalyzer(gen).DiscoverCompetitors(context.Background(), []string{"art"}, "x")
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty non-nil list", got)
		}
	})

	t.Run("MalformedIsSwallowed", func(t *testing.T) {
		gen := &scriptedGenerator{responses: []string{"no competitors, sorry"}}
		got := NewAnalyzer(gen).DiscoverCompetitors(context.Background(), []string{"art"}, "x")
		if len(got) != 0 {
			t.Errorf("got %v, want empty", got)
		}
	})

	t.Run("NoKeywordsSkipsModel", func(t *testing.T) {
		gen := &scriptedGenerator{}
		got := NewAnalyzer(gen).DiscoverCompetitors(context.Background(), nil, "x")
		if len(got) != 0 || len(gen.prompts) != 0 {
			t.Errorf("got %v with %d prompts, want empty with none", got, len(gen.prompts))
		}
	})
}
