package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio-stack/internal/models"

	log "github.com/sirupsen/logrus"
)

// ProfileWriter drafts the site's bio text from recent uploads.
type ProfileWriter struct {
	gen Generator
}

func NewProfileWriter(gen Generator) *ProfileWriter {
	return &ProfileWriter{gen: gen}
}

// Write returns a generated profile, or the built-in fallback when the model
// call or its response is unusable. fellBack reports which one was returned.
func (w *ProfileWriter) Write(ctx context.Context, videos []models.Video) (profile *models.Profile, fellBack bool) {
	now := time.Now()

	responseText, err := w.gen.Generate(ctx, buildProfilePrompt(videos))
	if err != nil {
		log.WithError(err).Warn("Profile generation failed, using fallback profile")
		return FallbackProfile(now), true
	}

	var result struct {
		Bio         string   `json:"bio"`
		Tagline     string   `json:"tagline"`
		Skills      []string `json:"skills"`
		Personality string   `json:"personality"`
	}
	if err := ExtractJSONObject(responseText, &result); err != nil {
		log.WithError(err).Warn("Could not parse profile JSON, using fallback profile")
		return FallbackProfile(now), true
	}

	fallback := FallbackProfile(now)
	profile = &models.Profile{
		Bio:         orDefault(result.Bio, fallback.Bio),
		Tagline:     orDefault(result.Tagline, fallback.Tagline),
		Skills:      result.Skills,
		Personality: orDefault(result.Personality, fallback.Personality),
		LastUpdated: now,
		GeneratedAt: now,
	}
	if len(profile.Skills) == 0 {
		profile.Skills = fallback.Skills
	}
	return profile, false
}

func FallbackProfile(now time.Time) *models.Profile {
	return &models.Profile{
		Bio:         "Creative YouTuber aur Artist jo apne art se duniya ko inspire karti hai! Main videos banati hoon, art create karti hoon, aur apne journey ko share karti hoon.",
		Tagline:     "Creating magic, one video at a time ✨",
		Skills:      []string{"Video Editing", "Digital Art", "Content Creation", "Storytelling", "Graphic Design", "Animation"},
		Personality: "Creative, passionate, aur always exploring new ideas! Main believe karti hoon ki art se duniya change ho sakti hai.",
		LastUpdated: now,
		GeneratedAt: now,
	}
}

func buildProfilePrompt(videos []models.Video) string {
	titles := make([]string, 0, len(videos))
	descriptions := make([]string, 0, len(videos))
	for _, v := range videos {
		titles = append(titles, v.Title)
		descriptions = append(descriptions, v.Description)
	}

	return fmt.Sprintf(`You are a creative content writer specializing in Hinglish (Hindi-English mix) content for social media creators.
Create a Hinglish bio for a YouTuber and Artist.

Context:
- Recent Video Titles: %s
- Video Content: %s

Generate a creative, engaging profile in Hinglish that:
1. Bio: A 3-4 sentence bio mixing Hindi and English naturally, describing the creator as a creative YouTuber and artist
2. Tagline: A catchy one-liner in Hinglish
3. Skills: Array of 6-8 skills (mix of Hindi and English terms)
4. Personality: A 2-3 sentence description of personality traits in Hinglish

Return ONLY valid JSON in this exact format:
{
  "bio": "string",
  "tagline": "string",
  "skills": ["string", "string"],
  "personality": "string"
}`,
		strings.Join(titles, ", "),
		truncateString(strings.Join(descriptions, " "), 1500),
	)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
