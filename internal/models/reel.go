package models

import "time"

// ReelMetadata is what could be scraped from a public post.
type ReelMetadata struct {
	Caption         string   `json:"caption"`
	Hashtags        []string `json:"hashtags"`
	CreatorUsername string   `json:"creatorUsername"`
	ThumbnailURL    string   `json:"thumbnailUrl"`
	AudioName       string   `json:"audioName,omitempty"`
}

// ContentAnalysis is the model's structured reading of a caption.
type ContentAnalysis struct {
	Topic               string   `json:"topic" bson:"topic"`
	Language            string   `json:"language" bson:"language"`
	Tone                string   `json:"tone" bson:"tone"`
	Keywords            []string `json:"keywords" bson:"keywords"`
	Audience            string   `json:"audience" bson:"audience"`
	ViralityScore       int      `json:"viralityScore" bson:"virality_score"` // 1-10
	ImprovementIdeas    []string `json:"improvementIdeas" bson:"improvement_ideas"`
	RecommendedHashtags []string `json:"recommendedHashtags" bson:"recommended_hashtags"`
}

type Competitor struct {
	Username string `json:"username" bson:"username"`
	ReelURL  string `json:"reelUrl" bson:"reel_url"`
	Reason   string `json:"reason" bson:"reason"`
}

// ReelAnalysis is cached per normalized reel URL.
type ReelAnalysis struct {
	ID              string          `json:"id,omitempty" bson:"-"`
	ReelURL         string          `json:"reelUrl" bson:"reel_url"`
	Caption         string          `json:"caption" bson:"caption"`
	Hashtags        []string        `json:"hashtags" bson:"hashtags"`
	CreatorUsername string          `json:"creatorUsername" bson:"creator_username"`
	ThumbnailURL    string          `json:"thumbnailUrl" bson:"thumbnail_url"`
	AudioName       string          `json:"audioName,omitempty" bson:"audio_name,omitempty"`
	AIAnalysis      ContentAnalysis `json:"aiAnalysis" bson:"ai_analysis"`
	Competitors     []Competitor    `json:"competitors" bson:"competitors"`
	CreatedAt       time.Time       `json:"createdAt" bson:"created_at"`
}
