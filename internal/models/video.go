package models

import "time"

// Video is one verified upload from the trusted channel.
type Video struct {
	VideoID              string    `json:"videoId" bson:"video_id"`
	Title                string    `json:"title" bson:"title"`
	Description          string    `json:"description" bson:"description"`
	Thumbnail            string    `json:"thumbnail" bson:"thumbnail"`
	PublishedAt          time.Time `json:"publishedAt" bson:"published_at"`
	ViewCount            string    `json:"viewCount" bson:"view_count"`
	Duration             string    `json:"duration" bson:"duration"`
	DurationSeconds      int       `json:"durationSeconds" bson:"duration_seconds"`
	URL                  string    `json:"url" bson:"url"`
	LiveBroadcastContent string    `json:"liveBroadcastContent,omitempty" bson:"live_broadcast_content"`
	ChannelID            string    `json:"channelId" bson:"channel_id"`
	IsShort              bool      `json:"isShort" bson:"is_short"`
	IsVideo              bool      `json:"isVideo" bson:"is_video"`
	IsLive               bool      `json:"isLive" bson:"is_live"`
}

// RejectedVideo records a detail item discarded by the channel filter.
type RejectedVideo struct {
	VideoID   string `json:"videoId" bson:"video_id"`
	ChannelID string `json:"channelId" bson:"channel_id"`
	Reason    string `json:"reason" bson:"reason"`
}

// FetchDebug summarizes one ingestion fetch for the audit log.
type FetchDebug struct {
	ChannelID        string          `json:"channelId" bson:"channel_id"`
	SearchResults    int             `json:"searchResults" bson:"search_results"`
	Fetched          int             `json:"fetched" bson:"fetched"`
	Accepted         int             `json:"accepted" bson:"accepted"`
	Rejected         int             `json:"rejected" bson:"rejected"`
	RejectedVideos   []RejectedVideo `json:"rejectedVideos,omitempty" bson:"rejected_videos,omitempty"`
	ValidationPassed bool            `json:"validationPassed" bson:"validation_passed"`
	SearchResponse   any             `json:"searchResponse,omitempty" bson:"-"`
	VideosResponse   any             `json:"videosResponse,omitempty" bson:"-"`
}
