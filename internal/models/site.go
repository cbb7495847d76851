package models

import "time"

type SyncType string

const (
	SyncYouTube   SyncType = "youtube"
	SyncInstagram SyncType = "instagram"
	SyncProfile   SyncType = "profile"
)

type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncError   SyncStatus = "error"
)

// SyncLog is an append-only audit entry for one pipeline run.
type SyncLog struct {
	ID        string     `json:"id,omitempty" bson:"-"`
	Type      SyncType   `json:"type" bson:"type"`
	Status    SyncStatus `json:"status" bson:"status"`
	Message   string     `json:"message" bson:"message"`
	Timestamp time.Time  `json:"timestamp" bson:"timestamp"`
	Data      any        `json:"data,omitempty" bson:"data,omitempty"`
}

type MessageStatus string

const (
	MessageNew  MessageStatus = "new"
	MessageRead MessageStatus = "read"
)

type ContactMessage struct {
	ID          string        `json:"id" bson:"-"`
	Name        string        `json:"name" bson:"name"`
	ContactInfo string        `json:"contactInfo" bson:"contact_info"`
	Message     string        `json:"message" bson:"message"`
	Status      MessageStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
}

type Profile struct {
	Bio         string    `json:"bio" bson:"bio"`
	Tagline     string    `json:"tagline" bson:"tagline"`
	Skills      []string  `json:"skills" bson:"skills"`
	Personality string    `json:"personality" bson:"personality"`
	LastUpdated time.Time `json:"lastUpdated" bson:"last_updated"`
	GeneratedAt time.Time `json:"generatedAt" bson:"generated_at"`
}

type AccountType string

const (
	AccountMain AccountType = "main"
	AccountArt  AccountType = "art"
)

type InstagramPost struct {
	PostID      string      `json:"postId" bson:"post_id"`
	PostURL     string      `json:"postUrl" bson:"post_url"`
	AccountType AccountType `json:"accountType" bson:"account_type"`
	Timestamp   time.Time   `json:"timestamp" bson:"timestamp"`
}
