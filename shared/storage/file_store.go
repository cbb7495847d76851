package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"portfolio-stack/internal/models"

	"github.com/google/uuid"
)

// FileStore keeps all state in a single JSON document on disk. It backs
// local development and tests where no MongoDB is available.
type FileStore struct {
	filePath string
	mu       sync.RWMutex
	data     fileData
}

type fileData struct {
	Videos         []models.Video                  `json:"videos"`
	ReelAnalyses   map[string]*models.ReelAnalysis `json:"reel_analyses"`
	SyncLogs       []models.SyncLog                `json:"sync_logs"`
	Messages       []models.ContactMessage         `json:"contact_messages"`
	Profile        *models.Profile                 `json:"profile,omitempty"`
	InstagramPosts []models.InstagramPost          `json:"instagram_posts"`
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fs := &FileStore{
		filePath: filepath.Join(dataDir, "portfolio.json"),
		data:     fileData{ReelAnalyses: make(map[string]*models.ReelAnalysis)},
	}

	if err := fs.load(); err != nil {
		return nil, fmt.Errorf("failed to load store data: %w", err)
	}

	return fs, nil
}

func (fs *FileStore) ReplaceVideos(ctx context.Context, videos []models.Video) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.data.Videos = append([]models.Video(nil), videos...)
	return fs.save()
}

func (fs *FileStore) ListVideos(ctx context.Context, limit int) ([]models.Video, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := append([]models.Video(nil), fs.data.Videos...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return head(out, limit), nil
}

func (fs *FileStore) GetReelAnalysis(ctx context.Context, reelURL string) (*models.ReelAnalysis, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	a, ok := fs.data.ReelAnalyses[reelURL]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (fs *FileStore) UpsertReelAnalysis(ctx context.Context, a *models.ReelAnalysis) (*models.ReelAnalysis, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	stored := *a
	if existing, ok := fs.data.ReelAnalyses[a.ReelURL]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.ID = uuid.NewString()
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = time.Now()
		}
	}
	fs.data.ReelAnalyses[a.ReelURL] = &stored

	if err := fs.save(); err != nil {
		return nil, err
	}
	cp := stored
	return &cp, nil
}

func (fs *FileStore) ListReelAnalyses(ctx context.Context, limit int) ([]models.ReelAnalysis, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]models.ReelAnalysis, 0, len(fs.data.ReelAnalyses))
	for _, a := range fs.data.ReelAnalyses {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return head(out, limit), nil
}

func (fs *FileStore) AppendSyncLog(ctx context.Context, entry models.SyncLog) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entry.ID = uuid.NewString()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	fs.data.SyncLogs = append(fs.data.SyncLogs, entry)
	return fs.save()
}

func (fs *FileStore) RecentSyncLogs(ctx context.Context, limit int) ([]models.SyncLog, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := append([]models.SyncLog(nil), fs.data.SyncLogs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return head(out, limit), nil
}

func (fs *FileStore) SaveContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	msg.ID = uuid.NewString()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if msg.Status == "" {
		msg.Status = models.MessageNew
	}
	fs.data.Messages = append(fs.data.Messages, *msg)
	return fs.save()
}

func (fs *FileStore) ListContactMessages(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := append([]models.ContactMessage(nil), fs.data.Messages...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return head(out, limit), nil
}

func (fs *FileStore) UpdateContactMessageStatus(ctx context.Context, id string, status models.MessageStatus) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for i := range fs.data.Messages {
		if fs.data.Messages[i].ID == id {
			fs.data.Messages[i].Status = status
			return fs.save()
		}
	}
	return ErrNotFound
}

func (fs *FileStore) DeleteContactMessage(ctx context.Context, id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for i := range fs.data.Messages {
		if fs.data.Messages[i].ID == id {
			fs.data.Messages = append(fs.data.Messages[:i], fs.data.Messages[i+1:]...)
			return fs.save()
		}
	}
	return ErrNotFound
}

func (fs *FileStore) GetProfile(ctx context.Context) (*models.Profile, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if fs.data.Profile == nil {
		return nil, ErrNotFound
	}
	cp := *fs.data.Profile
	return &cp, nil
}

func (fs *FileStore) SaveProfile(ctx context.Context, p *models.Profile) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	cp := *p
	fs.data.Profile = &cp
	return fs.save()
}

func (fs *FileStore) SaveInstagramPost(ctx context.Context, post models.InstagramPost) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, existing := range fs.data.InstagramPosts {
		if existing.PostID == post.PostID {
			return false, nil
		}
	}
	fs.data.InstagramPosts = append(fs.data.InstagramPosts, post)
	return true, fs.save()
}

func (fs *FileStore) ListInstagramPosts(ctx context.Context) ([]models.InstagramPost, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := append([]models.InstagramPost(nil), fs.data.InstagramPosts...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (fs *FileStore) Close(ctx context.Context) error { return nil }

// load reads the store from the JSON file
func (fs *FileStore) load() error {
	file, err := os.Open(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open store file: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&fs.data); err != nil {
		return fmt.Errorf("failed to decode store data: %w", err)
	}
	if fs.data.ReelAnalyses == nil {
		fs.data.ReelAnalyses = make(map[string]*models.ReelAnalysis)
	}
	return nil
}

// save writes the store to a temp file, then renames it over the old one.
func (fs *FileStore) save() error {
	tmp := fs.filePath + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fs.data); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode store data: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return os.Rename(tmp, fs.filePath)
}

func head[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
