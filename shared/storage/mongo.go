package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-stack/internal/models"
	"portfolio-stack/shared/config"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colVideos         = "youtube_videos"
	colReelAnalyses   = "reel_analyses"
	colSyncLogs       = "sync_logs"
	colMessages       = "contact_messages"
	colProfile        = "profile"
	colInstagramPosts = "instagram_posts"

	profileDocID = "site"
)

// MongoStore holds one pooled client for the life of the process.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

type reelDoc struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	models.ReelAnalysis `bson:",inline"`
}

type syncLogDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	models.SyncLog `bson:",inline"`
}

type messageDoc struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	models.ContactMessage `bson:",inline"`
}

type profileDoc struct {
	ID             string `bson:"_id"`
	models.Profile `bson:",inline"`
}

func NewMongoStore(ctx context.Context, cfg *config.StorageConfig) (*MongoStore, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("database connection URL is empty")
	}

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(10 * time.Second)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	defer cancelPing()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(cfg.Database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Printf("Connected to MongoDB database %s", cfg.Database)
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colReelAnalyses: {
			{Keys: bson.D{{Key: "reel_url", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		colVideos:         {{Keys: bson.D{{Key: "published_at", Value: -1}}}},
		colSyncLogs:       {{Keys: bson.D{{Key: "timestamp", Value: -1}}}},
		colMessages:       {{Keys: bson.D{{Key: "created_at", Value: -1}}}},
		colInstagramPosts: {{Keys: bson.D{{Key: "post_id", Value: 1}}, Options: options.Index().SetUnique(true)}},
	}

	for col, idx := range indexes {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", col, err)
		}
	}
	return nil
}

// ReplaceVideos clears the collection and inserts the new set. A standalone
// server has no multi-document transactions, so readers can briefly observe
// an empty collection between the two calls.
func (s *MongoStore) ReplaceVideos(ctx context.Context, videos []models.Video) error {
	col := s.db.Collection(colVideos)

	if _, err := col.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("failed to clear videos: %w", err)
	}
	if len(videos) == 0 {
		return nil
	}

	docs := make([]interface{}, len(videos))
	for i := range videos {
		docs[i] = videos[i]
	}
	if _, err := col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert videos: %w", err)
	}
	return nil
}

func (s *MongoStore) ListVideos(ctx context.Context, limit int) ([]models.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.db.Collection(colVideos).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}

	videos := []models.Video{}
	if err := cur.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}
	return videos, nil
}

func (s *MongoStore) GetReelAnalysis(ctx context.Context, reelURL string) (*models.ReelAnalysis, error) {
	var doc reelDoc
	err := s.db.Collection(colReelAnalyses).FindOne(ctx, bson.D{{Key: "reel_url", Value: reelURL}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reel analysis: %w", err)
	}
	doc.ReelAnalysis.ID = doc.ID.Hex()
	return &doc.ReelAnalysis, nil
}

// UpsertReelAnalysis is last-write-wins. Two concurrent first inserts can
// both attempt the insert half of the upsert; the loser hits the unique index
// and is retried once as a plain update.
func (s *MongoStore) UpsertReelAnalysis(ctx context.Context, a *models.ReelAnalysis) (*models.ReelAnalysis, error) {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	filter := bson.D{{Key: "reel_url", Value: a.ReelURL}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "caption", Value: a.Caption},
			{Key: "hashtags", Value: a.Hashtags},
			{Key: "creator_username", Value: a.CreatorUsername},
			{Key: "thumbnail_url", Value: a.ThumbnailURL},
			{Key: "audio_name", Value: a.AudioName},
			{Key: "ai_analysis", Value: a.AIAnalysis},
			{Key: "competitors", Value: a.Competitors},
		}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: createdAt}}},
	}
	opts := options.Update().SetUpsert(true)

	col := s.db.Collection(colReelAnalyses)
	_, err := col.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		log.WithField("reel_url", a.ReelURL).Warn("Concurrent reel analysis insert, retrying as update")
		_, err = col.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert reel analysis: %w", err)
	}

	return s.GetReelAnalysis(ctx, a.ReelURL)
}

func (s *MongoStore) ListReelAnalyses(ctx context.Context, limit int) ([]models.ReelAnalysis, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.db.Collection(colReelAnalyses).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reel analyses: %w", err)
	}

	var docs []reelDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reel analyses: %w", err)
	}

	out := make([]models.ReelAnalysis, len(docs))
	for i, d := range docs {
		out[i] = d.ReelAnalysis
		out[i].ID = d.ID.Hex()
	}
	return out, nil
}

func (s *MongoStore) AppendSyncLog(ctx context.Context, entry models.SyncLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if _, err := s.db.Collection(colSyncLogs).InsertOne(ctx, syncLogDoc{SyncLog: entry}); err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}
	return nil
}

func (s *MongoStore) RecentSyncLogs(ctx context.Context, limit int) ([]models.SyncLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.db.Collection(colSyncLogs).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync logs: %w", err)
	}

	var docs []syncLogDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode sync logs: %w", err)
	}

	out := make([]models.SyncLog, len(docs))
	for i, d := range docs {
		out[i] = d.SyncLog
		out[i].ID = d.ID.Hex()
	}
	return out, nil
}

func (s *MongoStore) SaveContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if msg.Status == "" {
		msg.Status = models.MessageNew
	}

	res, err := s.db.Collection(colMessages).InsertOne(ctx, messageDoc{ContactMessage: *msg})
	if err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

func (s *MongoStore) ListContactMessages(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.db.Collection(colMessages).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact messages: %w", err)
	}

	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode contact messages: %w", err)
	}

	out := make([]models.ContactMessage, len(docs))
	for i, d := range docs {
		out[i] = d.ContactMessage
		out[i].ID = d.ID.Hex()
	}
	return out, nil
}

func (s *MongoStore) UpdateContactMessageStatus(ctx context.Context, id string, status models.MessageStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.db.Collection(colMessages).UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}})
	if err != nil {
		return fmt.Errorf("failed to update message status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteContactMessage(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.db.Collection(colMessages).DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) GetProfile(ctx context.Context) (*models.Profile, error) {
	var doc profileDoc
	err := s.db.Collection(colProfile).FindOne(ctx, bson.D{{Key: "_id", Value: profileDocID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &doc.Profile, nil
}

func (s *MongoStore) SaveProfile(ctx context.Context, p *models.Profile) error {
	_, err := s.db.Collection(colProfile).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: profileDocID}},
		profileDoc{ID: profileDocID, Profile: *p},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *MongoStore) SaveInstagramPost(ctx context.Context, post models.InstagramPost) (bool, error) {
	res, err := s.db.Collection(colInstagramPosts).UpdateOne(ctx,
		bson.D{{Key: "post_id", Value: post.PostID}},
		bson.D{{Key: "$setOnInsert", Value: post}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to save instagram post: %w", err)
	}
	return res.UpsertedCount > 0, nil
}

func (s *MongoStore) ListInstagramPosts(ctx context.Context) ([]models.InstagramPost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cur, err := s.db.Collection(colInstagramPosts).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query instagram posts: %w", err)
	}

	posts := []models.InstagramPost{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode instagram posts: %w", err)
	}
	return posts, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		log.WithError(err).Error("Failed to disconnect MongoDB client")
		return err
	}
	log.Println("Disconnected from MongoDB")
	return nil
}
