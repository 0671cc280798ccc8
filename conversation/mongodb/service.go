// Package mongodb provides the document-store backed conversation service.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/socialstudio/studio/conversation"
)

const (
	defaultDatabase   = "socialstudio"
	defaultCollection = "conversations"
	defaultTimeout    = 10 * time.Second
)

// Option configures the mongodb conversation service.
type Option func(*Service)

// WithURI sets the connection string. Ignored when a client is injected.
func WithURI(uri string) Option {
	return func(s *Service) { s.uri = uri }
}

// WithDatabase overrides the database name.
func WithDatabase(name string) Option {
	return func(s *Service) { s.database = name }
}

// WithCollection overrides the collection name.
func WithCollection(name string) Option {
	return func(s *Service) { s.collection = name }
}

// WithClient injects an existing client instead of dialing one.
func WithClient(client *mongo.Client) Option {
	return func(s *Service) { s.client = client }
}

// WithTimeout bounds each storage operation.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.timeout = timeout }
}

// Service stores conversations in a MongoDB collection keyed by thread id.
type Service struct {
	uri        string
	database   string
	collection string
	timeout    time.Duration

	client *mongo.Client
	coll   *mongo.Collection
}

// New connects (unless a client is injected) and verifies the connection.
func New(ctx context.Context, opt ...Option) (*Service, error) {
	s := &Service{
		database:   defaultDatabase,
		collection: defaultCollection,
		timeout:    defaultTimeout,
	}
	for _, o := range opt {
		o(s)
	}
	if s.client == nil {
		if s.uri == "" {
			return nil, errors.New("mongodb: URI is empty")
		}
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
		if err != nil {
			return nil, fmt.Errorf("mongodb: connect failed: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongodb: ping failed: %w", err)
		}
		s.client = client
	}
	s.coll = s.client.Database(s.database).Collection(s.collection)
	return s, nil
}

// Close disconnects the underlying client.
func (s *Service) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Save upserts the conversation, stamping updated_at and setting created_at
// only on first insert.
func (s *Service) Save(ctx context.Context, conv *conversation.Conversation) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now().UTC()
	createdAt := conv.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	update := bson.M{
		"$set": bson.M{
			"user_id":    conv.UserID,
			"title":      conv.Title,
			"messages":   conv.Messages,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": createdAt},
	}
	_, err := s.coll.UpdateByID(ctx, conv.ID, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb: save conversation %s: %w", conv.ID, err)
	}
	return nil
}

// Get returns the full conversation, mapping a missing document to
// conversation.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*conversation.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var conv conversation.Conversation
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, conversation.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb: get conversation %s: %w", id, err)
	}
	return &conv, nil
}

// List returns the user's conversation summaries, most recently updated
// first, projecting away the message bodies.
func (s *Service) List(ctx context.Context, userID string) ([]conversation.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"messages": 0}).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: list conversations for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var summaries []conversation.Summary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("mongodb: decode conversations for %s: %w", userID, err)
	}
	return summaries, nil
}

// Delete removes the conversation, mapping a zero-match delete to
// conversation.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongodb: delete conversation %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return conversation.ErrNotFound
	}
	return nil
}
