// Package conversation defines persistent conversation storage for the
// content studio. A conversation is one thread of user and assistant
// messages identified by a thread id.
package conversation

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no conversation exists for the given id.
var ErrNotFound = errors.New("conversation not found")

// Message is one entry in a conversation history.
type Message struct {
	Role    string `bson:"role" json:"role"`
	Content string `bson:"content" json:"content"`
}

// Conversation is a full stored thread.
type Conversation struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Title     string    `bson:"title" json:"title"`
	Messages  []Message `bson:"messages" json:"messages"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Summary is the listing projection of a conversation: everything except
// the message bodies.
type Summary struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Title     string    `bson:"title" json:"title"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Service stores and retrieves conversations. Implementations must be safe
// for concurrent use.
type Service interface {
	// Save upserts the conversation under its ID, preserving CreatedAt on
	// update and stamping UpdatedAt.
	Save(ctx context.Context, conv *Conversation) error
	// Get returns the full conversation, or ErrNotFound.
	Get(ctx context.Context, id string) (*Conversation, error)
	// List returns summaries for a user, most recently updated first.
	List(ctx context.Context, userID string) ([]Summary, error)
	// Delete removes the conversation, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}
