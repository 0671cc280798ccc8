// Package inmemory provides a process-local conversation store, used as the
// default backend and as the fallback when the document store is down.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/socialstudio/studio/conversation"
)

// Service is an in-memory conversation store. Safe for concurrent use.
// Contents are lost on process exit.
type Service struct {
	mu    sync.RWMutex
	convs map[string]conversation.Conversation
}

// New creates an empty in-memory store.
func New() *Service {
	return &Service{convs: make(map[string]conversation.Conversation)}
}

// Save upserts the conversation, copying it so later caller mutations do
// not leak into the store.
func (s *Service) Save(_ context.Context, conv *conversation.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *conv
	stored.Messages = append([]conversation.Message(nil), conv.Messages...)
	stored.UpdatedAt = time.Now().UTC()
	if existing, ok := s.convs[conv.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}
	s.convs[conv.ID] = stored
	return nil
}

// Get returns a copy of the stored conversation.
func (s *Service) Get(_ context.Context, id string) (*conversation.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.convs[id]
	if !ok {
		return nil, conversation.ErrNotFound
	}
	conv := stored
	conv.Messages = append([]conversation.Message(nil), stored.Messages...)
	return &conv, nil
}

// List returns the user's conversation summaries, most recently updated
// first.
func (s *Service) List(_ context.Context, userID string) ([]conversation.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []conversation.Summary
	for _, conv := range s.convs {
		if conv.UserID != userID {
			continue
		}
		summaries = append(summaries, conversation.Summary{
			ID:        conv.ID,
			UserID:    conv.UserID,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Delete removes the conversation.
func (s *Service) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convs[id]; !ok {
		return conversation.ErrNotFound
	}
	delete(s.convs, id)
	return nil
}
