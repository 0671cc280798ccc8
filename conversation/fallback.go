package conversation

import (
	"context"

	"github.com/socialstudio/studio/log"
)

// Degrading wraps a primary Service with a secondary one and falls back on
// any primary failure, so a storage outage degrades persistence instead of
// breaking chat turns. Reads that miss the secondary after a primary fault
// surface the primary's error.
type Degrading struct {
	primary   Service
	secondary Service
}

// NewDegrading creates a degrading service over primary and secondary.
func NewDegrading(primary, secondary Service) *Degrading {
	return &Degrading{primary: primary, secondary: secondary}
}

// Save writes to the primary, mirroring to the secondary only when the
// primary fails.
func (d *Degrading) Save(ctx context.Context, conv *Conversation) error {
	if err := d.primary.Save(ctx, conv); err != nil {
		log.Warnf("conversation: primary save failed, using fallback: %v", err)
		return d.secondary.Save(ctx, conv)
	}
	return nil
}

// Get reads from the primary, then the secondary.
func (d *Degrading) Get(ctx context.Context, id string) (*Conversation, error) {
	conv, err := d.primary.Get(ctx, id)
	if err == nil {
		return conv, nil
	}
	if conv, ferr := d.secondary.Get(ctx, id); ferr == nil {
		log.Warnf("conversation: primary get failed, served from fallback: %v", err)
		return conv, nil
	}
	return nil, err
}

// List reads from the primary, then the secondary.
func (d *Degrading) List(ctx context.Context, userID string) ([]Summary, error) {
	summaries, err := d.primary.List(ctx, userID)
	if err == nil {
		return summaries, nil
	}
	if summaries, ferr := d.secondary.List(ctx, userID); ferr == nil {
		log.Warnf("conversation: primary list failed, served from fallback: %v", err)
		return summaries, nil
	}
	return nil, err
}

// Delete removes from both stores; the primary's verdict wins unless the
// secondary held the conversation.
func (d *Degrading) Delete(ctx context.Context, id string) error {
	perr := d.primary.Delete(ctx, id)
	serr := d.secondary.Delete(ctx, id)
	if perr == nil || serr == nil {
		return nil
	}
	return perr
}
