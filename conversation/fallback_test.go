package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("store down")

// stubService fails every call when broken, otherwise stores in a map.
type stubService struct {
	broken bool
	convs  map[string]*Conversation
}

func newStub(broken bool) *stubService {
	return &stubService{broken: broken, convs: make(map[string]*Conversation)}
}

func (s *stubService) Save(_ context.Context, conv *Conversation) error {
	if s.broken {
		return errDown
	}
	s.convs[conv.ID] = conv
	return nil
}

func (s *stubService) Get(_ context.Context, id string) (*Conversation, error) {
	if s.broken {
		return nil, errDown
	}
	conv, ok := s.convs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return conv, nil
}

func (s *stubService) List(_ context.Context, userID string) ([]Summary, error) {
	if s.broken {
		return nil, errDown
	}
	var out []Summary
	for _, conv := range s.convs {
		if conv.UserID == userID {
			out = append(out, Summary{ID: conv.ID, UserID: conv.UserID, Title: conv.Title})
		}
	}
	return out, nil
}

func (s *stubService) Delete(_ context.Context, id string) error {
	if s.broken {
		return errDown
	}
	if _, ok := s.convs[id]; !ok {
		return ErrNotFound
	}
	delete(s.convs, id)
	return nil
}

func TestDegradingSavePrefersPrimary(t *testing.T) {
	primary, secondary := newStub(false), newStub(false)
	d := NewDegrading(primary, secondary)

	require.NoError(t, d.Save(context.Background(), &Conversation{ID: "t1"}))
	assert.Contains(t, primary.convs, "t1")
	assert.NotContains(t, secondary.convs, "t1")
}

func TestDegradingSaveFallsBack(t *testing.T) {
	primary, secondary := newStub(true), newStub(false)
	d := NewDegrading(primary, secondary)

	require.NoError(t, d.Save(context.Background(), &Conversation{ID: "t1"}))
	assert.Contains(t, secondary.convs, "t1")
}

func TestDegradingGetFallsBack(t *testing.T) {
	primary, secondary := newStub(true), newStub(false)
	secondary.convs["t1"] = &Conversation{ID: "t1", Title: "from fallback"}
	d := NewDegrading(primary, secondary)

	conv, err := d.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "from fallback", conv.Title)
}

func TestDegradingGetSurfacesPrimaryError(t *testing.T) {
	d := NewDegrading(newStub(true), newStub(false))
	_, err := d.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, errDown)
}

func TestDegradingGetNotFoundPassthrough(t *testing.T) {
	d := NewDegrading(newStub(false), newStub(false))
	_, err := d.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDegradingListFallsBack(t *testing.T) {
	primary, secondary := newStub(true), newStub(false)
	secondary.convs["t1"] = &Conversation{ID: "t1", UserID: "u1"}
	d := NewDegrading(primary, secondary)

	summaries, err := d.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestDegradingDeleteEitherStore(t *testing.T) {
	primary, secondary := newStub(false), newStub(false)
	secondary.convs["t1"] = &Conversation{ID: "t1"}
	d := NewDegrading(primary, secondary)

	assert.NoError(t, d.Delete(context.Background(), "t1"))
	assert.ErrorIs(t, d.Delete(context.Background(), "t1"), ErrNotFound)
}
