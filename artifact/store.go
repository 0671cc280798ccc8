package artifact

import "sync"

// Store is the pending-image store for one turn. Tools put artifacts keyed
// by platform while the turn streams; the orchestrator drains the store once
// at turn end. Put is last-write-wins, Drain returns and clears atomically.
//
// The store is written from the tool execution context and read from the
// turn orchestrator, which may run on different goroutines, so all access
// is mutex-guarded. A process-wide fallback keyed by turn ID covers tool
// runtimes that do not propagate the request context; Drain merges it in,
// fallback entries taking precedence on conflict.
type Store struct {
	turnID string

	mu      sync.Mutex
	pending map[string]Artifact
}

// NewStore creates an empty store scoped to the given turn and discards any
// fallback leftovers recorded for the same turn (a retried initiation
// re-initializes the store).
func NewStore(turnID string) *Store {
	fallback.clear(turnID)
	return &Store{
		turnID:  turnID,
		pending: make(map[string]Artifact),
	}
}

// TurnID returns the turn this store is scoped to.
func (s *Store) TurnID() string {
	return s.turnID
}

// Put records an artifact under the given key, overwriting any previous
// entry for that key.
func (s *Store) Put(key string, art Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = art
}

// Drain returns all pending artifacts and clears the store, merging in any
// fallback entries recorded for this turn. Fallback entries win on conflict
// since the fallback path is always written. A second Drain returns an
// empty map.
func (s *Store) Drain() map[string]Artifact {
	s.mu.Lock()
	drained := s.pending
	s.pending = make(map[string]Artifact)
	s.mu.Unlock()

	for key, art := range fallback.drain(s.turnID) {
		drained[key] = art
	}
	return drained
}

// fallbackRegistry is the process-wide store keyed by turn ID. It exists
// because some tool execution contexts run with a context that does not
// carry the turn's Store value.
type fallbackRegistry struct {
	mu     sync.Mutex
	stores map[string]map[string]Artifact
}

var fallback = &fallbackRegistry{stores: make(map[string]map[string]Artifact)}

// PutFallback records an artifact in the process-wide fallback for a turn.
func PutFallback(turnID, key string, art Artifact) {
	fallback.mu.Lock()
	defer fallback.mu.Unlock()
	m, ok := fallback.stores[turnID]
	if !ok {
		m = make(map[string]Artifact)
		fallback.stores[turnID] = m
	}
	m[key] = art
}

func (r *fallbackRegistry) drain(turnID string) map[string]Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.stores[turnID]
	delete(r.stores, turnID)
	return m
}

func (r *fallbackRegistry) clear(turnID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, turnID)
}
