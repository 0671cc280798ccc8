package artifact

import "context"

type storeKey struct{}

// ContextWithStore returns a copy of parent with the turn's store attached.
func ContextWithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, store)
}

// StoreFromContext retrieves the turn's store from the context.
func StoreFromContext(ctx context.Context) (*Store, bool) {
	store, ok := ctx.Value(storeKey{}).(*Store)
	return store, ok
}

// Save records an artifact for the current turn. It writes through the
// context-scoped store when present and always writes the process-wide
// fallback, so the payload survives tool runtimes that drop context values.
func Save(ctx context.Context, turnID, key string, art Artifact) {
	if store, ok := StoreFromContext(ctx); ok {
		store.Put(key, art)
	}
	PutFallback(turnID, key, art)
}
