package session

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory builds and starts a session for a new id.
type Factory func(ctx context.Context) (*Session, error)

// Registry keeps sessions by id. Sessions are created lazily on first use.
type Registry struct {
	factory Factory
	starts  singleflight.Group

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:  factory,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating it when missing. Concurrent
// first requests for the same id share one factory call. A session whose
// factory fails is not stored.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if s, ok := r.lookup(id); ok {
		return s, nil
	}

	v, err, _ := r.starts.Do(id, func() (any, error) {
		if s, ok := r.lookup(id); ok {
			return s, nil
		}
		s, err := r.factory(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.sessions[id] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (r *Registry) lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len reports how many sessions are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
