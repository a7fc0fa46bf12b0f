package client

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrMutationPending is returned when a mutation targets an entity that
// already has a mutation in flight. Mutations are serialized per entity
// rather than allowed to race last-write-wins.
var ErrMutationPending = errors.New("client: mutation already pending for snippet")

// MutationState tracks the lifecycle of a single optimistic mutation.
type MutationState int

const (
	MutationIdle MutationState = iota
	MutationPending
	MutationCommitted
	MutationRolledBack
)

func (s MutationState) String() string {
	switch s {
	case MutationPending:
		return "pending"
	case MutationCommitted:
		return "committed"
	case MutationRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

// API is the server surface the Store depends on. *Client satisfies it.
type API interface {
	List(ctx context.Context, search string) ([]Snippet, error)
	Create(ctx context.Context, input SnippetInput) (*Snippet, error)
	Delete(ctx context.Context, id uint) (*Snippet, error)
}

// Store maintains a local mirror of the server's snippet collection and keeps
// it consistent despite optimistic local mutations. The full collection is the
// single source of truth; the filtered view is derived from it and the current
// query without further round-trips. Only in-flight mutations are tracked per
// entity; of the completed ones, just the most recent outcome is retained.
type Store struct {
	api API

	mu        sync.Mutex
	snippets  []Snippet
	query     string
	loading   bool
	lastErr   error
	pending   map[uint]bool
	lastID    uint
	lastState MutationState
}

// NewStore constructs a Store over the given API.
func NewStore(api API) *Store {
	return &Store{
		api:     api,
		pending: make(map[uint]bool),
	}
}

// Refresh replaces the local mirror with the server's full collection. On
// failure the previous collection is kept and the error is recorded so the
// caller can render a retry affordance.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	snippets, err := s.api.List(ctx, "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err
		return err
	}
	s.snippets = snippets
	s.lastErr = nil
	return nil
}

// SetQuery updates the search query. The filtered view is recomputed lazily
// on the next Filtered call; no network traffic is involved.
func (s *Store) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
}

// Query returns the current search query.
func (s *Store) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Loading reports whether a collection fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the error recorded by the last failed fetch, if any.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Snippets returns a copy of the full local collection.
func (s *Store) Snippets() []Snippet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snippet, len(s.snippets))
	copy(out, s.snippets)
	return out
}

// Filtered returns the derived view of the collection for the current query.
func (s *Store) Filtered() []Snippet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Filter(s.snippets, s.query)
}

// MutationState reports the lifecycle state of the snippet's mutation: Pending
// while one is in flight, the terminal outcome for the most recently completed
// mutation, and Idle otherwise.
func (s *Store) MutationState(id uint) MutationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[id] {
		return MutationPending
	}
	if id == s.lastID {
		return s.lastState
	}
	return MutationIdle
}

// finish moves a mutation out of the pending set and records its outcome.
// Callers must hold s.mu.
func (s *Store) finish(id uint, state MutationState) {
	delete(s.pending, id)
	s.lastID = id
	s.lastState = state
}

// Filter is the pure filtering function shared by the Store. An empty trimmed
// query returns the input unchanged; otherwise a snippet matches when the
// lower-cased query is a substring of its title, language, description, or
// any tag.
func Filter(snippets []Snippet, query string) []Snippet {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]Snippet, len(snippets))
		copy(out, snippets)
		return out
	}

	out := make([]Snippet, 0, len(snippets))
	for _, snippet := range snippets {
		if matches(snippet, query) {
			out = append(out, snippet)
		}
	}
	return out
}

func matches(snippet Snippet, query string) bool {
	if strings.Contains(strings.ToLower(snippet.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(snippet.Language), query) {
		return true
	}
	if snippet.Description != nil && strings.Contains(strings.ToLower(*snippet.Description), query) {
		return true
	}
	for _, tag := range snippet.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// Create submits a new snippet and prepends the server-returned row on
// success. Creation is deliberately not optimistic: the row only becomes
// addressable once the server has assigned its identity, so there is nothing
// safe to render before confirmation.
func (s *Store) Create(ctx context.Context, input SnippetInput) (*Snippet, error) {
	created, err := s.api.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snippets = append([]Snippet{*created}, s.snippets...)
	s.finish(created.ID, MutationCommitted)
	return created, nil
}

// Delete removes the snippet locally before the server call resolves. On
// failure the store reconciles by refetching the full collection and the
// error is surfaced; on success the optimistic state already matches the
// server and nothing further happens.
func (s *Store) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	if s.pending[id] {
		s.mu.Unlock()
		return ErrMutationPending
	}

	removed := false
	kept := make([]Snippet, 0, len(s.snippets))
	for _, snippet := range s.snippets {
		if snippet.ID == id {
			removed = true
			continue
		}
		kept = append(kept, snippet)
	}
	if !removed {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.snippets = kept
	s.pending[id] = true
	s.mu.Unlock()

	_, err := s.api.Delete(ctx, id)
	if err == nil {
		s.mu.Lock()
		s.finish(id, MutationCommitted)
		s.mu.Unlock()
		return nil
	}

	// Reconciliation-by-refresh: replay the server's truth rather than
	// undoing the local removal in place.
	snippets, refreshErr := s.api.List(ctx, "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finish(id, MutationRolledBack)
	if refreshErr == nil {
		s.snippets = snippets
		s.lastErr = nil
	} else {
		s.lastErr = refreshErr
	}
	return err
}
