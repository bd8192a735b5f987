// ABOUTME: In-memory dragon collection emulating the remote REST store
// ABOUTME: Assigns sequential ids and creation timestamps server-side

package mockapi

import (
	"strconv"
	"sync"
	"time"

	"github.com/markalston/dragon-catalog/internal/models"
)

// DefaultSeed is loaded by `mockapi --seed`
var DefaultSeed = []models.RecordInput{
	{Name: "Drogon", Type: "Fire"},
	{Name: "Balerion", Type: "Black Dread"},
	{Name: "Vhagar", Type: "Bronze Fury"},
	{Name: "Rhaegal", Type: "Green"},
	{Name: "Viserion", Type: "Ice"},
}

// Store is a concurrency-safe in-memory record collection.
// Ids come from a counter and are never reused after deletion.
type Store struct {
	mu      sync.RWMutex
	records map[string]models.Record
	order   []string
	nextID  int
	now     func() time.Time
}

// Option configures the store
type Option func(*Store)

// WithClock overrides the clock used for createdAt (useful in tests)
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		records: make(map[string]models.Record),
		nextID:  1,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed creates one record per input
func (s *Store) Seed(inputs []models.RecordInput) {
	for _, in := range inputs {
		s.Create(in)
	}
}

// List returns records in creation order
func (s *Store) List() []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// Get returns the record with id
func (s *Store) Get(id string) (models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	return r, ok
}

// Create stores a new record with a fresh id and timestamp
func (s *Store) Create(in models.RecordInput) models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strconv.Itoa(s.nextID)
	s.nextID++
	r := models.Record{
		ID:        id,
		Name:      in.Name,
		Type:      in.Type,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	s.records[id] = r
	s.order = append(s.order, id)
	return r
}

// Update replaces the fields present in patch
func (s *Store) Update(id string, patch models.RecordPatch) (models.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return models.Record{}, false
	}
	r = patch.Apply(r)
	s.records[id] = r
	return r, true
}

// Delete removes the record with id and returns it
func (s *Store) Delete(id string) (models.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return models.Record{}, false
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return r, true
}

// Len returns the number of stored records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
