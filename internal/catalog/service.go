// ABOUTME: Record synchronization between the remote store and the query cache
// ABOUTME: Reads go through the cache; successful writes invalidate affected keys

package catalog

import (
	"context"
	"log/slog"

	"github.com/markalston/dragon-catalog/internal/models"
	"github.com/markalston/dragon-catalog/internal/querycache"
)

// AllRecordsKey caches the ordered result of ListAll
const AllRecordsKey = "all-records"

// RecordKey returns the cache key for one record
func RecordKey(id string) string {
	return "record:" + id
}

// Store is the remote record store. *client.Client satisfies it.
type Store interface {
	ListAll(ctx context.Context) ([]models.Record, error)
	Get(ctx context.Context, id string) (*models.Record, error)
	Create(ctx context.Context, input models.RecordInput) (*models.Record, error)
	Update(ctx context.Context, id string, patch models.RecordPatch) (*models.Record, error)
	Delete(ctx context.Context, id string) error
}

// Service coordinates the store and the cache. After any mutation returns
// successfully, the next read of the list or of that record re-fetches.
type Service struct {
	store Store
	cache *querycache.Cache
}

// NewService creates a service. A nil cache gets a fresh one.
func NewService(store Store, cache *querycache.Cache) *Service {
	if cache == nil {
		cache = querycache.New()
	}
	return &Service{store: store, cache: cache}
}

// Cache exposes the underlying cache for status reporting
func (s *Service) Cache() *querycache.Cache {
	return s.cache
}

// List returns all records ordered by name. Callers must not modify the slice.
func (s *Service) List(ctx context.Context) ([]models.Record, error) {
	v, err := s.cache.Read(ctx, AllRecordsKey, func(ctx context.Context) (any, error) {
		return s.store.ListAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Record), nil
}

// Get returns one record
func (s *Service) Get(ctx context.Context, id string) (*models.Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	v, err := s.cache.Read(ctx, RecordKey(id), func(ctx context.Context) (any, error) {
		return s.store.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	record := *v.(*models.Record)
	return &record, nil
}

// Create validates input, creates the record, and invalidates the list
func (s *Service) Create(ctx context.Context, input models.RecordInput) (*models.Record, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	record, err := s.store.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(record.ID)
	slog.Info("Record created", "id", record.ID, "name", record.Name)
	return record, nil
}

// Update validates the patch, applies it, and invalidates the list and record
func (s *Service) Update(ctx context.Context, id string, patch models.RecordPatch) (*models.Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	record, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(id)
	slog.Info("Record updated", "id", id)
	return record, nil
}

// Delete removes a record and invalidates the list and record
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	slog.Info("Record deleted", "id", id)
	return nil
}

// Refresh drops every cached result so the next reads hit the store
func (s *Service) Refresh() {
	s.cache.InvalidateAll()
}

func validateID(id string) error {
	if id == "" {
		return &models.ValidationError{Field: "id", Reason: "cannot be empty"}
	}
	return nil
}

func (s *Service) invalidate(id string) {
	s.cache.Invalidate(AllRecordsKey)
	if id != "" {
		s.cache.Invalidate(RecordKey(id))
	}
}
