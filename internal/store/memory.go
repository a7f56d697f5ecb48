package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/david/hackathon-tracker/internal/models"
	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-process RecordStore. It backs the
// STORE_DRIVER=memory mode for local development and is the substitute used
// throughout the tests. Iteration preserves insertion order so that
// last-seen-wins collapse behaviour is deterministic.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]models.Hackathon
	order   []uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID]models.Hackathon)}
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]models.Hackathon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Hackathon, 0, len(s.order))
	for _, id := range s.order {
		if h, ok := s.records[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*models.Hackathon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (s *MemoryStore) FindDuplicate(ctx context.Context, title, websiteURL string) (*models.Hackathon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wantTitle := strings.ToLower(strings.TrimSpace(title))
	for _, id := range s.order {
		h, ok := s.records[id]
		if !ok {
			continue
		}
		if wantTitle != "" && strings.ToLower(strings.TrimSpace(h.Title)) == wantTitle {
			return &h, nil
		}
		if websiteURL != "" && h.WebsiteURL == websiteURL {
			return &h, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) InsertMany(ctx context.Context, records []models.Hackathon) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range records {
		if h.ID == uuid.Nil {
			h.ID = uuid.New()
		}
		if _, exists := s.records[h.ID]; !exists {
			s.order = append(s.order, h.ID)
		}
		s.records[h.ID] = h
	}
	return len(records), nil
}

func (s *MemoryStore) Update(ctx context.Context, id uuid.UUID, patch models.EditablePatch, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.records[id]
	if !ok {
		return fmt.Errorf("update failed: no record with id %s", id)
	}
	h.Title = patch.Title
	h.Description = patch.Description
	h.Organizer = patch.Organizer
	h.RegistrationDeadline = patch.RegistrationDeadline
	h.EventDate = patch.EventDate
	h.PrizePool = patch.PrizePool
	h.WebsiteURL = patch.WebsiteURL
	h.Platform = patch.Platform
	h.Status = patch.Status
	h.Eligibility = patch.Eligibility
	h.Tags = patch.Tags
	ts := updatedAt
	h.UpdatedAt = &ts
	s.records[id] = h
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
	return nil
}

func (s *MemoryStore) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := s.records[id]; ok {
			s.remove(id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) DeleteEnded(ctx context.Context, today string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, h := range s.records {
		if h.EndDate != models.DateTBD && h.EndDate < today {
			s.remove(id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) DeleteStaleTBD(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, h := range s.records {
		if h.EndDate == models.DateTBD && h.ScrapedAt.Before(cutoff) {
			s.remove(id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) CountAll(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *MemoryStore) CountByStatus(ctx context.Context, status string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, h := range s.records {
		if h.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountByPlatform(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, h := range s.records {
		counts[h.Platform]++
	}
	return counts, nil
}

// remove expects the write lock to be held.
func (s *MemoryStore) remove(id uuid.UUID) {
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
