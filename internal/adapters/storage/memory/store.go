package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/steveoberholzer/HARAnalyzer/internal/domain"
	"github.com/steveoberholzer/HARAnalyzer/internal/usecase"
)

type captureEntry struct {
	capture   domain.Capture
	createdAt time.Time
}

// Store holds uploaded captures in memory with capacity and TTL
// eviction. Insertion order is kept for deterministic listings.
type Store struct {
	mu    sync.RWMutex
	order []string
	items map[string]*captureEntry

	maxCaptures int
	ttl         time.Duration
	evicted     func() // optional eviction hook (metrics)
}

func NewStore(maxCaptures int, ttl time.Duration) *Store {
	return &Store{
		order:       make([]string, 0, maxCaptures),
		items:       make(map[string]*captureEntry, maxCaptures),
		maxCaptures: maxCaptures,
		ttl:         ttl,
	}
}

// OnEvict registers a callback invoked once per evicted capture.
func (s *Store) OnEvict(fn func()) { s.evicted = fn }

func (s *Store) SaveCapture(ctx context.Context, c domain.Capture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked()
	for s.maxCaptures > 0 && len(s.items) >= s.maxCaptures {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.items, oldest)
		if s.evicted != nil {
			s.evicted()
		}
	}
	s.items[c.ID] = &captureEntry{capture: c, createdAt: time.Now()}
	s.order = append(s.order, c.ID)
	return nil
}

func (s *Store) GetCapture(ctx context.Context, id string) (domain.Capture, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.items[id]; ok {
		return e.capture, true, nil
	}
	return domain.Capture{}, false, nil
}

func (s *Store) DeleteCapture(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; ok {
		delete(s.items, id)
		for i, cid := range s.order {
			if cid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (s *Store) ClearAllCaptures(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*captureEntry, len(s.items))
	s.order = s.order[:0]
	return nil
}

func (s *Store) ListCaptures(ctx context.Context, f usecase.CaptureFilter) ([]domain.Capture, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]domain.Capture, 0, len(s.items))
	for _, id := range s.order { // insertion order
		e := s.items[id]
		if e == nil {
			continue
		}
		if f.Q != "" && !strings.Contains(strings.ToLower(e.capture.FileName), strings.ToLower(f.Q)) {
			continue
		}
		results = append(results, e.capture)
	}
	total := len(results)
	start := f.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + f.Limit
	if f.Limit <= 0 || end > total {
		end = total
	}
	return results[start:end], total, nil
}

func (s *Store) evictExpiredLocked() {
	if s.ttl <= 0 {
		return
	}
	now := time.Now()
	i := 0
	for i < len(s.order) {
		id := s.order[i]
		e := s.items[id]
		if e == nil || now.Sub(e.createdAt) > s.ttl {
			delete(s.items, id)
			s.order = append(s.order[:i], s.order[i+1:]...)
			if s.evicted != nil {
				s.evicted()
			}
			continue
		}
		i++
	}
}
