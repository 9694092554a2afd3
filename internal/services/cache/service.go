// Package cache provides the per-ticker row cache used by the stock data manager.
// Entries expire by comparison against the clock and are only ever overwritten.
package cache

import (
	"sync"
	"time"

	"github.com/ternarybob/barsi/internal/models"
)

// DefaultTTL is how long a computed row is served without refetching.
const DefaultTTL = 30 * time.Second

type entry struct {
	row       models.StockRow
	expiresAt time.Time
}

// Service is an in-process TTL memo of computed rows keyed by ticker.
type Service struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets a custom time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new row cache.
func NewService(opts ...Option) *Service {
	s := &Service{
		entries: make(map[string]entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached row while now < expiresAt.
func (s *Service) Get(ticker string) (models.StockRow, bool) {
	s.mu.RLock()
	e, ok := s.entries[ticker]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expiresAt) {
		return models.StockRow{}, false
	}
	return e.row, true
}

// Put stores row and resets its expiry to now + TTL.
func (s *Service) Put(ticker string, row models.StockRow) {
	expiresAt := s.now().Add(s.ttl)

	s.mu.Lock()
	s.entries[ticker] = entry{row: row, expiresAt: expiresAt}
	s.mu.Unlock()
}

// ExpiresAt reports when the ticker's entry expires.
func (s *Service) ExpiresAt(ticker string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[ticker]
	return e.expiresAt, ok
}

// Len returns the number of entries, expired ones included.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// TTL returns the configured time-to-live.
func (s *Service) TTL() time.Duration {
	return s.ttl
}
