package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/barsi/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestService_GetPut(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)}
	svc := NewService(WithClock(clock.Now))

	_, ok := svc.Get("PETR4.SA")
	assert.False(t, ok, "empty cache should miss")

	row := models.StockRow{Ticker: "PETR4.SA", Name: "Petrobras", CurrentPrice: models.Of(38.2)}
	svc.Put("PETR4.SA", row)

	got, ok := svc.Get("PETR4.SA")
	require.True(t, ok)
	assert.Equal(t, row, got)

	clock.Advance(29 * time.Second)
	_, ok = svc.Get("PETR4.SA")
	assert.True(t, ok, "entry should be served inside the TTL")

	clock.Advance(time.Second)
	_, ok = svc.Get("PETR4.SA")
	assert.False(t, ok, "entry should expire exactly at now + TTL")

	assert.Equal(t, 1, svc.Len(), "expired entries are superseded, not deleted")
}

func TestService_PutOverwritesAndRenewsExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)}
	svc := NewService(WithClock(clock.Now))

	svc.Put("VALE3.SA", models.StockRow{Ticker: "VALE3.SA", Name: "old"})
	clock.Advance(20 * time.Second)
	svc.Put("VALE3.SA", models.StockRow{Ticker: "VALE3.SA", Name: "new"})

	expiresAt, ok := svc.ExpiresAt("VALE3.SA")
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(DefaultTTL), expiresAt)

	clock.Advance(20 * time.Second)
	got, ok := svc.Get("VALE3.SA")
	require.True(t, ok)
	assert.Equal(t, "new", got.Name)
}

func TestService_WithTTL(t *testing.T) {
	svc := NewService(WithTTL(time.Minute))
	assert.Equal(t, time.Minute, svc.TTL())

	svc = NewService(WithTTL(0))
	assert.Equal(t, DefaultTTL, svc.TTL(), "non-positive TTL keeps the default")
}

func TestService_ConcurrentAccess(t *testing.T) {
	svc := NewService()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ticker := fmt.Sprintf("TICK%d.SA", i%5)
			svc.Put(ticker, models.StockRow{Ticker: ticker})
			svc.Get(ticker)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, svc.Len())
}
