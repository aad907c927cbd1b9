package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	return ok && json.Unmarshal(raw, dest) == nil
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
}

func (c *mapCache) Del(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
}

func TestTransitionsInvalidateCachedListings(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	c := &mapCache{data: map[string][]byte{}}
	f.svc.Cache = c
	f.rides.Cache = c

	if got, _ := f.svc.ListForPassenger(ctx, alice); len(got) != 0 {
		t.Fatalf("expected no bookings yet, got %+v", got)
	}
	if got, _ := f.svc.PendingForDriver(ctx, driver); len(got) != 0 {
		t.Fatalf("expected no pending yet, got %+v", got)
	}

	b := f.request(t, alice, 2)

	mine, _ := f.svc.ListForPassenger(ctx, alice)
	if len(mine) != 1 || mine[0].ID != b.ID {
		t.Fatalf("stale passenger listing after request: %+v", mine)
	}
	pending, _ := f.svc.PendingForDriver(ctx, driver)
	if len(pending) != 1 {
		t.Fatalf("stale pending listing after request: %+v", pending)
	}

	if _, err := f.svc.AcceptBooking(ctx, driver, b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if pending, _ := f.svc.PendingForDriver(ctx, driver); len(pending) != 0 {
		t.Fatalf("stale pending listing after accept: %+v", pending)
	}
	rides, _ := f.rides.ListByDriver(ctx, driver)
	if len(rides) != 1 || rides[0].ConfirmedSeats != 2 {
		t.Fatalf("stale ride listing after accept: %+v", rides)
	}
}
