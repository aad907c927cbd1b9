package cache

import (
	"context"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	if got := Key("passenger", int64(7), "bookings"); got != "carpool:passenger:7:bookings" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestNoopAlwaysMisses(t *testing.T) {
	var c Cache = Noop{}
	c.Set(context.Background(), "k", []int{1}, time.Minute)

	var out []int
	if c.Get(context.Background(), "k", &out) {
		t.Fatalf("noop cache must miss")
	}
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), "://nope"); err == nil {
		t.Fatalf("expected parse error")
	}
}
