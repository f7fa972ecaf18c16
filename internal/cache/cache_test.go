package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	c, err := New(fmt.Sprintf("redis://%s/0", mr.Addr()), nil)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type payload struct {
	FEN        string  `json:"fen"`
	Evaluation float64 `json:"evaluation"`
}

func TestSetGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	in := payload{FEN: "8/8/8/8/8/8/8/8 w - - 0 1", Evaluation: 0.35}
	if err := c.Set(ctx, "eval:test", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out payload
	hit, err := c.Get(ctx, "eval:test", &out)
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t)
	var out payload
	hit, err := c.Get(context.Background(), "nope", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Fatal("expected miss")
	}
}

func TestDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	if err := c.Set(ctx, "k", payload{FEN: "x"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	var out payload
	hit, err := c.Get(ctx, "k", &out)
	if err != nil || hit {
		t.Fatalf("key survived Del: hit=%v err=%v", hit, err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("not a url", nil); err == nil {
		t.Fatal("expected error for malformed redis url")
	}
}
