package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "tarasamar/internal/adapters/redis"
	"tarasamar/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	var miss []domain.BookingRequest
	ok, err := c.Get(ctx, "status:ana@example.com", &miss)
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	in := []domain.BookingRequest{{ID: "b1", Email: "ana@example.com", Status: domain.StatusPending}}
	if err := c.Set(ctx, "status:ana@example.com", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out []domain.BookingRequest
	ok, err = c.Get(ctx, "status:ana@example.com", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(out) != 1 || out[0].ID != "b1" || out[0].Status != domain.StatusPending {
		t.Fatalf("unexpected cached value: %+v", out)
	}

	if err := c.Del(ctx, "status:ana@example.com"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, _ = c.Get(ctx, "status:ana@example.com", &out)
	if ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestCache_TTLExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", map[string]int{"n": 1}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var v map[string]int
	if ok, _ := c.Get(ctx, "k", &v); ok {
		t.Fatalf("expected key to expire")
	}
}

func TestCache_NamespacedAndCorruptEntriesDropped(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "status:ana@example.com", []string{"x"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("tarasamar:status:ana@example.com") {
		t.Fatalf("expected namespaced key, have %v", mr.Keys())
	}

	_ = mr.Set("tarasamar:k", "not json")
	var v map[string]int
	if ok, err := c.Get(ctx, "k", &v); ok || err == nil {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
	if mr.Exists("tarasamar:k") {
		t.Fatalf("corrupt entry should be deleted")
	}
}

func TestCache_GetErrorWhenServerDown(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()

	var v map[string]int
	if _, err := c.Get(context.Background(), "k", &v); err == nil {
		t.Fatalf("expected error from closed server")
	}
}
