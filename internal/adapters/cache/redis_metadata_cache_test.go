package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisMetadataCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisMetadataCache(client, ttl), mr
}

func TestRedisMetadataCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedisCache(t, 0)

	want := sampleMetadata()
	if err := c.PutMany(ctx, want); err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	got, err := c.GetMany(ctx, []string{"IMG_0001.jpg", "IMG_0002.jpg", "missing.jpg"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(got), got)
	}
	for name, m := range want {
		if got[name] != m {
			t.Fatalf("entry %q: expected %+v, got %+v", name, m, got[name])
		}
	}
}

func TestRedisMetadataCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t, 10*time.Second)

	if err := c.PutMany(ctx, sampleMetadata()); err != nil {
		t.Fatalf("PutMany: %v", err)
	}
	if ttl := mr.TTL(redisKeyPrefix + "IMG_0001.jpg"); ttl != 10*time.Second {
		t.Fatalf("expected ttl 10s, got %v", ttl)
	}

	mr.FastForward(11 * time.Second)

	got, err := c.GetMany(ctx, []string{"IMG_0001.jpg"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected expired entry to be gone, got %+v", got)
	}
}

func TestRedisMetadataCacheCorruptValue(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t, 0)

	if err := mr.Set(redisKeyPrefix+"bad.jpg", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := c.GetMany(ctx, []string{"bad.jpg"}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRedisMetadataCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t, 0)
	mr.Close()

	if _, err := c.GetMany(ctx, []string{"IMG_0001.jpg"}); err == nil {
		t.Fatal("expected error when redis is down")
	}
}
