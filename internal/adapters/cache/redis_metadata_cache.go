package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "photoloc:exif:"

type redisEntry struct {
	CreationDate string  `json:"creation_date"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Who          string  `json:"who"`
}

// RedisMetadataCache keeps extracted metadata in Redis (or Valkey) as JSON
// values that expire after TTL. A zero TTL keeps entries forever.
type RedisMetadataCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisMetadataCache(client redis.UniversalClient, ttl time.Duration) *RedisMetadataCache {
	return &RedisMetadataCache{client: client, ttl: ttl}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connect %q: %w", addr, err)
	}
	return client, nil
}

func (r *RedisMetadataCache) GetMany(
	ctx context.Context,
	fileNames []string,
) (_ map[string]domain.PhotoMetadata, err error) {
	defer obs.Time(ctx, "metadata.redis.GetMany")(&err)

	if r.client == nil {
		return nil, errors.New("metadata cache: redis client is nil")
	}

	uniq := uniqueKeys(fileNames)
	if len(uniq) == 0 {
		return map[string]domain.PhotoMetadata{}, nil
	}

	keys := make([]string, len(uniq))
	for i, n := range uniq {
		keys[i] = redisKeyPrefix + n
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get metadata cache: mget: %w", err)
	}

	out := make(map[string]domain.PhotoMetadata, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// nil for missing keys
			continue
		}

		var e redisEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("get metadata cache: decode %q: %w", uniq[i], err)
		}
		out[uniq[i]] = domain.PhotoMetadata{
			FileName:     uniq[i],
			CreationDate: e.CreationDate,
			Coordinates:  domain.Coordinates{Lat: e.Lat, Lon: e.Lon},
			Who:          e.Who,
		}
	}

	return out, nil
}

func (r *RedisMetadataCache) PutMany(ctx context.Context, entries map[string]domain.PhotoMetadata) error {
	if r.client == nil {
		return errors.New("metadata cache: redis client is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for name, m := range entries {
		if strings.TrimSpace(name) == "" {
			return errors.New("insert metadata cache: empty file name key")
		}

		b, err := json.Marshal(redisEntry{
			CreationDate: m.CreationDate,
			Lat:          m.Coordinates.Lat,
			Lon:          m.Coordinates.Lon,
			Who:          m.Who,
		})
		if err != nil {
			return fmt.Errorf("insert metadata cache file=%q: encode: %w", name, err)
		}
		pipe.Set(ctx, redisKeyPrefix+name, b, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert metadata cache: exec pipeline: %w", err)
	}
	return nil
}
