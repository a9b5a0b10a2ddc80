package store

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/redis/go-redis/v9"

	"fleetopt/internal/geo"
)

// geohashChars gives cells of a few centimetres, finer than any distance the
// matrix reports meaningfully.
const geohashChars = 12

// MatrixCache stores distance matrices keyed by MatrixKey.
type MatrixCache interface {
	Get(ctx context.Context, key string) ([][]float64, bool, error)
	Set(ctx context.Context, key string, m [][]float64) error
}

// MatrixKey identifies a matrix by method and its ordered locations. Geographic
// points are keyed by geohash; planar coordinates are arbitrary numbers, so
// they are keyed by their exact bits.
func MatrixKey(method geo.Method, locs []geo.Point) string {
	h := sha256.New()
	h.Write([]byte(method))
	var buf [16]byte
	for _, p := range locs {
		h.Write([]byte{'|'})
		if method == geo.Planar {
			binary.BigEndian.PutUint64(buf[:8], math.Float64bits(p.Lat))
			binary.BigEndian.PutUint64(buf[8:], math.Float64bits(p.Lng))
			h.Write(buf[:])
			continue
		}
		h.Write([]byte(geohash.EncodeWithPrecision(p.Lat, p.Lng, geohashChars)))
	}
	return "matrix:" + string(method) + ":" + hex.EncodeToString(h.Sum(nil)[:16])
}

// MemoryMatrixCache keeps the most recently used matrices in process.
type MemoryMatrixCache struct {
	mu    sync.Mutex
	max   int
	ll    *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	key string
	m   [][]float64
}

func NewMemoryMatrixCache(max int) *MemoryMatrixCache {
	if max <= 0 {
		max = 128
	}
	return &MemoryMatrixCache{max: max, ll: list.New(), items: map[string]*list.Element{}}
}

func (c *MemoryMatrixCache) Get(ctx context.Context, key string) ([][]float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).m, true, nil
}

func (c *MemoryMatrixCache) Set(ctx context.Context, key string, m [][]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).m = m
		c.ll.MoveToFront(el)
		return nil
	}
	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, m: m})
	for c.ll.Len() > c.max {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.items, last.Value.(*cacheEntry).key)
	}
	return nil
}

// RedisMatrixCache shares matrices between API replicas.
type RedisMatrixCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisMatrixCache(rdb *redis.Client, ttl time.Duration) *RedisMatrixCache {
	return &RedisMatrixCache{rdb: rdb, ttl: ttl}
}

func (c *RedisMatrixCache) Get(ctx context.Context, key string) ([][]float64, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var m [][]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (c *RedisMatrixCache) Set(ctx context.Context, key string, m [][]float64) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
