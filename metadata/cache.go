package metadata

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/metrics"
)

const (
	DefaultCacheTTL    = 24 * time.Hour
	DefaultCachePrefix = "movierec:meta:"
)

// Cache 把外部元数据以 JSON 存入 core.Store。只缓存查询成功的记录。
// 缓存读写失败只记录日志，不影响查询。
type Cache struct {
	Store  core.Store
	TTL    time.Duration
	Prefix string
}

func NewCache(s core.Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{Store: s, TTL: ttl, Prefix: DefaultCachePrefix}
}

func (c *Cache) key(kind, uri string) string {
	return c.Prefix + kind + ":" + uri
}

// getAll 批量读取，返回 uri -> 解码后的记录。
func getAll[T any](ctx context.Context, c *Cache, kind string, uris []string) map[string]*T {
	out := make(map[string]*T)
	if c == nil || c.Store == nil || len(uris) == 0 {
		return out
	}
	keys := make([]string, len(uris))
	for i, u := range uris {
		keys[i] = c.key(kind, u)
	}
	raw, err := c.Store.BatchGet(ctx, keys)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("kind", kind).Msg("metadata cache read failed")
		return out
	}
	for i, u := range uris {
		b, ok := raw[keys[i]]
		if !ok {
			metrics.RecordCache(kind, false)
			continue
		}
		v := new(T)
		if err := json.Unmarshal(b, v); err != nil {
			metrics.RecordCache(kind, false)
			continue
		}
		metrics.RecordCache(kind, true)
		out[u] = v
	}
	return out
}

// setAll 批量写入。
func setAll[T any](ctx context.Context, c *Cache, kind string, values map[string]*T) {
	if c == nil || c.Store == nil || len(values) == 0 {
		return
	}
	kvs := make(map[string][]byte, len(values))
	for u, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		kvs[c.key(kind, u)] = b
	}
	if err := c.Store.BatchSet(ctx, kvs, int(c.TTL/time.Second)); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("kind", kind).Msg("metadata cache write failed")
	}
}

func (c *Cache) GetMovies(ctx context.Context, uris []string) map[string]*core.MovieMetadata {
	return getAll[core.MovieMetadata](ctx, c, "movie", uris)
}

func (c *Cache) SetMovies(ctx context.Context, movies map[string]*core.MovieMetadata) {
	setAll(ctx, c, "movie", movies)
}

func (c *Cache) GetPeople(ctx context.Context, uris []string) map[string]*core.PersonMetadata {
	return getAll[core.PersonMetadata](ctx, c, "person", uris)
}

func (c *Cache) SetPeople(ctx context.Context, people map[string]*core.PersonMetadata) {
	setAll(ctx, c, "person", people)
}
