package metadata

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/metrics"
)

const (
	DefaultWorkers = 30
	DefaultTimeout = 5 * time.Second
)

// MovieSource 查询单部电影的外部元数据（TMDB）。
type MovieSource interface {
	Movie(ctx context.Context, uri string) (*core.MovieMetadata, error)
}

// PersonSource 查询单个人物的外部元数据（TMDB）。
type PersonSource interface {
	Person(ctx context.Context, uri string) (*core.PersonMetadata, error)
}

// RatingSource 按 IMDb ID 查询评分（OMDb）。
type RatingSource interface {
	Rating(ctx context.Context, imdbID string) (float64, error)
}

// Service 实现 core.MetadataService。
//
// 每个实体的查询是一个独立任务，由最多 Workers 个 goroutine 执行，
// 每次外部请求有独立的 Timeout；全部任务结束后统一汇总，失败的查询替换为默认记录。
// 评分查询与 TMDB 查询互相独立：TMDB 失败的电影仍会尝试获取 IMDb 评分。
type Service struct {
	Movies  MovieSource
	People  PersonSource
	Ratings RatingSource
	Cache   *Cache

	Workers int
	Timeout time.Duration
}

// ServiceOption 配置 Service。
type ServiceOption func(*Service)

func WithCache(c *Cache) ServiceOption {
	return func(s *Service) { s.Cache = c }
}

func WithWorkers(n int) ServiceOption {
	return func(s *Service) { s.Workers = n }
}

func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.Timeout = d }
}

// WithRatings 设置评分来源，nil 表示不查询评分。
func WithRatings(r *OMDbClient) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.Ratings = r
		}
	}
}

// NewService 以 TMDB 为电影与人物来源创建 Service。
func NewService(tmdb *TMDBClient, opts ...ServiceOption) *Service {
	s := &Service{
		Workers: DefaultWorkers,
		Timeout: DefaultTimeout,
	}
	if tmdb != nil {
		s.Movies = tmdb
		s.People = tmdb
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Name() string { return "tmdb+omdb" }

func (s *Service) BatchGetMovies(ctx context.Context, keys []core.MovieKey) (map[string]*core.MovieMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys = uniqueKeys(keys)
	out := make(map[string]*core.MovieMetadata, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	uris := make([]string, len(keys))
	for i, k := range keys {
		uris[i] = k.URI
	}
	cached := s.Cache.GetMovies(ctx, uris)
	misses := make([]core.MovieKey, 0, len(keys))
	for _, k := range keys {
		if md, ok := cached[k.URI]; ok {
			out[k.URI] = md
			continue
		}
		misses = append(misses, k)
	}

	movies := run(ctx, len(misses), s.workers(), func(ctx context.Context, i int) Result[*core.MovieMetadata] {
		return s.lookupMovie(ctx, misses[i].URI)
	})
	ratings := run(ctx, len(misses), s.workers(), func(ctx context.Context, i int) Result[float64] {
		return s.lookupRating(ctx, misses[i].IMDbID)
	})

	log := logging.Ctx(ctx)
	fresh := make(map[string]*core.MovieMetadata, len(misses))
	fallbacks := 0
	for i, k := range misses {
		mr, rr := movies[i], ratings[i]
		md := mr.Or(DefaultMovie(k))
		md.IMDbID = k.IMDbID
		if rr.OK() {
			rating := rr.Value
			md.IMDbRating = &rating
		}
		out[k.URI] = md

		if !mr.OK() {
			fallbacks++
			log.Debug().Err(mr.Err).Str("uri", k.URI).Msg("movie metadata lookup failed, using defaults")
			continue
		}
		// 评分查询出错（非「无评分」）时不缓存，下次重试
		if rr.OK() || core.IsNotFound(rr.Err) || core.IsNotSupported(rr.Err) {
			fresh[k.URI] = md
		}
	}
	s.Cache.SetMovies(ctx, fresh)

	log.Debug().
		Int("keys", len(keys)).
		Int("cached", len(cached)).
		Int("fetched", len(misses)).
		Int("fallbacks", fallbacks).
		Msg("movie metadata batch done")
	return out, nil
}

func (s *Service) BatchGetPeople(ctx context.Context, uris []string) (map[string]*core.PersonMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	uris = core.SortedUnique(uris)
	out := make(map[string]*core.PersonMetadata, len(uris))
	if len(uris) == 0 {
		return out, nil
	}

	cached := s.Cache.GetPeople(ctx, uris)
	misses := make([]string, 0, len(uris))
	for _, u := range uris {
		if pm, ok := cached[u]; ok {
			out[u] = pm
			continue
		}
		misses = append(misses, u)
	}

	people := run(ctx, len(misses), s.workers(), func(ctx context.Context, i int) Result[*core.PersonMetadata] {
		return s.lookupPerson(ctx, misses[i])
	})

	fresh := make(map[string]*core.PersonMetadata, len(misses))
	for i, u := range misses {
		r := people[i]
		if !r.OK() {
			out[u] = DefaultPerson(u)
			logging.Ctx(ctx).Debug().Err(r.Err).Str("uri", u).Msg("person metadata lookup failed, using defaults")
			continue
		}
		out[u] = r.Value
		fresh[u] = r.Value
	}
	s.Cache.SetPeople(ctx, fresh)
	return out, nil
}

func (s *Service) lookupMovie(ctx context.Context, uri string) Result[*core.MovieMetadata] {
	if s.Movies == nil {
		return Result[*core.MovieMetadata]{Err: core.ErrMetadataNotConfigured}
	}
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	md, err := s.Movies.Movie(ctx, uri)
	metrics.RecordMetadataLookup("tmdb_movie", outcome(err), time.Since(start))
	return Result[*core.MovieMetadata]{Value: md, Err: err}
}

func (s *Service) lookupPerson(ctx context.Context, uri string) Result[*core.PersonMetadata] {
	if s.People == nil {
		return Result[*core.PersonMetadata]{Err: core.ErrMetadataNotConfigured}
	}
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	pm, err := s.People.Person(ctx, uri)
	metrics.RecordMetadataLookup("tmdb_person", outcome(err), time.Since(start))
	return Result[*core.PersonMetadata]{Value: pm, Err: err}
}

func (s *Service) lookupRating(ctx context.Context, imdbID string) Result[float64] {
	if s.Ratings == nil || imdbID == "" {
		return Result[float64]{Err: core.ErrMetadataNotConfigured}
	}
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rating, err := s.Ratings.Rating(ctx, imdbID)
	metrics.RecordMetadataLookup("omdb", outcome(err), time.Since(start))
	return Result[float64]{Value: rating, Err: err}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout > 0 {
		return context.WithTimeout(ctx, s.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Service) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return DefaultWorkers
}

// run 并发执行 n 个任务（最多 workers 个同时进行），等待全部结束后按下标返回结果。
func run[T any](ctx context.Context, n, workers int, task func(ctx context.Context, i int) T) []T {
	out := make([]T, n)
	if n == 0 {
		return out
	}
	var eg errgroup.Group
	eg.SetLimit(workers)
	for i := range n {
		eg.Go(func() error {
			out[i] = task(ctx, i)
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// uniqueKeys 按 URI 去重，保留首个非空 IMDb ID。
func uniqueKeys(keys []core.MovieKey) []core.MovieKey {
	idx := make(map[string]int, len(keys))
	out := make([]core.MovieKey, 0, len(keys))
	for _, k := range keys {
		if k.URI == "" {
			continue
		}
		if i, ok := idx[k.URI]; ok {
			if out[i].IMDbID == "" {
				out[i].IMDbID = k.IMDbID
			}
			continue
		}
		idx[k.URI] = len(out)
		out = append(out, k)
	}
	return out
}

var _ core.MetadataService = (*Service)(nil)
