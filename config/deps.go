package config

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/graph"
	"github.com/rushteam/movierec/metadata"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/store"
)

// Deps 是 Node 构建时可用的进程级依赖。
type Deps struct {
	Graph    core.GraphService
	Metadata core.MetadataService
	Store    core.Store

	// EntityPrefix 用于把裸 ID（Q123）补全为实体 URI
	EntityPrefix string
}

// NewDeps 按应用配置创建依赖：
//   - redis.addr 为空时使用 MemoryStore
//   - tmdb.token 为空时不查询 TMDB，电影与人物全部使用默认记录
//   - omdb.api_key 为空时不查询 IMDb 评分
func NewDeps(ctx context.Context, cfg *AppConfig) (*Deps, error) {
	log := logging.Component("config")

	var s core.Store
	if cfg.Redis.Addr != "" {
		rs, err := store.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		s = rs
	} else {
		s = store.NewMemoryStore()
	}
	log.Info().Str("store", s.Name()).Msg("metadata cache store ready")

	g := graph.NewSPARQLClient(cfg.Graph.Endpoint,
		graph.WithSPARQLTimeout(cfg.Graph.Timeout),
		graph.WithSPARQLUserAgent(cfg.Graph.UserAgent),
	)

	var tmdb *metadata.TMDBClient
	if cfg.TMDB.Token != "" {
		tmdb = metadata.NewTMDBClient(cfg.TMDB.Token,
			metadata.WithBaseURL(cfg.TMDB.BaseURL),
			metadata.WithRateLimit(cfg.TMDB.RPS, cfg.TMDB.Burst),
		)
	} else {
		log.Warn().Msg("tmdb token not set, movie and person metadata will use defaults")
	}
	var omdb *metadata.OMDbClient
	if cfg.OMDb.APIKey != "" {
		omdb = metadata.NewOMDbClient(cfg.OMDb.APIKey,
			metadata.WithBaseURL(cfg.OMDb.BaseURL),
			metadata.WithRateLimit(cfg.OMDb.RPS, cfg.OMDb.Burst),
		)
	} else {
		log.Warn().Msg("omdb api key not set, imdb ratings disabled")
	}

	md := metadata.NewService(tmdb,
		metadata.WithRatings(omdb),
		metadata.WithCache(metadata.NewCache(s, cfg.Metadata.CacheTTL)),
		metadata.WithWorkers(cfg.Metadata.Workers),
		metadata.WithTimeout(cfg.Metadata.LookupTimeout),
	)

	return &Deps{
		Graph:        g,
		Metadata:     md,
		Store:        s,
		EntityPrefix: cfg.Graph.EntityPrefix,
	}, nil
}

// Close 释放依赖持有的资源。
func (d *Deps) Close() error {
	if d == nil || d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
