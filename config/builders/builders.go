// Package builders 在 init 中向 config 注册内置 Node 的构建逻辑。
package builders

import (
	"fmt"

	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/filter"
	"github.com/rushteam/movierec/metadata"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/conv"
	"github.com/rushteam/movierec/rank"
	"github.com/rushteam/movierec/recall"
	"github.com/rushteam/movierec/rerank"
)

func init() {
	config.Register("recall.graph", BuildGraphRecallNode)
	config.Register("rank.points", BuildPointsNode)
	config.Register("rank.rating", BuildRatingNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("postprocess.metadata", BuildMetadataNode)
	config.Register("filter", BuildFilterNode)
}

// 全部关系源，按合并顺序排列
var allRelations = []string{"shared_cast", "shared_director", "shared_genre", "wished_actor", "wished_director"}

// BuildGraphRecallNode 构建 recall.graph。
//
//	config:
//	  relations: [shared_cast, shared_genre]  # 可选，默认全部
//	  batch_size: 100
//	  timeout: 30s                           # 单个关系源超时
//	  max_concurrent: 0
//	  popularity_threshold: 30               # 共享演员的最低人气
//	  property_prefix: http://www.wikidata.org/prop/direct/
func BuildGraphRecallNode(cfg map[string]any, deps *config.Deps) (pipeline.Node, error) {
	if deps.Graph == nil {
		return nil, fmt.Errorf("recall.graph requires a graph service")
	}
	defaults := &core.DefaultRecallConfig{}
	batch := int(conv.ConfigGetInt64(cfg, "batch_size", int64(defaults.DefaultBatchSize())))
	prefix := conv.ConfigGet(cfg, "property_prefix", "")
	threshold := conv.ConfigGetFloat64(cfg, "popularity_threshold", defaults.DefaultPopularityThreshold())

	relations := conv.SliceAnyToString(cfg["relations"])
	if len(relations) == 0 {
		relations = allRelations
	}

	sources := make([]recall.Source, 0, len(relations))
	for _, name := range relations {
		src, err := buildRelation(name, deps, batch, prefix, threshold)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	return &recall.GraphRecall{
		Fanout: &recall.Fanout{
			Sources:       sources,
			Timeout:       conv.ConfigGetDuration(cfg, "timeout", defaults.DefaultTimeout()),
			MaxConcurrent: int(conv.ConfigGetInt64(cfg, "max_concurrent", 0)),
		},
		Resolver: &recall.MovieResolver{Graph: deps.Graph, BatchSize: batch, PropertyPrefix: prefix},
	}, nil
}

func buildRelation(name string, deps *config.Deps, batch int, prefix string, threshold float64) (recall.Source, error) {
	switch name {
	case "shared_cast":
		s := recall.NewSharedCast(deps.Graph, batch)
		s.PropertyPrefix = prefix
		return withPopularity(s, deps, threshold), nil
	case "shared_director":
		s := recall.NewSharedDirector(deps.Graph, batch)
		s.PropertyPrefix = prefix
		// 导演只补充人气与头像，不过滤
		return withPopularity(s, deps, 0), nil
	case "shared_genre":
		s := recall.NewSharedGenre(deps.Graph, batch)
		s.PropertyPrefix = prefix
		return s, nil
	case "wished_actor":
		s := recall.NewWishedActor(deps.Graph, batch)
		s.PropertyPrefix = prefix
		return s, nil
	case "wished_director":
		s := recall.NewWishedDirector(deps.Graph, batch)
		s.PropertyPrefix = prefix
		return s, nil
	default:
		return nil, fmt.Errorf("unknown relation: %s (supported: %v)", name, allRelations)
	}
}

func withPopularity(src recall.Source, deps *config.Deps, threshold float64) recall.Source {
	if deps.Metadata == nil {
		return src
	}
	return &recall.PopularityFilter{Source: src, People: deps.Metadata, Threshold: threshold}
}

// BuildPointsNode 构建 rank.points。weights 中未出现的类别使用默认权重。
func BuildPointsNode(cfg map[string]any, _ *config.Deps) (pipeline.Node, error) {
	n := rank.NewPointsNode()
	weights := conv.ConfigGetMap(cfg, "weights")
	for k := range weights {
		cat := core.Category(k)
		if _, ok := n.Weights[cat]; !ok {
			return nil, fmt.Errorf("unknown category in weights: %s", k)
		}
		n.Weights[cat] = conv.ConfigGetFloat64(weights, k, n.Weights[cat])
	}
	n.ComboBonus = conv.ConfigGetFloat64(cfg, "combo_bonus", n.ComboBonus)
	n.ProximityWindow = int(conv.ConfigGetInt64(cfg, "proximity_window", int64(n.ProximityWindow)))
	n.ProximityMax = conv.ConfigGetFloat64(cfg, "proximity_max", n.ProximityMax)
	n.ProximityStep = conv.ConfigGetFloat64(cfg, "proximity_step", n.ProximityStep)
	return n, nil
}

// BuildRatingNode 构建 rank.rating。
func BuildRatingNode(cfg map[string]any, _ *config.Deps) (pipeline.Node, error) {
	n := rank.NewRatingNode()
	n.PenaltyBelow = conv.ConfigGetFloat64(cfg, "penalty_below", n.PenaltyBelow)
	n.PenaltyDivisor = conv.ConfigGetFloat64(cfg, "penalty_divisor", n.PenaltyDivisor)
	n.BaselineDivisor = conv.ConfigGetFloat64(cfg, "baseline_divisor", n.BaselineDivisor)
	n.PreferIMDb = conv.ConfigGet(cfg, "prefer_imdb", false)
	if n.PenaltyDivisor <= 0 || n.BaselineDivisor <= 0 {
		return nil, fmt.Errorf("rating divisors must be positive")
	}
	return n, nil
}

// BuildTopNNode 构建 rerank.topn，n 缺省为最终输出数。
func BuildTopNNode(cfg map[string]any, _ *config.Deps) (pipeline.Node, error) {
	defaults := &core.DefaultRankConfig{}
	return &rerank.TopNNode{
		N:     int(conv.ConfigGetInt64(cfg, "n", int64(defaults.DefaultResultSize()))),
		Stage: conv.ConfigGet(cfg, "stage", ""),
	}, nil
}

// BuildMetadataNode 构建 postprocess.metadata。
func BuildMetadataNode(_ map[string]any, deps *config.Deps) (pipeline.Node, error) {
	if deps.Metadata == nil {
		return nil, fmt.Errorf("postprocess.metadata requires a metadata service")
	}
	return &metadata.EnrichNode{Service: deps.Metadata}, nil
}

// BuildFilterNode 构建 filter。
//
//	config:
//	  filters:
//	    - type: blacklist
//	      item_ids: [Q42]
//	      key: movierec:blacklist      # Store 中的 JSON 数组，可选
//	    - type: expr
//	      expr: item.year >= 1990
//	      invert: false
func BuildFilterNode(cfg map[string]any, deps *config.Deps) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			key := conv.ConfigGet(filterMap, "key", "")
			if key != "" && deps.Store == nil {
				return nil, fmt.Errorf("blacklist key %q requires a store", key)
			}
			filters = append(filters, filter.NewBlacklistFilter(ids, deps.Store, key, deps.EntityPrefix))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""), conv.ConfigGet(filterMap, "invert", false))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}
