package rank

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
)

const (
	DefaultPenaltyBelow    = 5.0
	DefaultPenaltyDivisor  = 10.0
	DefaultBaselineDivisor = 7.0
)

// RatingNode 按外部评分调整分数并重新排序（稳定降序）。
//
// 评分 R < PenaltyBelow 时乘数为 R/PenaltyDivisor，否则为 R/BaselineDivisor；
// 无评分时分数不变，Breakdown.Rating 记录未调整。
// 评分取 TMDB vote_average，缺失时回退 IMDb；PreferIMDb 反转两者顺序。
// 需在元数据补全节点之后执行。
//
// 写入 labels：rank_rating
type RatingNode struct {
	PenaltyBelow    float64
	PenaltyDivisor  float64
	BaselineDivisor float64
	PreferIMDb      bool
}

// NewRatingNode 使用默认阈值创建评分调整节点。
func NewRatingNode() *RatingNode {
	return &RatingNode{
		PenaltyBelow:    DefaultPenaltyBelow,
		PenaltyDivisor:  DefaultPenaltyDivisor,
		BaselineDivisor: DefaultBaselineDivisor,
	}
}

func (n *RatingNode) Name() string        { return "rank.rating" }
func (n *RatingNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *RatingNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	for _, it := range items {
		if it == nil {
			continue
		}
		if it.Breakdown == nil {
			it.Breakdown = core.NewBreakdown()
		}
		adj := n.Adjust(it.Score, it.Metadata)
		it.Breakdown.Rating = adj
		it.Score = adj.AdjustedPoints
		if adj.Applied {
			it.PutLabel("rank_rating", utils.Label{Value: adj.RatingSource, Source: "rank"})
		}
	}
	SortByScore(items)
	return items, nil
}

// Multiplier 返回评分对应的乘数。
func (n *RatingNode) Multiplier(rating float64) float64 {
	if rating < n.PenaltyBelow {
		return rating / n.PenaltyDivisor
	}
	return rating / n.BaselineDivisor
}

// Adjust 计算单个候选的评分调整。
func (n *RatingNode) Adjust(points float64, md *core.MovieMetadata) core.RatingAdjustment {
	adj := core.RatingAdjustment{
		OriginalPoints: points,
		AdjustedPoints: points,
	}
	primary := core.RatingSourceTMDB
	if n.PreferIMDb {
		primary = core.RatingSourceIMDb
	}
	rating, source, ok := md.RatingFrom(primary)
	if !ok {
		adj.Reason = "no rating available"
		return adj
	}
	mult := n.Multiplier(rating)
	adj.Applied = true
	adj.Rating = rating
	adj.RatingSource = source
	adj.Multiplier = mult
	adj.AdjustedPoints = points * mult
	return adj
}

var _ pipeline.Node = (*RatingNode)(nil)
