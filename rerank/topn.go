package rerank

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，在排序节点之后保留前 N 个候选。
//
// 默认链路中出现两次：
//
//	&rank.PointsNode{...},          // 证据计分
//	&rerank.TopNNode{N: 200},       // 限制外部元数据查询量
//	&metadata.EnrichNode{...},      // 补充外部元数据
//	&rank.RatingNode{...},          // 评分调整并重排
//	&rerank.TopNNode{N: 100},       // 最终输出
type TopNNode struct {
	// N 要保留的候选数量，N <= 0 时不截断
	N int

	// Stage 仅用于区分日志/监控中的多个截断点（如 "pool"、"result"）
	Stage string
}

func (n *TopNNode) Name() string {
	if n.Stage != "" {
		return "rerank.topn." + n.Stage
	}
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
