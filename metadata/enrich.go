package metadata

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/utils"
)

// EnrichNode 是元数据补全节点：按 (URI, IMDb ID) 批量查询外部元数据并挂到 Item.Metadata。
//
// 查不到的候选 Metadata 保持 nil，批量查询整体失败时只记录日志；候选永远不会被移除。
// 写入 labels：metadata（"fallback" 或 "ok"）
type EnrichNode struct {
	Service core.MetadataService
}

func (n *EnrichNode) Name() string        { return "postprocess.metadata" }
func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Service == nil || len(items) == 0 {
		return items, nil
	}

	keys := make([]core.MovieKey, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		keys = append(keys, core.MovieKey{URI: it.ID, IMDbID: it.IMDbID})
	}

	found, err := n.Service.BatchGetMovies(ctx, keys)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("service", n.Service.Name()).Int("items", len(keys)).
			Msg("metadata batch failed, continuing without metadata")
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		md, ok := found[it.ID]
		if !ok || md == nil {
			continue
		}
		it.Metadata = md
		state := "ok"
		if md.Fallback {
			state = "fallback"
		}
		it.PutLabel("metadata", utils.Label{Value: state, Source: "postprocess"})
	}
	return items, nil
}

var _ pipeline.Node = (*EnrichNode)(nil)
