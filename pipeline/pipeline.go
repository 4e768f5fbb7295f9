package pipeline

import (
	"context"
	"time"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/metrics"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链，节点按顺序串行执行。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	log := logging.Ctx(ctx)
	cur := items
	for _, node := range p.Nodes {
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		elapsed := time.Since(start)
		metrics.RecordNode(node.Name(), string(node.Kind()), elapsed, err)
		if err != nil {
			log.Error().Err(err).Str("node", node.Name()).Dur("elapsed", elapsed).Msg("pipeline node failed")
			return nil, err
		}
		log.Debug().
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("elapsed", elapsed).
			Msg("pipeline node done")
		cur = next
	}
	return cur, nil
}
