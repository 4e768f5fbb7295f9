package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
)

func candidateID(i int) string { return fmt.Sprintf("%sC%03d", wd, i) }

// 250 个候选，Ci 有 250-i 个共享类型，分数 5×(250-i) 严格递减。
func scoredCandidates() []*core.Item {
	items := make([]*core.Item, 0, 250)
	for i := range 250 {
		genres := make([]string, 250-i)
		for j := range genres {
			genres[j] = fmt.Sprintf("G%d", j)
		}
		it := core.NewItem(candidateID(i))
		it.Evidence = []*core.Evidence{core.NewEvidence([]string{wd + "M1"}, core.Common{core.CategoryGenres: genres})}
		items = append(items, it)
	}
	return items
}

func TestPipeline_TwoStageTruncation(t *testing.T) {
	// C000..C149 评分 4.0（×0.4），C199（池内最后一名）与 C200（池外第一名）评分 10
	rated := ratings{candidateID(199): 10, candidateID(200): 10}
	for i := range 150 {
		rated[candidateID(i)] = 4.0
	}

	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = config.DefaultPipeline()[1:] // 跳过召回，直接输入候选
	p, err := cfg.BuildPipeline(config.Factory(&config.Deps{Metadata: rated, EntityPrefix: wd}))
	require.NoError(t, err)

	rctx := core.NewRecommendContext("trunc", core.SeedSet{Movies: []string{wd + "M1"}})
	out, err := p.Run(context.Background(), rctx, scoredCandidates())
	require.NoError(t, err)

	require.Len(t, out, 100)
	pool := map[string]bool{}
	for i := range 200 {
		pool[candidateID(i)] = true
	}
	ids := map[string]bool{}
	for i, it := range out {
		ids[it.ID] = true
		assert.True(t, pool[it.ID], "%s is outside the 200 pool", it.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, out[i-1].Score, it.Score, "not sorted at %d", i)
		}
	}

	// C199：255 × 10/7 ≈ 364.3，排在 96 个候选之后
	assert.True(t, ids[candidateID(199)])
	assert.False(t, ids[candidateID(200)])
	assert.True(t, ids[candidateID(0)])

	var c199 *core.Item
	for _, it := range out {
		if it.ID == candidateID(199) {
			c199 = it
		}
	}
	require.NotNil(t, c199)
	assert.InDelta(t, 255.0, c199.Breakdown.Rating.OriginalPoints, 1e-9)
	assert.InDelta(t, 255.0*10/7, c199.Score, 1e-9)

	// C149 调整后 202 分，被未评分的候选挤出
	assert.False(t, ids[candidateID(149)])
}
