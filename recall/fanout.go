package recall

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/logging"
)

// Fanout 并发执行多个关系推断源。
// 支持单源超时与最大并发数；结果按 Sources 顺序返回，与完成顺序无关。
type Fanout struct {
	Sources       []Source
	Timeout       time.Duration // 每个源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
}

// Run 执行全部源并等待结束。
// 单个源出错或超时时记录日志并返回该源的空结果，不中断其他源。
func (f *Fanout) Run(ctx context.Context, rctx *core.RecommendContext) []*Result {
	results := make([]*Result, len(f.Sources))
	if len(f.Sources) == 0 {
		return results
	}

	var eg errgroup.Group
	if f.MaxConcurrent > 0 {
		eg.SetLimit(f.MaxConcurrent)
	}

	for i, src := range f.Sources {
		eg.Go(func() error {
			srcCtx := ctx
			if f.Timeout > 0 {
				var cancel context.CancelFunc
				srcCtx, cancel = context.WithTimeout(ctx, f.Timeout)
				defer cancel()
			}

			start := time.Now()
			res, err := src.Infer(srcCtx, rctx)
			if err != nil {
				logging.Ctx(ctx).Warn().
					Err(err).
					Str("relation", src.Name()).
					Dur("elapsed", time.Since(start)).
					Msg("relation inference failed, treating as empty")
				res = nil
			}
			if res == nil {
				res = NewResult(src.Name(), src.Category())
			}
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()
	return results
}
