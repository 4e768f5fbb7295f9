package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述「保留」条件：表达式为 false 的 Item 被过滤。
// Invert 为 true 时语义反转：表达式为 true 的 Item 被过滤。
type ExprFilter struct {
	program *dsl.Program
	Invert  bool
}

// NewExprFilter 编译表达式；编译失败返回错误，便于在构建 Pipeline 时暴露配置问题。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{program: p, Invert: invert}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// Expr 返回原始表达式。
func (f *ExprFilter) Expr() string {
	return f.program.String()
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	keep, err := f.program.Evaluate(item, rctx)
	if err != nil {
		return false, err
	}
	if f.Invert {
		return keep, nil
	}
	return !keep, nil
}
