// Package dsl 提供基于 CEL（Common Expression Language）的候选表达式求值。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/utils"
	"github.com/rushteam/movierec/rank"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的表达式，可在多个 goroutine 中复用。
//
// 可用变量：
//   - item.id / item.title / item.imdb_id / item.publication_date / item.year
//   - item.score（别名 item.points）/ item.rating / item.popularity / item.evidence_count
//   - item.categories：证据中出现过的类别列表（如 ["genres", "wishedActor"]）
//   - item.relations：贡献该候选的关系源（如 ["shared_genre", "wished_director"]）
//   - label.<key>：Item 标签的值（如 label.recall_relation）
//   - rctx.request_id / rctx.seed_movies / rctx.wished_actors / rctx.wished_directors / rctx.params
//
// 示例：
//   - `item.year >= 1990`
//   - `"wishedDirector" in item.categories`
//   - `item.rating == 0.0 || item.rating >= 6.0`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；表达式为空时返回 nil（视为恒真）。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("dsl: init env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("dsl: compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("dsl: program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string {
	if p == nil {
		return ""
	}
	return p.expr
}

// Evaluate 对单个候选求值，表达式必须返回 bool。nil Program 恒为 true。
func (p *Program) Evaluate(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 label key 会报错，表达式中应先判断 label.key != null
		return false, fmt.Errorf("dsl: eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("dsl: expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Eval 编译并求值，适合一次性调用。
func Eval(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Evaluate(item, rctx)
}

func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	item := map[string]any{}
	label := map[string]any{}
	if it != nil {
		year, _ := rank.ParseYear(it.PublicationDate)
		var rating, popularity float64
		if r, _, ok := it.Metadata.Rating(); ok {
			rating = r
		}
		if it.Metadata != nil {
			popularity = it.Metadata.Popularity
		}
		categories := []string{}
		seen := map[core.Category]bool{}
		for _, ev := range it.Evidence {
			for _, cat := range core.Categories {
				if ev.Has(cat) && !seen[cat] {
					seen[cat] = true
					categories = append(categories, string(cat))
				}
			}
		}
		item = map[string]any{
			"id":               it.ID,
			"title":            it.Title,
			"imdb_id":          it.IMDbID,
			"publication_date": it.PublicationDate,
			"year":             int64(year),
			"score":            it.Score,
			"points":           it.Score,
			"rating":           rating,
			"popularity":       popularity,
			"evidence_count":   int64(len(it.Evidence)),
			"categories":       categories,
			"relations":        nonNil(utils.LabelValues(it.Labels["recall_relation"])),
		}
		for k, v := range it.Labels {
			label[k] = v.Value
		}
	}

	r := map[string]any{}
	if rctx != nil {
		r = map[string]any{
			"request_id":       rctx.RequestID,
			"seed_movies":      nonNil(rctx.Seeds.Movies),
			"wished_actors":    nonNil(rctx.Seeds.Actors),
			"wished_directors": nonNil(rctx.Seeds.Directors),
			"params":           rctx.Params,
		}
	}

	return map[string]any{
		"item":  item,
		"label": label,
		"rctx":  r,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
