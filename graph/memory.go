package graph

import (
	"context"
	"slices"
	"sync"

	"github.com/rushteam/movierec/core"
)

// MemoryGraph 是内存实现的 GraphService，用于测试/开发。
//
// Rows 按查询名保存结果行；KeyVars 指定某查询名下用于匹配 q.IDs 的绑定变量，
// 设置后只返回该变量值属于本批 IDs 的行（模拟 VALUES 子句，便于验证分批）。
type MemoryGraph struct {
	mu      sync.Mutex
	Rows    map[string][]core.Binding
	KeyVars map[string]string
	Errs    map[string]error
	calls   []core.GraphQuery
}

func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		Rows:    make(map[string][]core.Binding),
		KeyVars: make(map[string]string),
		Errs:    make(map[string]error),
	}
}

// Add 追加一行结果，keyVar 非空时记录该查询名的匹配变量。
func (g *MemoryGraph) Add(name, keyVar string, row core.Binding) *MemoryGraph {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Rows[name] = append(g.Rows[name], row)
	if keyVar != "" {
		g.KeyVars[name] = keyVar
	}
	return g
}

func (g *MemoryGraph) Name() string { return "memory" }

func (g *MemoryGraph) Select(ctx context.Context, q core.GraphQuery) ([]core.Binding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, q)

	if err, ok := g.Errs[q.Name]; ok && err != nil {
		return nil, err
	}
	keyVar := g.KeyVars[q.Name]
	out := make([]core.Binding, 0, len(g.Rows[q.Name]))
	for _, row := range g.Rows[q.Name] {
		if keyVar != "" && !slices.Contains(q.IDs, row[keyVar]) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// Calls 返回已执行的查询（按调用顺序）。
func (g *MemoryGraph) Calls() []core.GraphQuery {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.calls)
}

var _ core.GraphService = (*MemoryGraph)(nil)
