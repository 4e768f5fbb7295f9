// Package filter 提供候选结果过滤：黑名单、CEL 表达式，以及组合多个过滤器的 FilterNode。
package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Preparer 是可选接口：FilterNode 在逐个判断 Item 之前调用一次，
// 用于加载请求级数据（如从 Store 读取黑名单），避免按 Item 重复读取。
type Preparer interface {
	Prepare(ctx context.Context, rctx *core.RecommendContext) error
}
