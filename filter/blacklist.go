package filter

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/rushteam/movierec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的电影 URI。
//
// 黑名单来源：
//   - ItemIDs：配置中的静态列表
//   - Store + Key：Store 中以 JSON 数组保存的 URI 列表，每次请求 Prepare 时读取一次
type BlacklistFilter struct {
	ItemIDs []string
	Store   core.Store
	Key     string

	static map[string]struct{}

	mu      sync.RWMutex
	dynamic map[string]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。ids 中的裸 ID 按 prefix 补全为 URI。
func NewBlacklistFilter(ids []string, store core.Store, key, prefix string) *BlacklistFilter {
	if prefix == "" {
		prefix = core.DefaultEntityPrefix
	}
	static := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if uri := core.ExpandURI(id, prefix); uri != "" {
			static[uri] = struct{}{}
		}
	}
	return &BlacklistFilter{
		ItemIDs: ids,
		Store:   store,
		Key:     key,
		static:  static,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

// Prepare 从 Store 读取黑名单。key 不存在视为空列表。
func (f *BlacklistFilter) Prepare(ctx context.Context, _ *core.RecommendContext) error {
	if f.Store == nil || f.Key == "" {
		return nil
	}
	ids, err := loadIDs(ctx, f.Store, f.Key)
	if err != nil {
		return err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	f.mu.Lock()
	f.dynamic = set
	f.mu.Unlock()
	return nil
}

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if _, ok := f.static[item.ID]; ok {
		return true, nil
	}
	f.mu.RLock()
	_, ok := f.dynamic[item.ID]
	f.mu.RUnlock()
	return ok, nil
}

func loadIDs(ctx context.Context, s core.Store, key string) ([]string, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("blacklist: get %s: %w", key, err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("blacklist: decode %s: %w", key, err)
	}
	return ids, nil
}
