// Package store 提供 core.Store 的实现：内存与 Redis。
//
// 接口定义在 core 包，元数据缓存通过 core.Store 使用本包：
//
//	var s core.Store = store.NewMemoryStore()
//	s, err := store.NewRedisStore(ctx, store.RedisConfig{Addr: "localhost:6379"})
package store

import "github.com/rushteam/movierec/core"

// ErrNotFound 是 core.ErrStoreNotFound 的别名。
var ErrNotFound = core.ErrStoreNotFound
