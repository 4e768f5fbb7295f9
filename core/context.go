package core

import "github.com/rushteam/movierec/pkg/utils"

// RecommendContext 承载单次推荐请求的种子与中间结果，贯穿整个 Pipeline 透传。
//
// 生命周期：一次请求一个实例，不跨请求共享，节点串行访问，无需加锁。
type RecommendContext struct {
	RequestID string

	// Seeds 是请求的种子实体集合，创建后不再修改
	Seeds SeedSet

	// SeedMovies 是种子电影的基础字段（标题、发行日期、IMDb ID），
	// 由 recall 阶段批量解析写入，rank 阶段用于年代接近加分
	SeedMovies map[string]MovieRecord

	// Labels 是请求级标签（用于观测 / explain）
	Labels map[string]utils.Label

	// Params 请求级参数，例如 limit、debug
	Params map[string]any
}

// NewRecommendContext 创建请求上下文。
func NewRecommendContext(requestID string, seeds SeedSet) *RecommendContext {
	return &RecommendContext{
		RequestID:  requestID,
		Seeds:      seeds,
		SeedMovies: make(map[string]MovieRecord),
		Labels:     make(map[string]utils.Label),
		Params:     make(map[string]any),
	}
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
