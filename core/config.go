package core

import "time"

// RecallConfig 是召回（关系推断）相关的配置接口，用于提供默认值。
type RecallConfig interface {
	// DefaultPopularityThreshold 返回共享演员的最低人气（低于该值的演员被过滤）
	DefaultPopularityThreshold() float64

	// DefaultBatchSize 返回单条图谱查询携带的最大实体数
	DefaultBatchSize() int

	// DefaultTimeout 返回单个关系推断的超时时间
	DefaultTimeout() time.Duration
}

// DefaultRecallConfig 是默认的召回配置实现。
type DefaultRecallConfig struct{}

func (c *DefaultRecallConfig) DefaultPopularityThreshold() float64 {
	return 30
}

func (c *DefaultRecallConfig) DefaultBatchSize() int {
	return 100
}

func (c *DefaultRecallConfig) DefaultTimeout() time.Duration {
	return 30 * time.Second
}

// RankConfig 是排序阶段的候选池大小配置。
type RankConfig interface {
	// DefaultPoolSize 返回拉取外部元数据前保留的候选数
	DefaultPoolSize() int

	// DefaultResultSize 返回最终输出的候选数
	DefaultResultSize() int
}

// DefaultRankConfig 是默认的排序配置实现。
type DefaultRankConfig struct{}

func (c *DefaultRankConfig) DefaultPoolSize() int {
	return 200
}

func (c *DefaultRankConfig) DefaultResultSize() int {
	return 100
}
