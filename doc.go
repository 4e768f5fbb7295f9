// Package movierec 是基于知识图谱的电影推荐服务。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（图谱召回 → 证据计分 → 截断 → 外部元数据 → 评分调整 → 截断）
// - Evidence-first: 每个候选的证据按「共享的种子电影集合」分组合并，得分与 breakdown 逐项可审计
// - Labels-first: labels 全链路透传与标准化 merge，用于 explain 与观测
// - 局部失败不影响整体：关系查询失败视为空结果，元数据查询失败使用默认记录
package movierec

import "github.com/rushteam/movierec/pipeline"

// 轻量 facade：便于直接 import "movierec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
