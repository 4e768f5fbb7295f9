package core

import "context"

// GraphService 是知识图谱查询的领域接口（SPARQL 端点等）。
//
// 实现：
//   - graph.SPARQLClient（Fuseki / Wikidata 兼容的 SPARQL 1.1 HTTP 协议）
//   - 测试中可用内存实现按 GraphQuery.Name 返回固定结果
type GraphService interface {
	// Name 返回图谱后端名称（用于日志/监控）
	Name() string

	// Select 执行一条 SELECT 查询，返回变量绑定行；无结果返回空切片而非错误
	Select(ctx context.Context, q GraphQuery) ([]Binding, error)
}

// GraphQuery 是一条参数化的图谱查询。
type GraphQuery struct {
	// Name 关系名（如 "shared_cast"），用于日志、指标
	Name string

	// IDs 本次查询的实体 URI（已分批）
	IDs []string

	// Text 完整查询文本
	Text string
}

// Binding 是查询结果的一行：变量名 -> 值（URI 或字面量的字符串形式）。
type Binding map[string]string
