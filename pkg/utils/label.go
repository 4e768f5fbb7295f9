package utils

import "strings"

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// Value 与 Source 的语义由业务自定义，这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / rank / rerank / postprocess ...
}

// MergeLabel 用于合并同名 Label，遵循「保留历史、可追踪」的默认策略。
// - Value: 以 '|' 累积，已存在的值不重复追加
// - Source: 以 ',' 累积，已存在的来源不重复追加
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = appendUnique(existing.Value, incoming.Value, "|")
	merged.Source = appendUnique(existing.Source, incoming.Source, ",")
	return merged
}

// LabelValues 返回累积 Value 拆分后的列表。
func LabelValues(lbl Label) []string {
	if lbl.Value == "" {
		return nil
	}
	return strings.Split(lbl.Value, "|")
}

func appendUnique(existing, incoming, sep string) string {
	switch {
	case existing == "":
		return incoming
	case incoming == "":
		return existing
	}
	for _, part := range strings.Split(existing, sep) {
		if part == incoming {
			return existing
		}
	}
	return existing + sep + incoming
}
