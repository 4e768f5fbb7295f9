package core

import "github.com/rushteam/movierec/pkg/utils"

// Item 是推荐链路中的统一承载结构：候选记录、证据、分数、元数据、标签。
//
//   - recall 阶段：ID + Evidence，随后批量补全 Title / PublicationDate / IMDbID
//   - rank 阶段：Score + Breakdown
//   - postprocess 阶段：Metadata（外部元数据，可能为 nil）
//
// Labels 用于解释与观测；Score 用于排序决策。
type Item struct {
	ID              string
	Title           string
	IMDbID          string
	PublicationDate string

	Evidence  []*Evidence
	Score     float64
	Breakdown *Breakdown
	Metadata  *MovieMetadata

	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// EvidenceFor 返回 key 等于 sharedMovies（规范化后）的证据，不存在返回 nil。
func (it *Item) EvidenceFor(sharedMovies []string) *Evidence {
	key := NormalizeSharedMovies(sharedMovies)
	for _, e := range it.Evidence {
		if e.HasKey(key) {
			return e
		}
	}
	return nil
}

// MovieRecord 是图谱中电影的基础字段，缺失字段为空串。
type MovieRecord struct {
	URI             string `json:"uri"`
	Title           string `json:"title,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty"`
	IMDbID          string `json:"imdbId,omitempty"`
}
