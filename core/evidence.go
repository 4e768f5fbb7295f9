package core

import "slices"

// Category 是证据类别，决定计分权重。
type Category string

const (
	CategoryActors         Category = "actors"
	CategoryDirectors      Category = "directors"
	CategoryGenres         Category = "genres"
	CategoryWishedActor    Category = "wishedActor"
	CategoryWishedDirector Category = "wishedDirector"
)

// Categories 按固定顺序列出全部类别（breakdown 输出与计分遍历使用该顺序）。
var Categories = []Category{
	CategoryActors,
	CategoryDirectors,
	CategoryGenres,
	CategoryWishedActor,
	CategoryWishedDirector,
}

// Common 是一条证据中 类别 -> 条目列表（演员名、导演名、类型名等）。
type Common map[Category][]string

// Clone 深拷贝。
func (c Common) Clone() Common {
	if c == nil {
		return nil
	}
	out := make(Common, len(c))
	for k, v := range c {
		out[k] = slices.Clone(v)
	}
	return out
}

// Evidence 是候选电影的一条证据：归属于同一组种子电影（SharedMovies）的全部类别条目。
//
// SharedMovies 是排序去重后的种子 URI 序列，作为合并 key：
// 同一候选下 key 相同的两条证据必须合并为一条（拼接各类别列表）。
type Evidence struct {
	SharedMovies []string `json:"sharedMovies"`
	Common       Common   `json:"common"`
}

// NewEvidence 以规范化后的 sharedMovies 创建一条证据。
func NewEvidence(sharedMovies []string, common Common) *Evidence {
	return &Evidence{
		SharedMovies: SortedUnique(sharedMovies),
		Common:       common.Clone(),
	}
}

// NormalizeSharedMovies 返回合并 key：排序去重的种子序列。
func NormalizeSharedMovies(sharedMovies []string) []string {
	return SortedUnique(sharedMovies)
}

// HasKey 判断证据的 key 是否等于已规范化的 key。
func (e *Evidence) HasKey(key []string) bool {
	return slices.Equal(e.SharedMovies, key)
}

// Absorb 把 common 中每个类别的条目追加到本条证据同类别列表末尾（不存在则创建）。
func (e *Evidence) Absorb(common Common) {
	if e.Common == nil {
		e.Common = make(Common, len(common))
	}
	for _, cat := range sortedCategories(common) {
		e.Common[cat] = append(e.Common[cat], common[cat]...)
	}
}

// Has 判断本条证据是否包含某类别（列表非空）。
func (e *Evidence) Has(cat Category) bool {
	return len(e.Common[cat]) > 0
}

// Multiplier 是本条证据的计分乘数：max(|SharedMovies|, 1)。
func (e *Evidence) Multiplier() int {
	return max(len(e.SharedMovies), 1)
}

// sortedCategories 以 Categories 顺序返回 common 中出现的类别，未知类别按字典序排在最后。
func sortedCategories(common Common) []Category {
	out := make([]Category, 0, len(common))
	for _, cat := range Categories {
		if _, ok := common[cat]; ok {
			out = append(out, cat)
		}
	}
	var extra []Category
	for cat := range common {
		if !slices.Contains(Categories, cat) {
			extra = append(extra, cat)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
