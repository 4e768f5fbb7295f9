package recall

import (
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/utils"
)

// Aggregator 把各关系源的结果合并为 候选 -> 证据列表。
//
// 同一候选下，证据按规范化后的 sharedMovies 划分：key 相同则拼接各类别列表，
// 否则追加新证据。合并结果与各源的处理顺序无关（类别列表视为多重集合）。
// Aggregator 只由单个 goroutine 使用。
type Aggregator struct {
	items map[string]*core.Item
	order []string
}

func NewAggregator() *Aggregator {
	return &Aggregator{items: make(map[string]*core.Item)}
}

// GetOrCreate 返回候选记录，不存在时创建空记录。
func (a *Aggregator) GetOrCreate(candidateID string) *core.Item {
	if it, ok := a.items[candidateID]; ok {
		return it
	}
	it := core.NewItem(candidateID)
	a.items[candidateID] = it
	a.order = append(a.order, candidateID)
	return it
}

// Get 返回候选记录。
func (a *Aggregator) Get(candidateID string) (*core.Item, bool) {
	it, ok := a.items[candidateID]
	return it, ok
}

// Merge 把一条贡献并入候选的证据列表。sharedMovies 规范化后为空时忽略。
func (a *Aggregator) Merge(candidateID string, sharedMovies []string, common core.Common) {
	key := core.NormalizeSharedMovies(sharedMovies)
	if candidateID == "" || len(key) == 0 || len(common) == 0 {
		return
	}
	it := a.GetOrCreate(candidateID)
	if ev := it.EvidenceFor(key); ev != nil {
		ev.Absorb(common)
		return
	}
	it.Evidence = append(it.Evidence, core.NewEvidence(key, common))
}

// MergeResult 合并一个关系源的全部结果，并在候选上记录来源标签。
func (a *Aggregator) MergeResult(res *Result) {
	if res == nil {
		return
	}
	for _, candidate := range res.CandidateIDs() {
		for _, g := range res.Candidates[candidate] {
			names := g.Names()
			if len(names) == 0 {
				continue
			}
			a.Merge(candidate, g.SharedMovies, core.Common{res.Category: names})
		}
		if it, ok := a.items[candidate]; ok {
			it.PutLabel("recall_relation", utils.Label{Value: res.Source, Source: "recall"})
		}
	}
}

// Len 候选数。
func (a *Aggregator) Len() int { return len(a.order) }

// IDs 按首次出现顺序返回候选 URI。
func (a *Aggregator) IDs() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Items 按首次出现顺序返回候选记录。
func (a *Aggregator) Items() []*core.Item {
	out := make([]*core.Item, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.items[id])
	}
	return out
}

// Apply 用批量解析结果填充候选的标题、发行日期、IMDb ID；缺失字段保持为空。
func (a *Aggregator) Apply(records map[string]core.MovieRecord) {
	for id, it := range a.items {
		rec, ok := records[id]
		if !ok {
			continue
		}
		it.Title = rec.Title
		it.PublicationDate = rec.PublicationDate
		it.IMDbID = rec.IMDbID
	}
}
