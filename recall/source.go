package recall

import (
	"context"
	"sort"

	"github.com/rushteam/movierec/core"
)

// Source 表示一个可复用的关系推断源（共享演员/导演/类型、指定演员/导演）。
// 各 Source 互相独立、与执行顺序无关，结果只在 Aggregator 中合并。
type Source interface {
	Name() string
	Category() core.Category
	Infer(ctx context.Context, rctx *core.RecommendContext) (*Result, error)
}

// Entity 是连接候选与种子的实体（演员、导演、类型）。
// SharedMovies 是经该实体连接到候选的种子电影（已规范化）。
type Entity struct {
	URI          string   `json:"uri"`
	Name         string   `json:"name"`
	Popularity   float64  `json:"popularity,omitempty"`
	Profile      string   `json:"profile,omitempty"`
	SharedMovies []string `json:"sharedMovieUris,omitempty"`
}

// Group 是某候选在一个关系下的记录：SharedMovies 为连接该候选的全部种子，Entities 为全部连接实体。
// 共享关系每个候选只有一个 Group；测试或自定义 Source 可以给出多个。
type Group struct {
	SharedMovies []string `json:"sharedMovieUris"`
	Entities     []Entity `json:"entities"`
}

// Names 返回实体名称列表（计分条目）。
func (g *Group) Names() []string {
	out := make([]string, 0, len(g.Entities))
	for _, e := range g.Entities {
		out = append(out, e.Name)
	}
	return out
}

// Result 是单个 Source 的输出：候选 URI -> 分组。没有结果时 Candidates 为空 map。
type Result struct {
	Source     string
	Category   core.Category
	Candidates map[string][]*Group
}

// NewResult 创建空结果。
func NewResult(source string, cat core.Category) *Result {
	return &Result{
		Source:     source,
		Category:   cat,
		Candidates: make(map[string][]*Group),
	}
}

// Len 返回候选数。
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Candidates)
}

// CandidateIDs 返回排序后的候选 URI。
func (r *Result) CandidateIDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.Candidates))
	for id := range r.Candidates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EntityURIs 返回结果中出现的全部实体 URI（去重、排序）。
func (r *Result) EntityURIs() []string {
	if r == nil {
		return nil
	}
	var uris []string
	for _, groups := range r.Candidates {
		for _, g := range groups {
			for _, e := range g.Entities {
				uris = append(uris, e.URI)
			}
		}
	}
	return core.SortedUnique(uris)
}

// entityAcc 累积单个 (候选, 实体) 的名称与种子集合。
type entityAcc struct {
	entity Entity
	seeds  map[string]struct{}
}

// grouper 把逐行结果 (候选, 实体, 种子) 汇总为每个候选一个 Group：
// SharedMovies 取该候选全部实体种子的并集，实体各自保留自己的种子集合。
// 行的来源批次不影响结果，因此查询可以任意分批。
type grouper struct {
	byCandidate map[string]map[string]*entityAcc
}

func newGrouper() *grouper {
	return &grouper{byCandidate: make(map[string]map[string]*entityAcc)}
}

func (g *grouper) add(candidate, entityURI, entityName, seed string) {
	if candidate == "" || entityURI == "" || seed == "" {
		return
	}
	ents, ok := g.byCandidate[candidate]
	if !ok {
		ents = make(map[string]*entityAcc)
		g.byCandidate[candidate] = ents
	}
	acc, ok := ents[entityURI]
	if !ok {
		if entityName == "" {
			entityName = core.LocalID(entityURI)
		}
		acc = &entityAcc{
			entity: Entity{URI: entityURI, Name: entityName},
			seeds:  make(map[string]struct{}),
		}
		ents[entityURI] = acc
	}
	acc.seeds[seed] = struct{}{}
}

func (g *grouper) result(source string, cat core.Category) *Result {
	res := NewResult(source, cat)
	for candidate, ents := range g.byCandidate {
		grp := &Group{Entities: make([]Entity, 0, len(ents))}
		for _, acc := range ents {
			seeds := make([]string, 0, len(acc.seeds))
			for s := range acc.seeds {
				seeds = append(seeds, s)
			}
			e := acc.entity
			e.SharedMovies = core.NormalizeSharedMovies(seeds)
			grp.Entities = append(grp.Entities, e)
		}
		sortEntities(grp.Entities)
		grp.SharedMovies = entitySeeds(grp.Entities)
		res.Candidates[candidate] = []*Group{grp}
	}
	return res
}

// entitySeeds 返回实体种子集合的并集（规范化）。
func entitySeeds(ents []Entity) []string {
	var all []string
	for _, e := range ents {
		all = append(all, e.SharedMovies...)
	}
	return core.NormalizeSharedMovies(all)
}

func sortEntities(ents []Entity) {
	sort.Slice(ents, func(i, j int) bool {
		if ents[i].Name != ents[j].Name {
			return ents[i].Name < ents[j].Name
		}
		return ents[i].URI < ents[j].URI
	})
}
