package core

import (
	"fmt"
	"sort"
	"strings"
)

// EntityType 是种子实体的类型。
type EntityType string

const (
	EntityMovie    EntityType = "movie"
	EntityActor    EntityType = "actor"
	EntityDirector EntityType = "director"
)

// DefaultEntityPrefix 是知识图谱实体 URI 的默认前缀（Wikidata）。
const DefaultEntityPrefix = "http://www.wikidata.org/entity/"

// SeedInput 是推荐请求中的单个种子实体。
type SeedInput struct {
	URI  string     `json:"uri" validate:"required"`
	Type EntityType `json:"type" validate:"required,oneof=movie actor director"`
}

// SeedSet 是用户已选中的三组种子实体，请求期间不可变。
// 三组均为去重、排序后的实体 URI。
type SeedSet struct {
	Movies    []string
	Actors    []string
	Directors []string
}

// NewSeedSet 从请求输入构建 SeedSet。
// uri 为裸 ID（如 "Q123"）时使用 prefix 补全；未知类型或空 URI 返回 INVALID_INPUT。
func NewSeedSet(inputs []SeedInput, prefix string) (SeedSet, error) {
	if len(inputs) == 0 {
		return SeedSet{}, InvalidInput("recommend: at least one seed entity is required")
	}
	if prefix == "" {
		prefix = DefaultEntityPrefix
	}

	var movies, actors, directors []string
	for i, in := range inputs {
		uri := ExpandURI(strings.TrimSpace(in.URI), prefix)
		if uri == "" {
			return SeedSet{}, InvalidInput(fmt.Sprintf("recommend: seed %d has empty uri", i))
		}
		switch in.Type {
		case EntityMovie:
			movies = append(movies, uri)
		case EntityActor:
			actors = append(actors, uri)
		case EntityDirector:
			directors = append(directors, uri)
		default:
			return SeedSet{}, InvalidInput(fmt.Sprintf("recommend: seed %d has unknown type %q", i, in.Type))
		}
	}

	return SeedSet{
		Movies:    SortedUnique(movies),
		Actors:    SortedUnique(actors),
		Directors: SortedUnique(directors),
	}, nil
}

// IsEmpty 三组种子均为空。
func (s SeedSet) IsEmpty() bool {
	return len(s.Movies) == 0 && len(s.Actors) == 0 && len(s.Directors) == 0
}

// ExpandURI 对不含 scheme 的裸 ID 补全前缀。
func ExpandURI(id, prefix string) string {
	if id == "" {
		return ""
	}
	if strings.Contains(id, "://") {
		return id
	}
	return prefix + id
}

// LocalID 返回 URI 最后一段（如 "Q123"）。
func LocalID(uri string) string {
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// SortedUnique 返回排序去重后的副本，空输入返回 nil。
func SortedUnique(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
