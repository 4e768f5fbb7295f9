package core

import "context"

// MetadataService 是外部元数据（TMDB、OMDb 等）的领域接口。
//
// 约定：单个实体查询失败（超时、无结果、响应格式错误）在实现内部替换为默认记录，
// 不通过 error 返回；error 仅表示整个批次无法执行（如 ctx 已取消）。
// 返回的 map 以实体 URI 为 key，调用方对缺失的 key 视为「无元数据」。
type MetadataService interface {
	// Name 返回服务名称（用于日志/监控）
	Name() string

	// BatchGetMovies 批量获取电影元数据
	BatchGetMovies(ctx context.Context, keys []MovieKey) (map[string]*MovieMetadata, error)

	// BatchGetPeople 批量获取人物（演员/导演）元数据
	BatchGetPeople(ctx context.Context, uris []string) (map[string]*PersonMetadata, error)
}

// MovieKey 是电影元数据查询键。
type MovieKey struct {
	URI    string
	IMDbID string
}

// MovieMetadata 是电影的外部元数据。
type MovieMetadata struct {
	URI        string  `json:"uri"`
	IMDbID     string  `json:"imdb,omitempty"`
	MediaType  string  `json:"media_type"`
	Popularity float64 `json:"popularity"`
	Poster     string  `json:"poster"`
	Backdrop   string  `json:"backdrop,omitempty"`
	Overview   string  `json:"overview,omitempty"`

	// TMDBRating 是 TMDB vote_average，0 表示缺失
	TMDBRating float64 `json:"ratings,omitempty"`

	// IMDbRating 是 OMDb imdbRating，nil 表示缺失
	IMDbRating *float64 `json:"imdb_ratings,omitempty"`

	// Fallback 表示 TMDB 查询失败，字段为默认值
	Fallback bool `json:"fallback,omitempty"`
}

// 评分来源
const (
	RatingSourceTMDB = "tmdb"
	RatingSourceIMDb = "imdb"
)

// Rating 返回用于评分调整的分值及来源：TMDB vote_average 优先，缺失时回退 IMDb，均缺失返回 ok=false。
func (m *MovieMetadata) Rating() (rating float64, source string, ok bool) {
	return m.RatingFrom(RatingSourceTMDB)
}

// RatingFrom 以 primary 为首选来源，另一来源作为回退。
func (m *MovieMetadata) RatingFrom(primary string) (rating float64, source string, ok bool) {
	if m == nil {
		return 0, "", false
	}
	order := [2]string{RatingSourceTMDB, RatingSourceIMDb}
	if primary == RatingSourceIMDb {
		order = [2]string{RatingSourceIMDb, RatingSourceTMDB}
	}
	for _, src := range order {
		if r, ok := m.ratingOf(src); ok {
			return r, src, true
		}
	}
	return 0, "", false
}

func (m *MovieMetadata) ratingOf(source string) (float64, bool) {
	switch source {
	case RatingSourceTMDB:
		return m.TMDBRating, m.TMDBRating > 0
	case RatingSourceIMDb:
		if m.IMDbRating != nil && *m.IMDbRating > 0 {
			return *m.IMDbRating, true
		}
	}
	return 0, false
}

// PersonMetadata 是人物的外部元数据。
type PersonMetadata struct {
	URI        string  `json:"uri"`
	Popularity float64 `json:"popularity"`
	Profile    string  `json:"profile"`
	Fallback   bool    `json:"fallback,omitempty"`
}

// ErrMetadataNotConfigured 表示对应的外部来源未配置（如未提供 OMDb API Key）。
var ErrMetadataNotConfigured = NewDomainError(ModuleMetadata, ErrorCodeNotSupported, "metadata: source not configured")
