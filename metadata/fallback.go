package metadata

import "github.com/rushteam/movierec/core"

// 外部查询失败时使用的占位图
const (
	PlaceholderPoster  = "https://media.istockphoto.com/id/995815438/vector/movie-and-film-modern-retro-vintage-poster-background.jpg?s=612x612&w=0&k=20&c=UvRsJaKcp0EKIuqDKp6S7Dwhltt0D5rbegPkS-B8nDQ="
	PlaceholderProfile = "https://upload.wikimedia.org/wikipedia/commons/b/bc/Unknown_person.jpg"

	DefaultMediaType = "movie"
)

// DefaultMovie 是电影元数据查询失败时的默认记录：人气 0、占位海报、无评分。
func DefaultMovie(key core.MovieKey) *core.MovieMetadata {
	return &core.MovieMetadata{
		URI:       key.URI,
		IMDbID:    key.IMDbID,
		MediaType: DefaultMediaType,
		Poster:    PlaceholderPoster,
		Fallback:  true,
	}
}

// DefaultPerson 是人物元数据查询失败时的默认记录：人气 0、占位头像。
func DefaultPerson(uri string) *core.PersonMetadata {
	return &core.PersonMetadata{
		URI:      uri,
		Profile:  PlaceholderProfile,
		Fallback: true,
	}
}
