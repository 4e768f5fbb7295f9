package recall

import (
	"context"
	"strings"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/graph"
)

// MovieResolver 批量解析电影的标题、发行日期、IMDb ID。
type MovieResolver struct {
	Graph          core.GraphService
	BatchSize      int
	PropertyPrefix string
}

// Resolve 返回 URI -> MovieRecord；查不到的电影不出现在结果中。
// 同一电影有多个发行日期时取最早的一个，日期只保留 "YYYY-MM-DD" 部分。
func (r *MovieResolver) Resolve(ctx context.Context, uris []string) (map[string]core.MovieRecord, error) {
	out := make(map[string]core.MovieRecord)
	movies := graph.FilterValid(core.SortedUnique(uris))
	if r.Graph == nil || len(movies) == 0 {
		return out, nil
	}

	for _, batch := range graph.Chunk(movies, r.BatchSize) {
		rows, err := r.Graph.Select(ctx, core.GraphQuery{
			Name: "movie_data",
			IDs:  batch,
			Text: movieDataQuery(r.PropertyPrefix, batch),
		})
		if err != nil {
			return out, err
		}
		for _, row := range rows {
			uri := row[varMovie]
			if uri == "" {
				continue
			}
			rec := out[uri]
			rec.URI = uri
			if rec.Title == "" {
				rec.Title = row[varTitle]
			}
			if rec.IMDbID == "" {
				rec.IMDbID = row[varIMDbID]
			}
			if d := normalizeDate(row[varDate]); d != "" && (rec.PublicationDate == "" || d < rec.PublicationDate) {
				rec.PublicationDate = d
			}
			out[uri] = rec
		}
	}
	return out, nil
}

// normalizeDate 去掉 xsd:dateTime 的时间部分。
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	return s
}
