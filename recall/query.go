package recall

import (
	"fmt"

	"github.com/rushteam/movierec/graph"
)

// Wikidata 属性
const (
	PropertyCastMember      = "P161"
	PropertyDirector        = "P57"
	PropertyGenre           = "P136"
	PropertyPublicationDate = "P577"
	PropertyIMDbID          = "P345"

	DefaultPropertyPrefix = "http://www.wikidata.org/prop/direct/"
	rdfsLabel             = "http://www.w3.org/2000/01/rdf-schema#label"
)

// 查询变量名
const (
	varCandidate  = "otherMovie"
	varEntity     = "entity"
	varEntityName = "entityName"
	varSeed       = "targetMovie"
	varMovie      = "movie"
	varTitle      = "title"
	varDate       = "publicationDate"
	varIMDbID     = "imdbId"
)

func property(prefix, p string) string {
	if prefix == "" {
		prefix = DefaultPropertyPrefix
	}
	return "<" + prefix + p + ">"
}

// sharedQuery 查询与种子电影共享同一实体（经 prop 连接）、且带标签的其他电影。
// 结果不分组：每行 (候选, 实体, 实体名, 种子)，由 grouper 在客户端汇总。
func sharedQuery(prefix, prop string, seeds []string) string {
	p := property(prefix, prop)
	return fmt.Sprintf(`SELECT DISTINCT ?%[1]s ?%[2]s ?%[3]s ?%[4]s WHERE {
  VALUES ?%[4]s { %[5]s }
  ?%[4]s %[6]s ?%[2]s .
  ?%[1]s %[6]s ?%[2]s .
  OPTIONAL { ?%[2]s <%[7]s> ?%[3]s }
  FILTER EXISTS { ?%[1]s <%[7]s> ?candidateLabel }
  FILTER (?%[1]s != ?%[4]s)
}`, varCandidate, varEntity, varEntityName, varSeed, graph.Values(seeds), p, rdfsLabel)
}

// wishedQuery 查询与指定实体（演员/导演）经 prop 连接、且带标签的全部电影。
func wishedQuery(prefix, prop string, entities []string) string {
	p := property(prefix, prop)
	return fmt.Sprintf(`SELECT DISTINCT ?%[1]s ?%[2]s ?%[3]s WHERE {
  VALUES ?%[2]s { %[4]s }
  ?%[1]s %[5]s ?%[2]s .
  OPTIONAL { ?%[2]s <%[6]s> ?%[3]s }
  FILTER EXISTS { ?%[1]s <%[6]s> ?movieLabel }
}`, varMovie, varEntity, varEntityName, graph.Values(entities), p, rdfsLabel)
}

// movieDataQuery 查询电影的标题、发行日期、IMDb ID；任一字段缺失不影响其他字段。
func movieDataQuery(prefix string, movies []string) string {
	return fmt.Sprintf(`SELECT ?%[1]s ?%[2]s ?%[3]s ?%[4]s WHERE {
  VALUES ?%[1]s { %[5]s }
  OPTIONAL { ?%[1]s <%[6]s> ?%[2]s }
  OPTIONAL { ?%[1]s %[7]s ?%[3]s }
  OPTIONAL { ?%[1]s %[8]s ?%[4]s }
}`, varMovie, varTitle, varDate, varIMDbID, graph.Values(movies), rdfsLabel,
		property(prefix, PropertyPublicationDate), property(prefix, PropertyIMDbID))
}
