package core

// Breakdown 是候选得分的审计记录，必须与产生 Item.Score 的算术完全一致。
// 仅用于解释，不参与后续计算。
type Breakdown struct {
	// Categories 记录每条证据对每个类别的贡献（同一类别可出现在多条证据中）
	Categories map[Category][]CategoryPoints `json:"categories"`

	// Combos 记录 wishedActor + wishedDirector 同时出现的组合加分
	Combos []ComboPoints `json:"actor_director_combo,omitempty"`

	// Proximity 年代接近加分
	Proximity ProximityBonus `json:"proximity_bonus"`

	// Rating 评分调整
	Rating RatingAdjustment `json:"imdb_adjustment"`
}

// NewBreakdown 创建空的 Breakdown。
func NewBreakdown() *Breakdown {
	return &Breakdown{Categories: make(map[Category][]CategoryPoints)}
}

// CategoryPoints 是单条证据中单个类别的计分。
type CategoryPoints struct {
	Items         []string `json:"items"`
	SharedMovies  []string `json:"shared_movies"`
	Weight        float64  `json:"weight"`
	PointsAwarded float64  `json:"points_awarded"`
}

// ComboPoints 是组合加分记录。
type ComboPoints struct {
	WishedActor    []string `json:"wishedActor"`
	WishedDirector []string `json:"wishedDirector"`
	SharedMovies   []string `json:"shared_movies"`
	PointsAwarded  float64  `json:"points_awarded"`
}

// ProximityBonus 年代接近加分记录。
// Available=false 表示候选发行日期缺失或无法解析，Reason 给出说明，贡献为 0。
type ProximityBonus struct {
	Available        bool     `json:"available"`
	PublicationYear  int      `json:"publication_year,omitempty"`
	TargetYears      []int    `json:"target_years,omitempty"`
	UnavailableSeeds []string `json:"unavailable_seeds,omitempty"`
	PointsAwarded    float64  `json:"points_awarded"`
	Reason           string   `json:"reason,omitempty"`
}

// RatingAdjustment 评分调整记录。Applied=false 表示无评分、未调整。
type RatingAdjustment struct {
	Applied        bool    `json:"applied"`
	OriginalPoints float64 `json:"original_points"`
	Rating         float64 `json:"imdb_rating,omitempty"`
	RatingSource   string  `json:"rating_source,omitempty"`
	Multiplier     float64 `json:"multiplier,omitempty"`
	AdjustedPoints float64 `json:"adjusted_points"`
	Reason         string  `json:"reason,omitempty"`
}

// Total 按记录重新求和（类别 + 组合 + 年代），用于校验与测试。
func (b *Breakdown) Total() float64 {
	var total float64
	for _, entries := range b.Categories {
		for _, e := range entries {
			total += e.PointsAwarded
		}
	}
	for _, c := range b.Combos {
		total += c.PointsAwarded
	}
	return total + b.Proximity.PointsAwarded
}
