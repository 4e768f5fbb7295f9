package rank

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/utils"
)

// DefaultWeights 是各证据类别的单条目分值。
var DefaultWeights = map[core.Category]float64{
	core.CategoryActors:         10,
	core.CategoryDirectors:      15,
	core.CategoryGenres:         5,
	core.CategoryWishedActor:    30,
	core.CategoryWishedDirector: 30,
}

const (
	DefaultComboBonus = 50

	DefaultProximityWindow = 5
	DefaultProximityMax    = 20
	DefaultProximityStep   = 2
)

// PointsNode 按证据计分并按分数降序（稳定）排序。
//
// 单条证据中每个类别：条目数 × 权重 × max(|sharedMovies|, 1)；
// 同一条证据同时含 wishedActor 与 wishedDirector 时另加 ComboBonus；
// 年代接近加分：对每个种子年份 T，|Y-T| <= Window 时加 Max - Step*|Y-T|。
//
// 写入 labels：rank_points
type PointsNode struct {
	Weights    map[core.Category]float64
	ComboBonus float64

	ProximityWindow int
	ProximityMax    float64
	ProximityStep   float64
}

// NewPointsNode 使用默认权重创建计分节点。
func NewPointsNode() *PointsNode {
	w := make(map[core.Category]float64, len(DefaultWeights))
	for k, v := range DefaultWeights {
		w[k] = v
	}
	return &PointsNode{
		Weights:         w,
		ComboBonus:      DefaultComboBonus,
		ProximityWindow: DefaultProximityWindow,
		ProximityMax:    DefaultProximityMax,
		ProximityStep:   DefaultProximityStep,
	}
}

func (n *PointsNode) Name() string        { return "rank.points" }
func (n *PointsNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *PointsNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	targets, unavailable := n.targetYears(rctx)

	for _, it := range items {
		if it == nil {
			continue
		}
		bd := n.Score(it)
		bd.Proximity = n.Proximity(it.PublicationDate, targets, unavailable)
		it.Breakdown = bd
		it.Score = bd.Total()
		it.PutLabel("rank_points", utils.Label{Value: strconv.FormatFloat(it.Score, 'f', -1, 64), Source: "rank"})
	}

	SortByScore(items)
	return items, nil
}

// Score 计算类别分与组合加分（不含年代加分）。
func (n *PointsNode) Score(it *core.Item) *core.Breakdown {
	bd := core.NewBreakdown()
	for _, ev := range it.Evidence {
		mult := float64(ev.Multiplier())
		for _, cat := range core.Categories {
			entries := ev.Common[cat]
			if len(entries) == 0 {
				continue
			}
			w := n.Weights[cat]
			bd.Categories[cat] = append(bd.Categories[cat], core.CategoryPoints{
				Items:         slices.Clone(entries),
				SharedMovies:  slices.Clone(ev.SharedMovies),
				Weight:        w,
				PointsAwarded: float64(len(entries)) * w * mult,
			})
		}
		if ev.Has(core.CategoryWishedActor) && ev.Has(core.CategoryWishedDirector) {
			bd.Combos = append(bd.Combos, core.ComboPoints{
				WishedActor:    slices.Clone(ev.Common[core.CategoryWishedActor]),
				WishedDirector: slices.Clone(ev.Common[core.CategoryWishedDirector]),
				SharedMovies:   slices.Clone(ev.SharedMovies),
				PointsAwarded:  n.ComboBonus,
			})
		}
	}
	return bd
}

// Proximity 计算年代接近加分；候选日期缺失或无法解析时返回 Available=false。
func (n *PointsNode) Proximity(date string, targets []int, unavailableSeeds []string) core.ProximityBonus {
	pb := core.ProximityBonus{
		TargetYears:      targets,
		UnavailableSeeds: unavailableSeeds,
	}
	year, ok := ParseYear(date)
	if !ok {
		pb.Reason = "candidate publication date unavailable"
		return pb
	}
	pb.PublicationYear = year
	if len(targets) == 0 {
		pb.Reason = "no seed publication dates available"
		return pb
	}
	pb.Available = true
	for _, t := range targets {
		pb.PointsAwarded += n.proximityTerm(year, t)
	}
	return pb
}

func (n *PointsNode) proximityTerm(year, target int) float64 {
	d := year - target
	if d < 0 {
		d = -d
	}
	if d > n.ProximityWindow {
		return 0
	}
	return max(0, n.ProximityMax-n.ProximityStep*float64(d))
}

// targetYears 返回种子电影的发行年份（按种子顺序，可重复）及缺失日期的种子。
func (n *PointsNode) targetYears(rctx *core.RecommendContext) ([]int, []string) {
	if rctx == nil {
		return nil, nil
	}
	var (
		years       []int
		unavailable []string
	)
	for _, seed := range rctx.Seeds.Movies {
		rec, ok := rctx.SeedMovies[seed]
		if !ok {
			unavailable = append(unavailable, seed)
			continue
		}
		y, ok := ParseYear(rec.PublicationDate)
		if !ok {
			unavailable = append(unavailable, seed)
			continue
		}
		years = append(years, y)
	}
	return years, unavailable
}

// ParseYear 从 "YYYY-MM-DD"、"YYYY" 或 xsd:dateTime 中取年份。
func ParseYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}

// SortByScore 按 Score 稳定降序排序，nil 排在最后。
func SortByScore(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
}

var _ pipeline.Node = (*PointsNode)(nil)
