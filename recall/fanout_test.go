package recall

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/core"
)

type slowSource struct {
	stubSource
	delay    time.Duration
	inflight *atomic.Int32
	peak     *atomic.Int32
}

func (s *slowSource) Infer(ctx context.Context, rctx *core.RecommendContext) (*Result, error) {
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-time.After(s.delay):
		return s.stubSource.Infer(ctx, rctx)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestFanout_ResultsInSourceOrder(t *testing.T) {
	var inflight, peak atomic.Int32
	mk := func(name string, delay time.Duration) Source {
		res := NewResult(name, core.CategoryGenres)
		res.Candidates[name] = []*Group{{SharedMovies: []string{"m1"}, Entities: []Entity{{URI: "g", Name: "G"}}}}
		return &slowSource{stubSource: stubSource{name: name, cat: core.CategoryGenres, res: res}, delay: delay, inflight: &inflight, peak: &peak}
	}
	f := &Fanout{Sources: []Source{mk("a", 30*time.Millisecond), mk("b", time.Millisecond), mk("c", 10*time.Millisecond)}, MaxConcurrent: 2}

	results := f.Run(context.Background(), nil)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Source)
	assert.Equal(t, "b", results[1].Source)
	assert.Equal(t, "c", results[2].Source)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestFanout_FailureBecomesEmpty(t *testing.T) {
	var inflight, peak atomic.Int32
	ok := NewResult("ok", core.CategoryActors)
	ok.Candidates["c1"] = []*Group{{SharedMovies: []string{"m1"}, Entities: []Entity{{URI: "a", Name: "A"}}}}

	f := &Fanout{
		Sources: []Source{
			&stubSource{name: "broken", cat: core.CategoryDirectors, err: errors.New("boom")},
			&slowSource{stubSource: stubSource{name: "slow", cat: core.CategoryGenres}, delay: time.Second, inflight: &inflight, peak: &peak},
			&stubSource{name: "ok", cat: core.CategoryActors, res: ok},
			&stubSource{name: "nil", cat: core.CategoryGenres},
		},
		Timeout: 20 * time.Millisecond,
	}

	results := f.Run(context.Background(), nil)
	require.Len(t, results, 4)
	assert.Equal(t, 0, results[0].Len())
	assert.Equal(t, core.CategoryDirectors, results[0].Category)
	assert.Equal(t, 0, results[1].Len())
	assert.Equal(t, 1, results[2].Len())
	assert.Equal(t, 0, results[3].Len())
	assert.Equal(t, "nil", results[3].Source)
}
