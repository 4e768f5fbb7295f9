package conv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{in: 7.3, want: 7.3, wantOK: true},
		{in: 5, want: 5, wantOK: true},
		{in: int64(3), want: 3, wantOK: true},
		{in: "6.8", want: 6.8, wantOK: true},
		{in: " 8 ", want: 8, wantOK: true},
		{in: "N/A", wantOK: false},
		{in: nil, wantOK: false},
		{in: true, wantOK: false},
	}
	for _, tt := range tests {
		got, ok := ToFloat64(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %v", tt.in)
		if tt.wantOK {
			assert.InDelta(t, tt.want, got, 1e-9)
		}
	}
}

func TestConfigGetters(t *testing.T) {
	cfg := map[string]any{
		"n":        200,
		"weight":   10,
		"ratio":    0.5,
		"timeout":  "1500ms",
		"seconds":  2,
		"label":    "points",
		"ids":      []any{"Q1", 42.0},
		"weights":  map[string]any{"actors": 10},
		"bad_time": "soon",
	}

	assert.Equal(t, int64(200), ConfigGetInt64(cfg, "n", 0))
	assert.Equal(t, int64(7), ConfigGetInt64(cfg, "missing", 7))
	assert.Equal(t, 10.0, ConfigGetFloat64(cfg, "weight", 0))
	assert.Equal(t, 0.5, ConfigGetFloat64(cfg, "ratio", 0))
	assert.Equal(t, 1.0, ConfigGetFloat64(cfg, "label", 1))
	assert.Equal(t, 1500*time.Millisecond, ConfigGetDuration(cfg, "timeout", 0))
	assert.Equal(t, 2*time.Second, ConfigGetDuration(cfg, "seconds", 0))
	assert.Equal(t, time.Second, ConfigGetDuration(cfg, "bad_time", time.Second))
	assert.Equal(t, "points", ConfigGet(cfg, "label", ""))
	assert.Equal(t, []string{"Q1", "42"}, SliceAnyToString(cfg["ids"]))
	assert.Equal(t, map[string]any{"actors": 10}, ConfigGetMap(cfg, "weights"))
	assert.Nil(t, ConfigGetMap(cfg, "label"))
}
