package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{
			name:     "empty existing takes incoming",
			existing: Label{},
			incoming: Label{Value: "shared_cast", Source: "recall"},
			want:     Label{Value: "shared_cast", Source: "recall"},
		},
		{
			name:     "empty incoming keeps existing",
			existing: Label{Value: "shared_cast", Source: "recall"},
			incoming: Label{},
			want:     Label{Value: "shared_cast", Source: "recall"},
		},
		{
			name:     "distinct values accumulate",
			existing: Label{Value: "shared_cast", Source: "recall"},
			incoming: Label{Value: "shared_genre", Source: "recall"},
			want:     Label{Value: "shared_cast|shared_genre", Source: "recall"},
		},
		{
			name:     "repeated value is not appended twice",
			existing: Label{Value: "shared_cast|shared_genre", Source: "recall"},
			incoming: Label{Value: "shared_genre", Source: "rank"},
			want:     Label{Value: "shared_cast|shared_genre", Source: "recall,rank"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeLabel(tt.existing, tt.incoming))
		})
	}
}

func TestLabelValues(t *testing.T) {
	assert.Nil(t, LabelValues(Label{}))
	assert.Equal(t, []string{"a", "b"}, LabelValues(Label{Value: "a|b"}))
}
