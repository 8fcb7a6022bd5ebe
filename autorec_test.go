package autorec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vsariola/autorec"
)

func TestRange(t *testing.T) {
	r := autorec.Range{Start: 1, End: 3}
	assert.Equal(t, 2.0, r.Length())
	assert.False(t, r.IsEmpty())
	assert.True(t, autorec.Range{Start: 2, End: 2}.IsEmpty())
	assert.True(t, r.Contains(1))
	assert.False(t, r.Contains(3))
	assert.True(t, r.ContainsInclusive(3))
	assert.Equal(t, autorec.Range{Start: 0.5, End: 3.5}, r.Expanded(0.5))
	assert.True(t, r.Overlaps(autorec.Range{Start: 2.5, End: 4}))
	assert.False(t, r.Overlaps(autorec.Range{Start: 3.5, End: 4}))
	assert.Equal(t, autorec.Range{Start: 0, End: 3}, r.Union(autorec.Range{Start: 0, End: 2}))
	assert.Equal(t, 1.0, r.Clamp(-5))
	assert.Equal(t, 3.0, r.Clamp(5))
	assert.Equal(t, 2.0, r.Clamp(2))
}

func TestRangeSetAdd(t *testing.T) {
	tests := []struct {
		name   string
		add    []autorec.Range
		want   autorec.RangeSet
		wantTo float64
	}{
		{"empty ignored", []autorec.Range{{Start: 1, End: 1}}, nil, 0},
		{"disjoint sorted", []autorec.Range{{Start: 3, End: 4}, {Start: 0, End: 1}},
			autorec.RangeSet{{Start: 0, End: 1}, {Start: 3, End: 4}}, 2},
		{"overlap merges", []autorec.Range{{Start: 0, End: 2}, {Start: 1, End: 3}},
			autorec.RangeSet{{Start: 0, End: 3}}, 3},
		{"touch merges", []autorec.Range{{Start: 0, End: 1}, {Start: 1, End: 2}},
			autorec.RangeSet{{Start: 0, End: 2}}, 2},
		{"bridge merges three", []autorec.Range{{Start: 0, End: 1}, {Start: 2, End: 3}, {Start: 0.5, End: 2.5}},
			autorec.RangeSet{{Start: 0, End: 3}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s autorec.RangeSet
			for _, r := range tt.add {
				s.Add(r)
			}
			if tt.want == nil {
				assert.Empty(t, s)
			} else {
				assert.Equal(t, tt.want, s)
			}
			assert.InDelta(t, tt.wantTo, s.Total(), 1e-12)
		})
	}
}
