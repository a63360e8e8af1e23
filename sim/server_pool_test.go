package sim

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestServerPool_BaselineFreeAtZeroBurstAtWindowEnd(t *testing.T) {
	// GIVEN 2 baseline and 3 burst servers over a 1000ns window
	p := NewServerPool(1000, 2, 5)
	require.Equal(t, 5, p.Len())

	// THEN baseline servers come out first, then burst servers at the window end
	want := []int64{0, 0, 1000, 1000, 1000}
	for i, w := range want {
		if got := p.PopEarliest(); got != w {
			t.Errorf("pop %d = %d, want %d", i, got, w)
		}
	}
	assert.Equal(t, 0, p.Len())
}

func TestServerPool_NoBurstWhenBaselineEqualsPeak(t *testing.T) {
	p := NewServerPool(1000, 3, 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, int64(0), p.PopEarliest())
	}
}

func TestServerPool_PeekDoesNotRemove(t *testing.T) {
	p := NewServerPool(500, 0, 1)

	got, ok := p.PeekEarliest()
	require.True(t, ok)
	assert.Equal(t, int64(500), got)
	assert.Equal(t, 1, p.Len())

	p.PopEarliest()
	_, ok = p.PeekEarliest()
	assert.False(t, ok)
}

func TestServerPool_InvalidCapacitiesPanic(t *testing.T) {
	tests := []struct {
		name           string
		baseline, peak int
	}{
		{"zero peak", 0, 0},
		{"baseline above peak", 3, 2},
		{"negative baseline", -1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { NewServerPool(100, tt.baseline, tt.peak) })
		})
	}
}

func TestServerPool_PopEmptyPanics(t *testing.T) {
	p := NewServerPool(0, 1, 1)
	p.PopEarliest()
	assert.Panics(t, func() { p.PopEarliest() })
}

// TestServerPool_BehavesAsSortedMultiset checks the pool against a sorted
// slice model under random push/pop sequences.
func TestServerPool_BehavesAsSortedMultiset(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := NewServerPool(100, 1, 1)
		model := []int64{0}

		t.Repeat(map[string]func(*rapid.T){
			"push": func(t *rapid.T) {
				v := rapid.Int64Range(0, 1_000_000).Draw(t, "freeAt")
				p.Push(v)
				model = append(model, v)
				slices.Sort(model)
			},
			"pop": func(t *rapid.T) {
				if len(model) == 0 {
					t.Skip("pool is empty")
				}
				want := model[0]
				model = model[1:]
				require.Equal(t, want, p.PopEarliest())
			},
			"": func(t *rapid.T) {
				require.Equal(t, len(model), p.Len())
			},
		})
	})
}
