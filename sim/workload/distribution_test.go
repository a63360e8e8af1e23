package workload

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/shenango/bench/sim/internal/testutil"
)

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func TestConstant_IgnoresRandomSourceState(t *testing.T) {
	// GIVEN a constant distribution with a fractional mean
	d := Constant(100.7)

	// WHEN sampled from differently seeded sources
	for seed := uint64(0); seed < 5; seed++ {
		rng := newTestRand(seed)
		for i := 0; i < 100; i++ {
			// THEN every sample is floor(mean)
			if got := d.Sample(rng); got != 100 {
				t.Fatalf("seed %d sample %d: got %d, want 100", seed, i, got)
			}
		}
	}
}

func TestConstant_DoesNotConsumeRandomness(t *testing.T) {
	rng1 := newTestRand(7)
	rng2 := newTestRand(7)

	Constant(10).Sample(rng1)

	assert.Equal(t, rng2.Uint64(), rng1.Uint64(), "constant sampling must leave the source untouched")
}

func TestConstant_ZeroMean(t *testing.T) {
	rng := newTestRand(1)
	for i := 0; i < 10; i++ {
		if got := Constant(0).Sample(rng); got != 0 {
			t.Fatalf("Constant(0) sample = %d, want 0", got)
		}
	}
}

func TestExponential_MeanMatchesParam(t *testing.T) {
	rng := newTestRand(42)
	d := Exponential(10_000)

	n := 20000
	sum := int64(0)
	for i := 0; i < n; i++ {
		sum += d.Sample(rng)
	}
	testutil.AssertFloat64Equal(t, "exponential mean", 10_000, float64(sum)/float64(n), 0.05)
}

func TestBimodal1_TwoOutcomesWithOneInTenStragglers(t *testing.T) {
	// GIVEN Bimodal1 with mean 100ns
	rng := newTestRand(42)
	d := Bimodal1(100)

	// WHEN 20000 samples are drawn
	n := 20000
	large := 0
	for i := 0; i < n; i++ {
		switch v := d.Sample(rng); v {
		case 550:
			large++
		case 50:
		default:
			t.Fatalf("sample %d: got %d, want 50 or 550", i, v)
		}
	}

	// THEN about 10% are stragglers
	frac := float64(large) / float64(n)
	if math.Abs(frac-0.1) > 0.015 {
		t.Errorf("straggler fraction = %.4f, want ≈ 0.1", frac)
	}
}

func TestBimodal2_RareStragglers(t *testing.T) {
	rng := newTestRand(42)
	d := Bimodal2(100)

	n := 200000
	large := 0
	for i := 0; i < n; i++ {
		switch v := d.Sample(rng); v {
		case 50050:
			large++
		case 50:
		default:
			t.Fatalf("sample %d: got %d, want 50 or 50050", i, v)
		}
	}

	// 1-in-1000: expect ~200
	if large < 140 || large > 260 {
		t.Errorf("straggler count = %d, want ≈ 200", large)
	}
}

func TestDistribution_SampleNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		kind := rapid.SampledFrom([]DistributionKind{KindConstant, KindExponential, KindBimodal1, KindBimodal2}).Draw(t, "kind")
		mean := rapid.Float64Range(0, 1e9).Draw(t, "mean")
		rng := newTestRand(rapid.Uint64().Draw(t, "seed"))

		d, err := NewDistribution(kind, mean)
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			if v := d.Sample(rng); v < 0 {
				t.Fatalf("%v sample = %d, want >= 0", d, v)
			}
		}
	})
}

func TestParseDistributionKind(t *testing.T) {
	tests := []struct {
		name    string
		want    DistributionKind
		wantErr bool
	}{
		{"constant", KindConstant, false},
		{"exponential", KindExponential, false},
		{"bimodal1", KindBimodal1, false},
		{"bimodal2", KindBimodal2, false},
		{"Exponential", 0, true},
		{"gaussian", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDistributionKind(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "bimodal2", "error should list valid names")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.String())
		})
	}
}

func TestNewDistribution_RejectsInvalidMean(t *testing.T) {
	for _, mean := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := NewDistribution(KindExponential, mean)
		assert.Error(t, err, "mean %v", mean)
	}
	_, err := NewDistribution(DistributionKind(9), 1)
	assert.Error(t, err)
}

func TestConstructors_PanicOnNegativeMean(t *testing.T) {
	assert.Panics(t, func() { Constant(-5) })
	assert.Panics(t, func() { Bimodal2(math.Inf(-1)) })
}

func TestDistribution_NameAndMean(t *testing.T) {
	d := Bimodal1(10_000.9)
	assert.Equal(t, "bimodal1", d.Name())
	assert.Equal(t, int64(10_000), d.Mean())
	assert.Equal(t, KindBimodal1, d.Kind())
	assert.Equal(t, []string{"constant", "exponential", "bimodal1", "bimodal2"}, DistributionNames())
}
