package sparse

import (
	"math"
	"testing"
)

func TestAnalyze(t *testing.T) {
	v := make([]float64, 100)
	v[10] = 3
	v[11] = -4
	v[90] = 1

	st := Analyze(v, DefaultThreshold)
	if st.Dimension != 100 {
		t.Fatalf("dimension = %d", st.Dimension)
	}
	if st.NonZeroCount != 3 {
		t.Fatalf("non-zeros = %d, want 3", st.NonZeroCount)
	}
	if got := st.Sparsity; math.Abs(got-0.97) > 1e-12 {
		t.Fatalf("sparsity = %v, want 0.97", got)
	}
	if got := st.L2Norm; math.Abs(got-math.Sqrt(26)) > 1e-12 {
		t.Fatalf("L2 = %v, want sqrt(26)", got)
	}
	if st.MinValue != -4 || st.MaxValue != 3 {
		t.Fatalf("min/max = %v/%v", st.MinValue, st.MaxValue)
	}
	if st.UniqueValues != 3 {
		t.Fatalf("unique = %d", st.UniqueValues)
	}
	// Deltas 1 and 79: average 40.
	if got := st.AvgIndexDelta; math.Abs(got-40) > 1e-12 {
		t.Fatalf("avg delta = %v, want 40", got)
	}
	if st.MaxIndexDelta != 79 {
		t.Fatalf("max delta = %v, want 79", st.MaxIndexDelta)
	}
}

func TestAnalyzeThreshold(t *testing.T) {
	v := []float64{0.5, 2, -0.1, 3}
	st := Analyze(v, 1.0)
	if st.NonZeroCount != 2 {
		t.Fatalf("non-zeros above threshold 1.0 = %d, want 2", st.NonZeroCount)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	st := Analyze(nil, DefaultThreshold)
	if st.Dimension != 0 || st.NonZeroCount != 0 || st.Sparsity != 0 {
		t.Fatalf("empty stats = %+v", st)
	}
}

func TestRecommend(t *testing.T) {
	// Very sparse, tiny alphabet: packed.
	sparse := make([]float64, 1000)
	sparse[3] = 1
	sparse[500] = 2
	if got := Recommend(sparse); got != FormatPacked {
		t.Fatalf("sparse vector: %s, want %s", got, FormatPacked)
	}

	// Clustered run of many distinct values: RLE.
	clustered := make([]float64, 1000)
	for i := 0; i < 40; i++ {
		clustered[i] = float64(i + 1)
	}
	if got := Recommend(clustered); got != FormatRLE {
		t.Fatalf("clustered vector: %s, want %s", got, FormatRLE)
	}

	// Moderately dense with few entries: COO.
	dense := make([]float64, 100)
	for i := 0; i < 8; i++ {
		dense[i*12] = float64(i + 1)
	}
	if got := Recommend(dense); got != FormatCOO {
		t.Fatalf("dense vector: %s, want %s", got, FormatCOO)
	}
}
