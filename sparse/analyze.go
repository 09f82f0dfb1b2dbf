package sparse

import "math"

// Format names one of the three wire layouts.
type Format string

const (
	FormatCOO    Format = "coo"
	FormatRLE    Format = "rle"
	FormatPacked Format = "packed"
)

// Stats summarises the sparsity structure of a dense vector.
type Stats struct {
	Dimension    int
	NonZeroCount int
	Sparsity     float64
	L2Norm       float64
	MinValue     float64
	MaxValue     float64
	UniqueValues int

	AvgIndexDelta   float64
	MaxIndexDelta   float64
	ClusteringRatio float64
}

// Analyze computes sparsity metrics for encoding selection. Entries with
// magnitude at or below threshold count as zero.
func Analyze(v []float64, threshold float64) Stats {
	st := Stats{Dimension: len(v)}
	var indices []int
	unique := map[float64]struct{}{}
	var sumSq float64
	first := true
	for i, x := range v {
		sumSq += x * x
		if math.Abs(x) <= threshold {
			continue
		}
		indices = append(indices, i)
		unique[x] = struct{}{}
		if first || x < st.MinValue {
			st.MinValue = x
		}
		if first || x > st.MaxValue {
			st.MaxValue = x
		}
		first = false
	}
	st.NonZeroCount = len(indices)
	st.UniqueValues = len(unique)
	st.L2Norm = math.Sqrt(sumSq)
	if len(v) > 0 {
		st.Sparsity = 1 - float64(st.NonZeroCount)/float64(len(v))
	}
	if len(indices) > 1 {
		var sum float64
		for i := 1; i < len(indices); i++ {
			d := float64(indices[i] - indices[i-1])
			sum += d
			if d > st.MaxIndexDelta {
				st.MaxIndexDelta = d
			}
		}
		st.AvgIndexDelta = sum / float64(len(indices)-1)
		st.ClusteringRatio = st.AvgIndexDelta / float64(len(v))
	}
	return st
}

// Recommend picks the layout expected to be smallest for v: packed for
// very sparse vectors over a small alphabet, RLE for clustered non-zeros,
// COO otherwise.
func Recommend(v []float64) Format {
	st := Analyze(v, DefaultThreshold)
	if st.Sparsity > 0.95 && st.UniqueValues <= 16 {
		return FormatPacked
	}
	if st.ClusteringRatio < 0.1 && st.NonZeroCount > 10 {
		return FormatRLE
	}
	return FormatCOO
}
