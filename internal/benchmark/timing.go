package benchmark

import (
	"fmt"
	"math"
	"time"

	moremath "github.com/aclements/go-moremath/stats"
	"github.com/montanaflynn/stats"
)

// TimingEngine runs an operation a fixed number of times and summarises the
// elapsed wall-clock time of each call.
type TimingEngine struct {
	Iterations int
}

// NewTimingEngine creates a TimingEngine performing n repetitions.
func NewTimingEngine(n int) *TimingEngine {
	return &TimingEngine{Iterations: n}
}

// Measure calls op Iterations times, timing each call on its own. The first
// failing call aborts the pass and its error is returned unchanged.
func (e *TimingEngine) Measure(op Operation) (*TimingRecord, error) {
	if e.Iterations < 1 {
		return nil, fmt.Errorf("timing requires at least one repetition, got %d", e.Iterations)
	}

	samples := make([]float64, 0, e.Iterations)
	for i := 0; i < e.Iterations; i++ {
		start := time.Now()
		_, err := op()
		elapsed := time.Since(start)
		if err != nil {
			return nil, err
		}
		samples = append(samples, elapsed.Seconds())
	}

	return Summarize(samples)
}

// Summarize computes the descriptive statistics of a sample set of elapsed
// seconds and formats each with the time ladder.
func Summarize(samples []float64) (*TimingRecord, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot summarize an empty sample set")
	}

	var s TimingStats
	var err error
	if s.Min, err = stats.Min(samples); err != nil {
		return nil, fmt.Errorf("failed to compute min: %w", err)
	}
	if s.Max, err = stats.Max(samples); err != nil {
		return nil, fmt.Errorf("failed to compute max: %w", err)
	}
	if s.Mean, err = stats.Mean(samples); err != nil {
		return nil, fmt.Errorf("failed to compute mean: %w", err)
	}
	if s.Median, err = stats.Median(samples); err != nil {
		return nil, fmt.Errorf("failed to compute median: %w", err)
	}
	if s.SD, err = stats.StandardDeviationPopulation(samples); err != nil {
		return nil, fmt.Errorf("failed to compute standard deviation: %w", err)
	}
	s.CI95 = ConfidenceInterval(s.SD, len(samples))

	rec := NewTimingRecord(s)
	rec.Samples = samples
	return rec, nil
}

// NewTimingRecord formats raw statistics into a record.
func NewTimingRecord(s TimingStats) *TimingRecord {
	return &TimingRecord{
		Min:    FormatSeconds(s.Min),
		Median: FormatSeconds(s.Median),
		Mean:   FormatSeconds(s.Mean),
		Max:    FormatSeconds(s.Max),
		SD:     FormatSeconds(s.SD),
		CI95:   FormatSeconds(s.CI95),
		Stats:  s,
	}
}

// ConfidenceInterval returns the half-width of the two-sided 95% confidence
// interval of the mean, t(0.975, n-1) * sd / sqrt(n). It is 0 for n <= 1.
func ConfidenceInterval(sd float64, n int) float64 {
	if n <= 1 {
		return 0
	}
	return StudentTQuantile(0.975, n-1) * sd / math.Sqrt(float64(n))
}

// StudentTQuantile returns the p-quantile of Student's t-distribution with
// dof degrees of freedom.
func StudentTQuantile(p float64, dof int) float64 {
	return moremath.InvCDF(moremath.TDist{V: float64(dof)})(p)
}
