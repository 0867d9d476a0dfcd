package benchmark

import (
	"fmt"
	"sort"
)

type Comparison struct {
	DatasetSize   int
	MeanDiff      float64 // Percentage change
	AllocDiff     float64 // Percentage change
	PeakAllocDiff float64 // Percentage change
	Prev          Row
	Curr          Row
}

// Compare matches the rows of two runs by dataset size. Only sizes present in
// both runs are compared; the result is ordered by dataset size. A diff is
// left at zero when the previous value is zero or the measurement is missing
// from either run.
func Compare(prev, curr Run) []Comparison {
	prevRows := make(map[int]Row)
	for _, r := range prev.Rows {
		prevRows[r.DatasetSize] = r
	}

	var comparisons []Comparison
	for _, c := range curr.Rows {
		p, ok := prevRows[c.DatasetSize]
		if !ok {
			continue
		}
		comp := Comparison{
			DatasetSize: c.DatasetSize,
			Prev:        p,
			Curr:        c,
		}

		if p.Timing != nil && c.Timing != nil && p.Timing.Stats.Mean > 0 {
			comp.MeanDiff = (c.Timing.Stats.Mean - p.Timing.Stats.Mean) / p.Timing.Stats.Mean * 100
		}
		if p.Memory != nil && c.Memory != nil {
			if p.Memory.AllocBytes > 0 {
				comp.AllocDiff = float64(c.Memory.AllocBytes-p.Memory.AllocBytes) / float64(p.Memory.AllocBytes) * 100
			}
			if p.Memory.PeakAllocBytes > 0 {
				comp.PeakAllocDiff = float64(c.Memory.PeakAllocBytes-p.Memory.PeakAllocBytes) / float64(p.Memory.PeakAllocBytes) * 100
			}
		}

		comparisons = append(comparisons, comp)
	}

	sort.Slice(comparisons, func(i, j int) bool {
		return comparisons[i].DatasetSize < comparisons[j].DatasetSize
	})
	return comparisons
}

func (c Comparison) String() string {
	return fmt.Sprintf("%d: %+.2f%% mean, %+.2f%% mem_alloc", c.DatasetSize, c.MeanDiff, c.AllocDiff)
}
