package profile

import (
	"math"
	"time"
)

// standardIntervals are the sampling resolutions meters actually use, in
// minutes.
var standardIntervals = []int{1, 5, 10, 15, 30, 60, 120, 180, 240}

// DetectInterval infers the sampling resolution of a timestamp sequence by
// snapping every consecutive gap to the standard grid and taking the mode.
// Fewer than two points yields 0, meaning unknown; the result is metadata
// and never gates aggregation.
func DetectInterval(timestamps []time.Time) int {
	if len(timestamps) < 2 {
		return 0
	}
	counts := make(map[int]int)
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1]).Minutes()
		if gap <= 0 {
			continue
		}
		counts[snapInterval(gap)]++
	}
	best, bestCount := 0, 0
	for _, iv := range standardIntervals {
		if counts[iv] > bestCount {
			best, bestCount = iv, counts[iv]
		}
	}
	return best
}

func snapInterval(minutes float64) int {
	best := standardIntervals[0]
	bestDist := math.Abs(minutes - float64(best))
	for _, iv := range standardIntervals[1:] {
		if d := math.Abs(minutes - float64(iv)); d < bestDist {
			best, bestDist = iv, d
		}
	}
	return best
}
