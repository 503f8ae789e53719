package profile

import "math"

// NegativePolicy controls what happens to negative interval values.
type NegativePolicy string

const (
	NegativeFilter   NegativePolicy = "filter"
	NegativeAbsolute NegativePolicy = "absolute"
	NegativeKeep     NegativePolicy = "keep"
)

// Reconstructor turns raw readings into interval consumption values. For
// cumulative meters it differences consecutive readings per meter; the
// previous-value state lives here for exactly one run and is never shared
// across runs or files.
type Reconstructor struct {
	cumulative bool
	policy     NegativePolicy
	previous   map[string]float64
}

// NewReconstructor builds a reconstructor for one processing run.
func NewReconstructor(cumulative bool, policy NegativePolicy) *Reconstructor {
	if policy == "" {
		policy = NegativeFilter
	}
	return &Reconstructor{
		cumulative: cumulative,
		policy:     policy,
		previous:   make(map[string]float64),
	}
}

// Apply reconstructs one reading. negative reports whether the interval
// value was negative before the policy ran; keep=false means the row must
// be dropped. The first cumulative reading of a meter only seeds state.
//
// A cumulative reading smaller than its predecessor is treated as a
// rollover or reset and the post-rollover reading becomes the interval
// delta itself. The meter's rollover modulus is unknown, so this is an
// approximation, preserved as-is.
func (r *Reconstructor) Apply(meterID string, value float64) (out float64, negative, keep bool) {
	v := value
	if r.cumulative {
		prev, seen := r.previous[meterID]
		r.previous[meterID] = value
		if !seen {
			return 0, false, false
		}
		if value >= prev {
			v = value - prev
		} else {
			v = value
		}
	}
	negative = v < 0
	switch r.policy {
	case NegativeAbsolute:
		v = math.Abs(v)
	case NegativeKeep:
	default: // filter
		if negative {
			return 0, true, false
		}
	}
	return v, negative, true
}
