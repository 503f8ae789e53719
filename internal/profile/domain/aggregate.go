package profile

import "time"

// Indexes into the weekday/weekend halves of the accumulator.
const (
	classWeekday = 0
	classWeekend = 1
)

// Accumulator folds parsed points for one meter into hour-of-day buckets.
// Rows must be added in file order; the timestamp sequence feeds interval
// detection. One accumulator belongs to exactly one processing run.
type Accumulator struct {
	sums   [2][24]float64
	counts [2][24]int
	days   [2]map[string]struct{}
	stamps []time.Time
	first  time.Time
	last   time.Time
	total  float64
	count  int
}

// NewAccumulator builds an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{days: [2]map[string]struct{}{{}, {}}}
}

// Add folds one value into the profile buckets. Weekend means Saturday or
// Sunday of the parsed timestamp.
func (a *Accumulator) Add(ts time.Time, value float64) {
	class := classWeekday
	if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
		class = classWeekend
	}
	hour := ts.Hour()
	a.sums[class][hour] += value
	a.counts[class][hour]++
	a.days[class][ts.Format("2006-01-02")] = struct{}{}
	a.stamps = append(a.stamps, ts)
	if a.first.IsZero() || ts.Before(a.first) {
		a.first = ts
	}
	if ts.After(a.last) {
		a.last = ts
	}
	a.total += value
	a.count++
}

// Count returns the number of folded points.
func (a *Accumulator) Count() int { return a.count }

// Profile finalizes the buckets into a validated LoadProfile. Power units
// average the readings in each bucket; energy units divide each bucket's
// sum by the distinct days observed in that day class. The two formulas are
// deliberately distinct and must not be collapsed.
func (a *Accumulator) Profile(kind UnitKind) LoadProfile {
	p := LoadProfile{
		WeekdayDayCount: len(a.days[classWeekday]),
		WeekendDayCount: len(a.days[classWeekend]),
		RangeStart:      a.first,
		RangeEnd:        a.last,
		DataPointCount:  a.count,
		IntervalMinutes: DetectInterval(a.stamps),
	}
	for class := 0; class < 2; class++ {
		dayCount := len(a.days[class])
		for hour := 0; hour < 24; hour++ {
			n := a.counts[class][hour]
			if n == 0 {
				continue
			}
			v := a.sums[class][hour]
			if kind == KindPower {
				v /= float64(n)
			} else {
				v /= float64(dayCount)
			}
			if class == classWeekday {
				p.WeekdayProfile[hour] = v
			} else {
				p.WeekendProfile[hour] = v
			}
		}
	}
	p.TotalEnergyKWh = a.totalEnergy(kind, p.IntervalMinutes)
	p.PeakKW, p.AvgKW = a.figures(&p)
	p.Validate()
	return p
}

func (a *Accumulator) totalEnergy(kind UnitKind, intervalMinutes int) float64 {
	if kind == KindEnergy {
		return a.total
	}
	if intervalMinutes <= 0 {
		intervalMinutes = 30
	}
	return a.total * float64(intervalMinutes) / 60
}

// figures derives peak and mean over buckets that actually saw data.
func (a *Accumulator) figures(p *LoadProfile) (peak, avg float64) {
	sum := 0.0
	n := 0
	for class := 0; class < 2; class++ {
		for hour := 0; hour < 24; hour++ {
			if a.counts[class][hour] == 0 {
				continue
			}
			v := p.WeekdayProfile[hour]
			if class == classWeekend {
				v = p.WeekendProfile[hour]
			}
			if v > peak {
				peak = v
			}
			sum += v
			n++
		}
	}
	if n > 0 {
		avg = sum / float64(n)
	}
	return peak, avg
}
