// Package congestion accounts for intra-day road usage and turns it into a
// per-trip travel penalty.
package congestion

import (
	"github.com/ChicagoDave/citytraffic/pkg/network"
)

// Penalty model constants.
const (
	// HighCapacity is the capacity at or above which a road uses
	// BaseHighCapacity as its base congestion.
	HighCapacity     = 300
	BaseHighCapacity = 0.2
	BaseLowCapacity  = 0.5
	// UsageFactor is the fractional increase of base congestion per prior
	// use of the road on the same day.
	UsageFactor = 0.05
)

// Tracker holds the usage counters of one simulated day. It is not safe for
// concurrent use; parallel days each own a Tracker.
type Tracker struct {
	net   *network.Network
	usage map[network.RoadKey]int
}

// New returns a Tracker with every counter at zero.
func New(net *network.Network) *Tracker {
	return &Tracker{net: net, usage: make(map[network.RoadKey]int)}
}

// BaseCongestion returns the usage-free congestion cost of a road.
func BaseCongestion(r network.Road) float64 {
	if r.Capacity >= HighCapacity {
		return BaseHighCapacity
	}
	return BaseLowCapacity
}

// Penalty returns the congestion penalty of travelling path given the usage
// recorded so far. It does not change any counter.
func (t *Tracker) Penalty(path []string) float64 {
	var penalty float64
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		if r, ok := t.net.Road(u, v); ok {
			usage := t.usage[r.Key()]
			penalty += BaseCongestion(r)*(1+float64(usage)*UsageFactor) + r.Delay
		}
		if in, ok := t.net.Intersection(u); ok {
			penalty += in.LightDelay()
		}
	}
	return penalty
}

// Floor returns the penalty of path on an empty day, the lowest value
// Penalty can ever report for it.
func (t *Tracker) Floor(path []string) float64 {
	var floor float64
	for i := 0; i+1 < len(path); i++ {
		if r, ok := t.net.Road(path[i], path[i+1]); ok {
			floor += BaseCongestion(r) + r.Delay
		}
		if in, ok := t.net.Intersection(path[i]); ok {
			floor += in.LightDelay()
		}
	}
	return floor
}

// Record adds one use to every road on path.
func (t *Tracker) Record(path []string) {
	for i := 0; i+1 < len(path); i++ {
		t.usage[network.RoadKey{From: path[i], To: path[i+1]}]++
	}
}

// Usage returns the number of recorded uses of the road from u to v.
func (t *Tracker) Usage(u, v string) int {
	return t.usage[network.RoadKey{From: u, To: v}]
}

// Roads returns the number of roads with a non-zero counter.
func (t *Tracker) Roads() int { return len(t.usage) }

// ResetDay clears all counters.
func (t *Tracker) ResetDay() {
	clear(t.usage)
}
