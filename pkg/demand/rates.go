// Package demand decides, hour by hour, which intersections originate trips,
// how many, where they go and which vehicle makes them.
package demand

import (
	"fmt"

	"github.com/ChicagoDave/citytraffic/pkg/network"
)

// Trip volume limits and sampling parameters.
const (
	MaxVehicles    = 10
	MaxPedestrians = 6
	// ResidentialShare is the probability that an hour samples its origins
	// from residential intersections.
	ResidentialShare = 0.8
	// WalkingHops is the longest walk, in roads, a pedestrian prefers: a
	// path of at most four intersections.
	WalkingHops = 3
)

// Rand is the random source consumed by the generator. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// IsWeekend reports whether day (1-based) falls on a weekend.
func IsWeekend(day int) bool {
	switch day % 7 {
	case 6, 0:
		return true
	}
	return false
}

// TimeMultiplier scales trip volume by time of day and weekday.
func TimeMultiplier(day, hour int) float64 {
	if IsWeekend(day) {
		if hour >= 14 && hour <= 18 {
			return 1.5
		}
		return 0.6
	}
	switch {
	case hour >= 7 && hour <= 9:
		return 2.0
	case hour >= 17 && hour <= 20:
		return 2.5
	case hour >= 12 && hour <= 14:
		return 0.7
	case hour >= 0 && hour <= 5:
		return 0.3
	}
	return 0.5
}

// ZoneFactor scales trip volume by the zone of the origin.
func ZoneFactor(z network.Zone) float64 {
	switch z {
	case network.ZoneCommercial:
		return 1.2
	case network.ZoneIndustrial:
		return 0.8
	case network.ZonePark:
		return 0.5
	}
	return 1.0
}

// Count draws a trip count in [0, max] and scales it, truncating toward zero.
func Count(rng Rand, max int, multiplier, zoneFactor float64) int {
	scaled := int(float64(rng.IntN(max+1)) * multiplier * zoneFactor)
	if scaled < 0 {
		return 0
	}
	return scaled
}

// VehicleType is a vehicle category with its sampling weight.
type VehicleType struct {
	Wheels int
	Weight int
}

// Name returns the category label, e.g. "4-wheeler".
func (v VehicleType) Name() string { return fmt.Sprintf("%d-wheeler", v.Wheels) }

// VehicleTypes is the static category table in sampling order. Weights sum to
// vehicleWeightTotal.
var VehicleTypes = []VehicleType{
	{Wheels: 4, Weight: 70},
	{Wheels: 2, Weight: 15},
	{Wheels: 6, Weight: 5},
	{Wheels: 3, Weight: 5},
	{Wheels: 8, Weight: 3},
	{Wheels: 10, Weight: 2},
}

var vehicleCumulative, vehicleWeightTotal = cumulative(VehicleTypes)

func cumulative(types []VehicleType) ([]int, int) {
	acc := make([]int, len(types))
	total := 0
	for i, v := range types {
		total += v.Weight
		acc[i] = total
	}
	return acc, total
}

// PickVehicle draws one category with a single draw over the cumulative
// weights.
func PickVehicle(rng Rand) VehicleType {
	r := rng.IntN(vehicleWeightTotal)
	for i, c := range vehicleCumulative {
		if r < c {
			return VehicleTypes[i]
		}
	}
	return VehicleTypes[len(VehicleTypes)-1]
}
