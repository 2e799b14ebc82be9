// Package gridgen generates synthetic grid cities: zoned intersections with
// traffic lights, one-way east and south roads, and streetlights along them.
package gridgen

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/paulmach/orb"

	"github.com/ChicagoDave/citytraffic/pkg/network"
)

// MaxRows is the number of row letters available for intersection names.
const MaxRows = 26

// Generation probabilities.
var (
	zoneWeights = []struct {
		zone   network.Zone
		weight float64
	}{
		{network.ZoneResidential, 0.5},
		{network.ZoneCommercial, 0.25},
		{network.ZoneIndustrial, 0.15},
		{network.ZonePark, 0.1},
	}
	lightChance = map[network.Zone]float64{
		network.ZoneResidential: 0.3,
		network.ZoneCommercial:  0.6,
		network.ZoneIndustrial:  0.2,
		network.ZonePark:        0.1,
	}
)

const (
	majorRoadChance = 0.3
	roadDelayChance = 0.3
	roadDelay       = 0.1
)

// Name returns the id of the intersection at row r and column c (both
// 0-based), e.g. "A1".
func Name(r, c int) string {
	return fmt.Sprintf("%c%d", 'A'+r, c+1)
}

// Position places the intersection at row r and column c on the drawing
// plane: columns grow to the right, rows grow downward.
func Position(r, c int) orb.Point {
	return orb.Point{float64(c), -float64(r)}
}

// City is a generated network with its streetlight layout.
type City struct {
	Network      *network.Network
	Streetlights []Streetlight
}

// Generate builds a rows×cols grid city from rng.
func Generate(rows, cols int, rng *rand.Rand) (*City, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("gridgen: grid must be at least 1x1, got %dx%d", rows, cols)
	}
	if rows > MaxRows {
		return nil, fmt.Errorf("gridgen: at most %d rows, got %d", MaxRows, rows)
	}

	nodes := make([]network.Intersection, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			zone := assignZone(r, c, rows, cols, rng)
			in := network.Intersection{ID: Name(r, c), Zone: zone, Pos: Position(r, c)}
			if rng.Float64() < lightChance[zone] {
				in.TrafficLight = true
				in.TrafficLightDelay = round2(uniform(rng, 0.05, 0.3))
			}
			nodes = append(nodes, in)
		}
	}

	var roads []network.Road
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				roads = append(roads, newRoad(Name(r, c), Name(r, c+1), rng))
			}
			if r+1 < rows {
				roads = append(roads, newRoad(Name(r, c), Name(r+1, c), rng))
			}
		}
	}

	net, err := network.New(nodes, roads)
	if err != nil {
		return nil, fmt.Errorf("gridgen: %w", err)
	}
	return &City{Network: net, Streetlights: PlaceStreetlights(net)}, nil
}

func assignZone(r, c, rows, cols int, rng *rand.Rand) network.Zone {
	switch {
	case float64(r) < float64(rows)*0.2:
		return network.ZoneResidential
	case float64(r) > float64(rows)*0.8:
		return network.ZoneIndustrial
	case float64(c) > float64(cols)*0.7:
		return network.ZoneCommercial
	}
	x := rng.Float64()
	for _, zw := range zoneWeights {
		if x < zw.weight {
			return zw.zone
		}
		x -= zw.weight
	}
	return zoneWeights[len(zoneWeights)-1].zone
}

func newRoad(from, to string, rng *rand.Rand) network.Road {
	r := network.Road{From: from, To: to}
	if rng.Float64() < majorRoadChance {
		r.Type = network.RoadMajor
		r.Distance = round2(uniform(rng, 2.0, 5.0))
		r.Capacity = 300 + rng.IntN(501)
	} else {
		r.Type = network.RoadMinor
		r.Distance = round2(uniform(rng, 0.5, 2.0))
		r.Capacity = 100 + rng.IntN(201)
	}
	if rng.Float64() < roadDelayChance {
		r.Delay = roadDelay
	}
	return r
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
