package demand

import (
	"github.com/ChicagoDave/citytraffic/pkg/network"
	"github.com/ChicagoDave/citytraffic/pkg/routing"
)

// Mode distinguishes vehicle from pedestrian trips.
type Mode int

const (
	ModeVehicle Mode = iota
	ModePedestrian
)

func (m Mode) String() string {
	if m == ModePedestrian {
		return "pedestrian"
	}
	return "vehicle"
}

// Request is a routed trip awaiting its congestion penalty and id.
type Request struct {
	Mode        Mode
	Vehicle     VehicleType // zero for pedestrians
	Origin      string
	Destination string
	Path        routing.Path
}

// Stats counts what one or more generated hours produced and dropped.
type Stats struct {
	Origins       int `json:"origins"`
	Vehicles      int `json:"vehicles"`
	Pedestrians   int `json:"pedestrians"`
	Unreachable   int `json:"unreachable"`
	NoDestination int `json:"no_destination"`
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Origins += o.Origins
	s.Vehicles += o.Vehicles
	s.Pedestrians += o.Pedestrians
	s.Unreachable += o.Unreachable
	s.NoDestination += o.NoDestination
}

// Generator produces the trip requests of an hour. The candidate lists it
// derives from the network are computed once, so a Generator may be shared by
// goroutines as long as each passes its own Rand.
type Generator struct {
	net         *network.Network
	index       *routing.Index
	ids         []string
	residential []string
	// per origin
	vehicleDests map[string][]string
	walkDests    map[string][]string
}

// New prepares a Generator over the network of index.
func New(index *routing.Index) *Generator {
	net := index.Network()
	g := &Generator{
		net:          net,
		index:        index,
		ids:          net.IDs(),
		residential:  net.InZones(network.ZoneResidential),
		vehicleDests: make(map[string][]string, net.Len()),
		walkDests:    make(map[string][]string, net.Len()),
	}
	workplaces := net.InZones(network.ZoneCommercial, network.ZoneIndustrial)
	for _, id := range g.ids {
		dests := make([]string, 0, len(workplaces))
		for _, w := range workplaces {
			if w != id {
				dests = append(dests, w)
			}
		}
		g.vehicleDests[id] = dests
		g.walkDests[id] = index.Within(id, WalkingHops)
	}
	return g
}

// Origins draws the origin intersections of an hour.
func (g *Generator) Origins(rng Rand, sample int) []string {
	population := g.ids
	if rng.Float64() < ResidentialShare && len(g.residential) >= sample {
		population = g.residential
	}
	// A residential set smaller than the sample is unioned with every
	// intersection, which is the full population again.

	k := min(sample, len(population))
	pool := make([]string, len(population))
	copy(pool, population)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// Hour generates the routed requests of one hour in generation order: origin
// by origin, vehicles before pedestrians. Trips without a destination or a
// path are dropped and counted in the returned Stats.
func (g *Generator) Hour(rng Rand, day, hour, sample int) ([]Request, Stats) {
	var (
		reqs  []Request
		stats Stats
	)
	multiplier := TimeMultiplier(day, hour)

	for _, origin := range g.Origins(rng, sample) {
		stats.Origins++
		in, _ := g.net.Intersection(origin)
		zf := ZoneFactor(in.Zone)
		vehicles := Count(rng, MaxVehicles, multiplier, zf)
		pedestrians := Count(rng, MaxPedestrians, multiplier, zf)

		dests := g.vehicleDests[origin]
		for range vehicles {
			if len(dests) == 0 {
				stats.NoDestination++
				continue
			}
			dest := dests[rng.IntN(len(dests))]
			path, err := g.index.Lookup(origin, dest)
			if err != nil {
				stats.Unreachable++
				continue
			}
			reqs = append(reqs, Request{
				Mode:        ModeVehicle,
				Vehicle:     PickVehicle(rng),
				Origin:      origin,
				Destination: dest,
				Path:        path,
			})
			stats.Vehicles++
		}

		nearby := g.walkDests[origin]
		for range pedestrians {
			var dest string
			if len(nearby) > 0 {
				dest = nearby[rng.IntN(len(nearby))]
			} else {
				dest = g.ids[rng.IntN(len(g.ids))]
			}
			path, err := g.index.Lookup(origin, dest)
			if err != nil {
				stats.Unreachable++
				continue
			}
			reqs = append(reqs, Request{
				Mode:        ModePedestrian,
				Origin:      origin,
				Destination: dest,
				Path:        path,
			})
			stats.Pedestrians++
		}
	}
	return reqs, stats
}
