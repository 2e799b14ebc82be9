// Package network holds the read-only road network consumed by the simulation:
// intersections with zone and traffic-light attributes, and directed roads with
// distance, capacity and delay.
package network

import (
	"fmt"
	"math"
)

// Network is an immutable directed road graph. Intersections keep the order
// in which they were supplied, which makes every iteration deterministic.
type Network struct {
	intersections []Intersection
	index         map[string]int
	roads         []Road
	roadIndex     map[RoadKey]int
	outgoing      map[string][]Road
}

// New builds a Network, returning an error if an intersection is duplicated or
// has a negative or non-finite light delay, a road references an unknown
// intersection, or a road has a non-positive or non-finite routing weight.
func New(intersections []Intersection, roads []Road) (*Network, error) {
	n := &Network{
		intersections: make([]Intersection, 0, len(intersections)),
		index:         make(map[string]int, len(intersections)),
		roads:         make([]Road, 0, len(roads)),
		roadIndex:     make(map[RoadKey]int, len(roads)),
		outgoing:      make(map[string][]Road, len(intersections)),
	}
	for _, in := range intersections {
		if _, exists := n.index[in.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateIntersection, in.ID)
		}
		if !finite(in.TrafficLightDelay) || in.TrafficLightDelay < 0 {
			return nil, fmt.Errorf("%w %q: traffic_light_delay must be >= 0 (got %v)", ErrInvalidIntersection, in.ID, in.TrafficLightDelay)
		}
		n.index[in.ID] = len(n.intersections)
		n.intersections = append(n.intersections, in)
	}
	for _, r := range roads {
		if _, ok := n.index[r.From]; !ok {
			return nil, fmt.Errorf("road %s→%s: source: %w %q", r.From, r.To, ErrUnknownIntersection, r.From)
		}
		if _, ok := n.index[r.To]; !ok {
			return nil, fmt.Errorf("road %s→%s: target: %w %q", r.From, r.To, ErrUnknownIntersection, r.To)
		}
		if !finite(r.Distance) || r.Distance <= 0 {
			return nil, fmt.Errorf("%w %s→%s: distance must be > 0 (got %v)", ErrInvalidRoad, r.From, r.To, r.Distance)
		}
		if !finite(r.Delay) || r.Delay < 0 || r.Capacity <= 0 {
			return nil, fmt.Errorf("%w %s→%s: capacity must be > 0 and delay >= 0 (got %d, %v)", ErrInvalidRoad, r.From, r.To, r.Capacity, r.Delay)
		}
		// A later duplicate replaces the earlier road, as a simple digraph would.
		if i, exists := n.roadIndex[r.Key()]; exists {
			n.roads[i] = r
			continue
		}
		n.roadIndex[r.Key()] = len(n.roads)
		n.roads = append(n.roads, r)
	}
	for _, r := range n.roads {
		n.outgoing[r.From] = append(n.outgoing[r.From], r)
	}
	return n, nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// Len returns the number of intersections.
func (n *Network) Len() int { return len(n.intersections) }

// Intersections returns all intersections in supply order.
func (n *Network) Intersections() []Intersection { return n.intersections }

// Roads returns all roads in supply order.
func (n *Network) Roads() []Road { return n.roads }

// IDs returns the intersection ids in supply order.
func (n *Network) IDs() []string {
	ids := make([]string, len(n.intersections))
	for i, in := range n.intersections {
		ids[i] = in.ID
	}
	return ids
}

// Intersection looks up an intersection by id.
func (n *Network) Intersection(id string) (Intersection, bool) {
	i, ok := n.index[id]
	if !ok {
		return Intersection{}, false
	}
	return n.intersections[i], true
}

// Road returns the directed road from u to v.
func (n *Network) Road(u, v string) (Road, bool) {
	i, ok := n.roadIndex[RoadKey{From: u, To: v}]
	if !ok {
		return Road{}, false
	}
	return n.roads[i], true
}

// Outgoing returns the roads leaving id.
func (n *Network) Outgoing(id string) []Road { return n.outgoing[id] }

// InZones returns the ids of intersections whose zone is one of zones, in
// supply order.
func (n *Network) InZones(zones ...Zone) []string {
	var ids []string
	for _, in := range n.intersections {
		for _, z := range zones {
			if in.Zone == z {
				ids = append(ids, in.ID)
				break
			}
		}
	}
	return ids
}
