package network

import (
	"errors"

	"github.com/paulmach/orb"
)

// Zone is the land-use label of an intersection.
type Zone string

const (
	ZoneResidential Zone = "residential"
	ZoneCommercial  Zone = "commercial"
	ZoneIndustrial  Zone = "industrial"
	ZonePark        Zone = "park"
)

// Zones lists every zone in reporting order.
var Zones = []Zone{ZoneResidential, ZoneCommercial, ZoneIndustrial, ZonePark}

// Valid reports whether z is one of the known zones.
func (z Zone) Valid() bool {
	switch z {
	case ZoneResidential, ZoneCommercial, ZoneIndustrial, ZonePark:
		return true
	}
	return false
}

// RoadType classifies a road.
type RoadType string

const (
	RoadMajor RoadType = "major"
	RoadMinor RoadType = "minor"
)

// Attribute defaults applied when the graph provider omits them.
const (
	DefaultCapacity = 300
	DefaultDelay    = 0.0
)

var (
	ErrUnknownIntersection   = errors.New("unknown intersection")
	ErrDuplicateIntersection = errors.New("duplicate intersection")
	ErrInvalidRoad           = errors.New("invalid road")
	ErrInvalidIntersection   = errors.New("invalid intersection")
)

// Intersection is a node of the road network.
type Intersection struct {
	ID                string    `json:"id" yaml:"id"`
	Zone              Zone      `json:"zone" yaml:"zone"`
	TrafficLight      bool      `json:"traffic_light" yaml:"traffic_light"`
	TrafficLightDelay float64   `json:"traffic_light_delay" yaml:"traffic_light_delay"`
	Pos               orb.Point `json:"pos" yaml:"pos"`
}

// LightDelay returns the delay added when a trip passes through the
// intersection, or 0 when it has no traffic light.
func (i Intersection) LightDelay() float64 {
	if !i.TrafficLight {
		return 0
	}
	return i.TrafficLightDelay
}

// Road is a directed edge between two intersections.
type Road struct {
	From     string   `json:"source" yaml:"source"`
	To       string   `json:"target" yaml:"target"`
	Distance float64  `json:"distance" yaml:"distance"` // km
	Type     RoadType `json:"road_type" yaml:"road_type"`
	Capacity int      `json:"capacity" yaml:"capacity"`
	Delay    float64  `json:"delay" yaml:"delay"`
}

// Weight is the static routing cost of the road.
func (r Road) Weight() float64 {
	return r.Distance + r.Delay
}

// Key returns the ordered pair identifying the road.
func (r Road) Key() RoadKey {
	return RoadKey{From: r.From, To: r.To}
}

// RoadKey identifies a road by its endpoints.
type RoadKey struct {
	From string
	To   string
}
