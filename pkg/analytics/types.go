package analytics

import (
	"github.com/paulmach/orb"

	"github.com/ChicagoDave/citytraffic/pkg/network"
	"github.com/ChicagoDave/citytraffic/pkg/routing"
)

// Summary is the aggregate description of a city network.
type Summary struct {
	TotalIntersections             int                             `json:"total_intersections"`
	TotalRoads                     int                             `json:"total_roads"`
	TotalStreetlights              int                             `json:"total_streetlights"`
	IntersectionsWithTrafficLights int                             `json:"intersections_with_traffic_lights"`
	RoadsWithoutStreetlights       []string                        `json:"roads_without_streetlights"`
	RoadStats                      map[string]RoadStats            `json:"road_stats"`
	TypeStats                      map[network.RoadType]*TypeStats `json:"type_stats"`
	ZoneStats                      map[network.Zone]*ZoneStats     `json:"zone_stats"`
	Connectivity                   *routing.Connectivity           `json:"connectivity,omitempty"`
	Bounds                         orb.Bound                       `json:"bounds"`
}

// RoadStats describes one road, keyed in Summary by "from→to".
type RoadStats struct {
	LengthKm     float64          `json:"length_km"`
	RoadType     network.RoadType `json:"road_type"`
	Streetlights int              `json:"streetlights"`
	LightsPerKm  float64          `json:"lights_per_km"`
	Capacity     int              `json:"capacity"`
	Delay        float64          `json:"delay"`
}

// TypeStats aggregates the roads of one type.
type TypeStats struct {
	Count          int     `json:"count"`
	Lights         int     `json:"lights"`
	LengthKm       float64 `json:"length"`
	Capacity       int     `json:"capacity"`
	AvgLightsPerKm float64 `json:"avg_lights_per_km"`
	AvgCapacity    float64 `json:"avg_capacity"`
}

// ZoneStats aggregates the intersections of one zone and the roads leaving
// them.
type ZoneStats struct {
	Intersections        int     `json:"intersections"`
	Roads                int     `json:"roads"`
	TrafficLights        int     `json:"traffic_lights"`
	AvgTrafficLightDelay float64 `json:"avg_traffic_light_delay"`
}
