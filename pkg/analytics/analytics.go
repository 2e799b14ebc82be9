// Package analytics summarizes a city network: road and zone breakdowns,
// streetlight coverage and reachability, with checks on whether the network
// can carry the simulated demand.
package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"

	"github.com/ChicagoDave/citytraffic/pkg/gridgen"
	"github.com/ChicagoDave/citytraffic/pkg/network"
	"github.com/ChicagoDave/citytraffic/pkg/routing"
	"github.com/ChicagoDave/citytraffic/pkg/validation"
)

// RoadLabel renders a road key as "from→to".
func RoadLabel(from, to string) string { return from + routing.PathSeparator + to }

// Analyze computes the network summary. idx may be nil, in which case
// reachability is not reported. It returns the summary and a report of
// analytical findings.
func Analyze(net *network.Network, lights []gridgen.Streetlight, idx *routing.Index) (*Summary, *validation.Report) {
	report := validation.NewReport()

	s := &Summary{
		TotalIntersections: net.Len(),
		TotalRoads:         len(net.Roads()),
		RoadStats:          make(map[string]RoadStats, len(net.Roads())),
		TypeStats:          make(map[network.RoadType]*TypeStats),
		ZoneStats:          make(map[network.Zone]*ZoneStats),
	}

	// 1. Intersections by zone
	points := make(orb.MultiPoint, 0, net.Len())
	for _, in := range net.Intersections() {
		zs := zoneStats(s, in.Zone)
		zs.Intersections++
		if in.TrafficLight {
			s.IntersectionsWithTrafficLights++
			zs.TrafficLights++
			zs.AvgTrafficLightDelay += in.TrafficLightDelay
		}
		points = append(points, in.Pos)
	}
	if len(points) > 0 {
		s.Bounds = points.Bound()
	}

	// 2. Streetlights per road
	perRoad := make(map[network.RoadKey]int)
	for _, l := range lights {
		perRoad[network.RoadKey{From: l.From, To: l.To}]++
	}
	for _, n := range perRoad {
		s.TotalStreetlights += n
	}

	// 3. Roads
	for _, r := range net.Roads() {
		n := perRoad[r.Key()]
		label := RoadLabel(r.From, r.To)
		rs := RoadStats{
			LengthKm:     r.Distance,
			RoadType:     r.Type,
			Streetlights: n,
			Capacity:     r.Capacity,
			Delay:        r.Delay,
		}
		if r.Distance > 0 {
			rs.LightsPerKm = round2(float64(n) / r.Distance)
		}
		s.RoadStats[label] = rs

		ts, ok := s.TypeStats[r.Type]
		if !ok {
			ts = &TypeStats{}
			s.TypeStats[r.Type] = ts
		}
		ts.Count++
		ts.Lights += n
		ts.LengthKm += r.Distance
		ts.Capacity += r.Capacity

		from, _ := net.Intersection(r.From)
		zoneStats(s, from.Zone).Roads++

		if n == 0 {
			s.RoadsWithoutStreetlights = append(s.RoadsWithoutStreetlights, label)
		}
	}

	// 4. Averages
	for _, ts := range s.TypeStats {
		if ts.LengthKm > 0 {
			ts.AvgLightsPerKm = round2(float64(ts.Lights) / ts.LengthKm)
		}
		if ts.Count > 0 {
			ts.AvgCapacity = round2(float64(ts.Capacity) / float64(ts.Count))
		}
	}
	for _, zs := range s.ZoneStats {
		if zs.TrafficLights > 0 {
			zs.AvgTrafficLightDelay = round2(zs.AvgTrafficLightDelay / float64(zs.TrafficLights))
		}
	}

	// 5. Reachability
	if idx != nil {
		c := idx.Connectivity()
		s.Connectivity = &c
	}

	validateAnalytical(net, s, report)
	return s, report
}

func zoneStats(s *Summary, z network.Zone) *ZoneStats {
	zs, ok := s.ZoneStats[z]
	if !ok {
		zs = &ZoneStats{}
		s.ZoneStats[z] = zs
	}
	return zs
}

// Save writes the summary as indented JSON.
func Save(s *Summary, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding analysis: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing analysis: %w", err)
	}
	return nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
