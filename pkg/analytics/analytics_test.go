package analytics

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"github.com/ChicagoDave/citytraffic/pkg/gridgen"
	"github.com/ChicagoDave/citytraffic/pkg/network"
	"github.com/ChicagoDave/citytraffic/pkg/routing"
)

// smallCity: A1 (residential, light 0.2) → A2 (commercial, light 0.1) → B2
// (industrial). A2→B2 has no streetlights.
func smallCity(t *testing.T) (*network.Network, []gridgen.Streetlight) {
	t.Helper()
	n, err := network.New(
		[]network.Intersection{
			{ID: "A1", Zone: network.ZoneResidential, TrafficLight: true, TrafficLightDelay: 0.2, Pos: orb.Point{0, 0}},
			{ID: "A2", Zone: network.ZoneCommercial, TrafficLight: true, TrafficLightDelay: 0.1, Pos: orb.Point{1, 0}},
			{ID: "B2", Zone: network.ZoneIndustrial, Pos: orb.Point{1, -1}},
		},
		[]network.Road{
			{From: "A1", To: "A2", Distance: 2, Type: network.RoadMajor, Capacity: 500},
			{From: "A2", To: "B2", Distance: 1, Type: network.RoadMinor, Capacity: 200, Delay: 0.1},
		},
	)
	if err != nil {
		t.Fatalf("network.New: %v", err)
	}
	lights := []gridgen.Streetlight{
		{From: "A1", To: "A2", X: 0.3, Y: 0.03},
		{From: "A1", To: "A2", X: 0.6, Y: 0.03},
		{From: "A1", To: "A2", X: 0.9, Y: 0.03},
	}
	return n, lights
}

func TestAnalyzeSmallCity(t *testing.T) {
	net, lights := smallCity(t)
	s, report := Analyze(net, lights, routing.Build(net))

	if s.TotalIntersections != 3 || s.TotalRoads != 2 || s.TotalStreetlights != 3 {
		t.Errorf("totals = %d/%d/%d, want 3/2/3", s.TotalIntersections, s.TotalRoads, s.TotalStreetlights)
	}
	if s.IntersectionsWithTrafficLights != 2 {
		t.Errorf("intersections with lights = %d, want 2", s.IntersectionsWithTrafficLights)
	}
	if len(s.RoadsWithoutStreetlights) != 1 || s.RoadsWithoutStreetlights[0] != "A2→B2" {
		t.Errorf("roads without lights = %v, want [A2→B2]", s.RoadsWithoutStreetlights)
	}

	rs := s.RoadStats["A1→A2"]
	if rs.Streetlights != 3 || rs.LightsPerKm != 1.5 || rs.RoadType != network.RoadMajor {
		t.Errorf("A1→A2 stats = %+v", rs)
	}

	major := s.TypeStats[network.RoadMajor]
	if major == nil || major.Count != 1 || major.AvgCapacity != 500 || major.AvgLightsPerKm != 1.5 {
		t.Errorf("major stats = %+v", major)
	}
	minor := s.TypeStats[network.RoadMinor]
	if minor == nil || minor.Lights != 0 || minor.AvgLightsPerKm != 0 {
		t.Errorf("minor stats = %+v", minor)
	}

	res := s.ZoneStats[network.ZoneResidential]
	if res.Intersections != 1 || res.Roads != 1 || res.TrafficLights != 1 || res.AvgTrafficLightDelay != 0.2 {
		t.Errorf("residential stats = %+v", res)
	}
	if ind := s.ZoneStats[network.ZoneIndustrial]; ind.Roads != 0 || ind.TrafficLights != 0 {
		t.Errorf("industrial stats = %+v", ind)
	}

	// A1→A2, A1→B2, A2→B2 reachable out of 6 pairs.
	if s.Connectivity == nil || s.Connectivity.Unreachable != 3 {
		t.Errorf("connectivity = %+v, want 3 unreachable", s.Connectivity)
	}
	if s.Bounds.Min != (orb.Point{0, -1}) || s.Bounds.Max != (orb.Point{1, 0}) {
		t.Errorf("bounds = %v", s.Bounds)
	}

	// Missing streetlights and unreachable pairs are both warnings.
	if !report.Valid {
		t.Errorf("report invalid: %v", report.Errors)
	}
	if len(report.Warnings) != 2 {
		t.Errorf("got %d warnings, want 2: %v", len(report.Warnings), report.Warnings)
	}
}

func TestAnalyzeWithoutIndex(t *testing.T) {
	net, lights := smallCity(t)
	s, _ := Analyze(net, lights, nil)
	if s.Connectivity != nil {
		t.Errorf("connectivity = %+v, want nil", s.Connectivity)
	}
}

func TestAnalyzeWarnsWithoutWorkplaces(t *testing.T) {
	net, err := network.New(
		[]network.Intersection{{ID: "A1", Zone: network.ZoneResidential}, {ID: "A2", Zone: network.ZonePark}},
		[]network.Road{
			{From: "A1", To: "A2", Distance: 1, Capacity: 300},
			{From: "A2", To: "A1", Distance: 1, Capacity: 300},
		},
	)
	if err != nil {
		t.Fatalf("network.New: %v", err)
	}
	lights := []gridgen.Streetlight{{From: "A1", To: "A2"}, {From: "A2", To: "A1"}}
	_, report := Analyze(net, lights, routing.Build(net))

	if len(report.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(report.Warnings), report.Warnings)
	}
	if got := report.Warnings[0].Message; got == "" {
		t.Error("empty warning message")
	}
	if len(report.Info) == 0 {
		t.Error("expected an info entry for full reachability")
	}
}

func TestAnalyzeGeneratedCityConsistent(t *testing.T) {
	city, err := gridgen.Generate(8, 8, rand.New(rand.NewPCG(4, 4)))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s, _ := Analyze(city.Network, city.Streetlights, nil)

	if s.TotalStreetlights != len(city.Streetlights) {
		t.Errorf("total streetlights = %d, want %d", s.TotalStreetlights, len(city.Streetlights))
	}
	if len(s.RoadsWithoutStreetlights) != 0 {
		t.Errorf("generated roads without lights: %v", s.RoadsWithoutStreetlights)
	}
	sumIntersections, sumRoads := 0, 0
	for _, zs := range s.ZoneStats {
		sumIntersections += zs.Intersections
		sumRoads += zs.Roads
	}
	if sumIntersections != 64 || sumRoads != s.TotalRoads {
		t.Errorf("zone sums = %d intersections, %d roads", sumIntersections, sumRoads)
	}
}

func TestSave(t *testing.T) {
	net, lights := smallCity(t)
	s, _ := Analyze(net, lights, nil)
	path := filepath.Join(t.TempDir(), "city_analysis.json")
	if err := Save(s, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["total_roads"] != float64(2) {
		t.Errorf("total_roads = %v, want 2", decoded["total_roads"])
	}
	if _, ok := decoded["road_stats"].(map[string]any)["A1→A2"]; !ok {
		t.Error("road_stats missing A1→A2")
	}
}
