package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ChicagoDave/citytraffic/internal/project"
	"github.com/ChicagoDave/citytraffic/pkg/analytics"
	"github.com/ChicagoDave/citytraffic/pkg/network"
	"github.com/ChicagoDave/citytraffic/pkg/simulation"
	"github.com/ChicagoDave/citytraffic/pkg/tripsink"
	"github.com/ChicagoDave/citytraffic/pkg/validation"
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Level, e.Message)
			if e.SpecPath != "" {
				fmt.Printf("    -> %s = %v\n", e.SpecPath, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
			if e.ConflictWith != "" {
				fmt.Printf("    conflicts with: %s\n", e.ConflictWith)
			}
			for _, s := range e.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Level, w.Message)
			if w.SpecPath != "" {
				fmt.Printf("    -> %s\n", w.SpecPath)
			}
			if w.ConflictWith != "" {
				fmt.Printf("    conflicts with: %s\n", w.ConflictWith)
			}
			for _, s := range w.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printAnalysis(s *analytics.Summary) {
	fmt.Println("City Grid Analysis")
	fmt.Println("==================")
	fmt.Printf("  Intersections:                 %d\n", s.TotalIntersections)
	fmt.Printf("  Intersections w/ traffic light: %d\n", s.IntersectionsWithTrafficLights)
	fmt.Printf("  Roads:                         %d\n", s.TotalRoads)
	fmt.Printf("  Streetlights:                  %d\n", s.TotalStreetlights)
	fmt.Printf("  Roads without streetlights:    %d\n", len(s.RoadsWithoutStreetlights))
	for _, r := range s.RoadsWithoutStreetlights {
		fmt.Printf("    x %s\n", r)
	}
	if c := s.Connectivity; c != nil {
		fmt.Printf("  Unreachable pairs:             %d of %d\n", c.Unreachable, c.Pairs)
	}

	fmt.Println()
	fmt.Printf("%-10s %8s %8s %12s %14s\n", "Road type", "Count", "Lights", "Lights/km", "Avg capacity")
	fmt.Printf("%-10s %8s %8s %12s %14s\n", "----------", "--------", "--------", "------------", "--------------")
	for _, rt := range []network.RoadType{network.RoadMajor, network.RoadMinor} {
		ts, ok := s.TypeStats[rt]
		if !ok {
			continue
		}
		fmt.Printf("%-10s %8d %8d %12.2f %14.2f\n", rt, ts.Count, ts.Lights, ts.AvgLightsPerKm, ts.AvgCapacity)
	}

	fmt.Println()
	fmt.Printf("%-12s %14s %8s %15s %16s\n", "Zone", "Intersections", "Roads", "Traffic lights", "Avg light delay")
	fmt.Printf("%-12s %14s %8s %15s %16s\n", "------------", "--------------", "--------", "---------------", "----------------")
	for _, z := range zonesOf(s) {
		zs := s.ZoneStats[z]
		fmt.Printf("%-12s %14d %8d %15d %16.2f\n", z, zs.Intersections, zs.Roads, zs.TrafficLights, zs.AvgTrafficLightDelay)
	}
}

// zonesOf lists the zones present in s, known zones first.
func zonesOf(s *analytics.Summary) []network.Zone {
	var out []network.Zone
	for _, z := range network.Zones {
		if _, ok := s.ZoneStats[z]; ok {
			out = append(out, z)
		}
	}
	var extra []string
	for z := range s.ZoneStats {
		if !z.Valid() {
			extra = append(extra, string(z))
		}
	}
	sort.Strings(extra)
	for _, z := range extra {
		out = append(out, network.Zone(z))
	}
	return out
}

func printRunSummary(p *project.Project, res *simulation.Result) {
	cfg := p.SimulationConfig()
	fmt.Println()
	fmt.Println("Simulation Summary")
	fmt.Println("==================")
	fmt.Printf("  Seed:              %d\n", res.Seed)
	fmt.Printf("  Days x hours:      %d x %d\n", cfg.Days, cfg.HoursPerDay)
	fmt.Printf("  Vehicle trips:     %d\n", res.Total.Vehicles)
	fmt.Printf("  Pedestrian trips:  %d\n", res.Total.Pedestrians)
	fmt.Printf("  Dropped (no path): %d\n", res.Total.Unreachable)
	fmt.Printf("  Dropped (no dest): %d\n", res.Total.NoDestination)
	fmt.Printf("  Elapsed:           %s\n", res.Elapsed.Round(time.Millisecond))

	fmt.Println()
	fmt.Printf("%-5s %10s %12s %12s %11s\n", "Day", "Vehicles", "Pedestrians", "Unreachable", "Roads used")
	fmt.Printf("%-5s %10s %12s %12s %11s\n", "-----", "----------", "------------", "------------", "-----------")
	for _, d := range res.Days {
		fmt.Printf("%-5d %10d %12d %12d %11d\n", d.Day, d.Vehicles, d.Pedestrians, d.Unreachable, d.RoadsUsed)
	}

	outputs := []string{
		p.Spec.OutputPath(p.Dir, p.Spec.Output.VehiclesLog),
		p.Spec.OutputPath(p.Dir, p.Spec.Output.PedestriansLog),
	}
	if p.Spec.Output.DatabaseURL != "" {
		outputs = append(outputs, "postgres:"+tripsink.TripsTable)
	}
	fmt.Println()
	fmt.Printf("Trips appended to %s\n", strings.Join(outputs, ", "))
}
