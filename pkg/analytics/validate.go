package analytics

import (
	"fmt"
	"strings"

	"github.com/ChicagoDave/citytraffic/pkg/network"
	"github.com/ChicagoDave/citytraffic/pkg/validation"
)

// validateAnalytical checks whether the network can carry simulated demand.
func validateAnalytical(net *network.Network, s *Summary, report *validation.Report) {
	validateWorkplaces(net, report)
	validateResidential(net, report)
	validateStreetlights(s, report)
	validateReachability(s, report)
}

func validateWorkplaces(net *network.Network, report *validation.Report) {
	if len(net.InZones(network.ZoneCommercial, network.ZoneIndustrial)) > 0 {
		return
	}
	report.AddWarning(validation.Result{
		Level:       validation.LevelAnalytical,
		Message:     "network has no commercial or industrial intersections; every vehicle trip will be dropped",
		SpecPath:    "nodes[].zone",
		Suggestions: []string{"Zone some intersections commercial or industrial"},
	})
}

func validateResidential(net *network.Network, report *validation.Report) {
	if len(net.InZones(network.ZoneResidential)) > 0 {
		return
	}
	report.AddInfo(validation.Result{
		Level:   validation.LevelAnalytical,
		Message: "network has no residential intersections; origins are drawn from every intersection",
	})
}

func validateStreetlights(s *Summary, report *validation.Report) {
	if len(s.RoadsWithoutStreetlights) == 0 {
		return
	}
	shown := s.RoadsWithoutStreetlights
	if len(shown) > 5 {
		shown = shown[:5]
	}
	report.AddWarning(validation.Result{
		Level:       validation.LevelAnalytical,
		Message:     fmt.Sprintf("%d of %d roads have no streetlights", len(s.RoadsWithoutStreetlights), s.TotalRoads),
		ActualValue: strings.Join(shown, ", "),
		Expected:    ">= 1 streetlight per road",
	})
}

func validateReachability(s *Summary, report *validation.Report) {
	c := s.Connectivity
	if c == nil || c.Pairs == 0 {
		return
	}
	if c.Unreachable == 0 {
		report.AddInfo(validation.Result{
			Level:   validation.LevelAnalytical,
			Message: "every intersection can reach every other",
		})
		return
	}
	pct := 100 * float64(c.Unreachable) / float64(c.Pairs)
	report.AddWarning(validation.Result{
		Level:        validation.LevelAnalytical,
		Message:      fmt.Sprintf("%d of %d ordered intersection pairs (%.1f%%) have no path; trips between them are dropped", c.Unreachable, c.Pairs, pct),
		ActualValue:  c.Unreachable,
		ConflictWith: fmt.Sprintf("%d dead-end intersections", len(c.Sinks)),
		Suggestions:  []string{"Add return roads so that the grid is strongly connected"},
	})
}
