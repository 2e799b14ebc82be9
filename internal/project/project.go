// Package project loads a traffic project directory: the run spec, its road
// network (generated or read from file) and the path index, and opens the
// configured trip sinks.
package project

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ChicagoDave/citytraffic/pkg/analytics"
	"github.com/ChicagoDave/citytraffic/pkg/gridgen"
	"github.com/ChicagoDave/citytraffic/pkg/network"
	"github.com/ChicagoDave/citytraffic/pkg/routing"
	"github.com/ChicagoDave/citytraffic/pkg/simulation"
	"github.com/ChicagoDave/citytraffic/pkg/spec"
	"github.com/ChicagoDave/citytraffic/pkg/tripsink"
	"github.com/ChicagoDave/citytraffic/pkg/validation"
)

// ErrInvalidSpec is returned when the run spec fails validation.
var ErrInvalidSpec = errors.New("invalid run spec")

// gridStream is the PCG stream used for grid generation. Simulated days use
// streams 1..D, so the grid never shares a stream with a day.
const gridStream = 0

// Overrides replace run spec values after loading, typically from flags or
// environment variables. Zero values leave the spec untouched.
type Overrides struct {
	Seed        *int64
	Days        int
	Parallel    *bool
	DatabaseURL string
}

func (o Overrides) apply(s *spec.RunSpec) {
	if o.Seed != nil {
		seed := *o.Seed
		s.Simulation.RandomSeed = &seed
	}
	if o.Days != 0 {
		s.Simulation.DaysToSimulate = o.Days
	}
	if o.Parallel != nil {
		s.Simulation.ParallelDays = *o.Parallel
	}
	if o.DatabaseURL != "" {
		s.Output.DatabaseURL = o.DatabaseURL
	}
}

// Project is a loaded, validated project ready to simulate.
type Project struct {
	Dir          string
	Spec         *spec.RunSpec
	Seed         int64
	Network      *network.Network
	Streetlights []gridgen.Streetlight
	Index        *routing.Index
	// Report collects spec and network findings.
	Report *validation.Report
	// Generated is true when the network came from the grid generator.
	Generated bool
}

// LoadSpec reads and validates the run spec of dir with overrides applied.
// The returned report is non-nil whenever the spec was parsed.
func LoadSpec(dir string, o Overrides) (*spec.RunSpec, *validation.Report, error) {
	s, err := spec.LoadProject(dir)
	if err != nil {
		return nil, nil, err
	}
	o.apply(s)
	report := validation.ValidateSpec(s)
	if !report.Valid {
		return s, report, fmt.Errorf("%w: %w", ErrInvalidSpec, report.Err())
	}
	return s, report, nil
}

// Load reads the project in dir and builds its network and path index.
func Load(ctx context.Context, dir string, o Overrides) (*Project, error) {
	s, report, err := LoadSpec(dir, o)
	if err != nil {
		return nil, err
	}

	p := &Project{Dir: dir, Spec: s, Report: report}
	if s.Simulation.RandomSeed != nil {
		p.Seed = *s.Simulation.RandomSeed
	} else {
		p.Seed = rand.Int64()
		log.WithField("seed", p.Seed).Info("no random_seed configured; drew one")
	}

	if err := p.loadNetwork(); err != nil {
		return nil, err
	}

	p.Index, err = routing.BuildContext(ctx, p.Network)
	if err != nil {
		return nil, fmt.Errorf("building path index: %w", err)
	}
	log.WithFields(log.Fields{
		"intersections": p.Network.Len(),
		"roads":         len(p.Network.Roads()),
		"generated":     p.Generated,
	}).Info("network ready")
	return p, nil
}

func (p *Project) loadNetwork() error {
	if p.Spec.NetworkFile == "" {
		rng := rand.New(rand.NewPCG(uint64(p.Seed), gridStream))
		city, err := gridgen.Generate(p.Spec.Grid.Rows, p.Spec.Grid.Cols, rng)
		if err != nil {
			return err
		}
		p.Network, p.Streetlights, p.Generated = city.Network, city.Streetlights, true
		return nil
	}

	net, report, err := network.Load(p.Spec.NetworkPath(p.Dir))
	p.Report.Merge(report)
	if err != nil {
		return err
	}
	p.Network = net

	lightsPath := p.Spec.OutputPath(p.Dir, p.Spec.Output.Streetlights)
	if lights, err := gridgen.LoadStreetlights(lightsPath); err == nil {
		p.Streetlights = lights
	} else {
		log.WithError(err).Debug("no streetlight file; placing streetlights from positions")
		p.Streetlights = gridgen.PlaceStreetlights(net)
	}
	return nil
}

// SimulationConfig returns the simulator settings of the project.
func (p *Project) SimulationConfig() simulation.Config {
	return simulation.ConfigFromSpec(p.Spec.Simulation, p.Seed)
}

// Analyze runs the network analyzer over the project network.
func (p *Project) Analyze() (*analytics.Summary, *validation.Report) {
	return analytics.Analyze(p.Network, p.Streetlights, p.Index)
}

// Export writes the network, streetlight and analysis files to the output
// directory and returns the analysis.
func (p *Project) Export() (*analytics.Summary, error) {
	if err := os.MkdirAll(p.Spec.OutputPath(p.Dir, ""), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := network.Export(p.Network, p.Spec.OutputPath(p.Dir, p.Spec.Output.NetworkExport)); err != nil {
		return nil, err
	}
	if err := gridgen.ExportStreetlights(p.Streetlights, p.Spec.OutputPath(p.Dir, p.Spec.Output.Streetlights)); err != nil {
		return nil, err
	}
	summary, report := p.Analyze()
	p.Report.Merge(report)
	if err := analytics.Save(summary, p.Spec.OutputPath(p.Dir, p.Spec.Output.Analysis)); err != nil {
		return nil, err
	}
	return summary, nil
}

// OpenSinks opens the CSV logs and, when a database URL is configured, the
// Postgres sink. The caller closes the returned sink.
func (p *Project) OpenSinks(ctx context.Context) (simulation.Sink, error) {
	if err := os.MkdirAll(p.Spec.OutputPath(p.Dir, ""), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	csvSink, err := tripsink.OpenCSV(
		p.Spec.OutputPath(p.Dir, p.Spec.Output.VehiclesLog),
		p.Spec.OutputPath(p.Dir, p.Spec.Output.PedestriansLog),
	)
	if err != nil {
		return nil, err
	}
	if p.Spec.Output.DatabaseURL == "" {
		return csvSink, nil
	}
	pg, err := tripsink.OpenPostgres(ctx, p.Spec.Output.DatabaseURL)
	if err != nil {
		csvSink.Close()
		return nil, err
	}
	return tripsink.Multi{csvSink, pg}, nil
}
