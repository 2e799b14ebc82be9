package simulation

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/ChicagoDave/citytraffic/pkg/spec"
	"github.com/ChicagoDave/citytraffic/pkg/validation"
)

// ErrInvalidConfig is returned when a Config cannot drive a run.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config controls one simulation run.
type Config struct {
	IntersectionsPerHour int   `json:"intersections_per_hour" yaml:"intersections_per_hour" validate:"gt=0"`
	Days                 int   `json:"days" yaml:"days" validate:"gt=0"`
	HoursPerDay          int   `json:"hours_per_day" yaml:"hours_per_day" validate:"gte=1,lte=24"`
	Seed                 int64 `json:"seed" yaml:"seed"`
	// Parallel simulates days concurrently; the emitted trips are identical
	// to a sequential run.
	Parallel bool `json:"parallel" yaml:"parallel"`
	// Workers bounds concurrent days. Zero means GOMAXPROCS.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty" validate:"gte=0"`
}

// ConfigFromSpec builds a Config from the simulation section of a run spec.
// The seed is passed separately because the run spec may leave it unset.
func ConfigFromSpec(def spec.SimulationDef, seed int64) Config {
	hours := def.HoursPerDay
	if hours == 0 {
		hours = spec.DefaultHoursPerDay
	}
	return Config{
		IntersectionsPerHour: def.IntersectionsPerHour,
		Days:                 def.DaysToSimulate,
		HoursPerDay:          hours,
		Seed:                 seed,
		Parallel:             def.ParallelDays,
	}
}

// Validate returns an error wrapping ErrInvalidConfig when a field is out of
// range.
func (c Config) Validate() error {
	results := validation.Struct(validation.LevelRuntime, c)
	if len(results) == 0 {
		return nil
	}
	msgs := make([]string, len(results))
	for i, r := range results {
		msgs[i] = r.Message
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
