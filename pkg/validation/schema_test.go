package validation

import (
	"testing"

	"github.com/ChicagoDave/citytraffic/pkg/spec"
)

func validSpec() *spec.RunSpec {
	seed := int64(42)
	s := &spec.RunSpec{
		SpecVersion: "0.1.0",
		Grid:        spec.GridDef{Rows: 3, Cols: 3},
		Simulation: spec.SimulationDef{
			IntersectionsPerHour: 2,
			DaysToSimulate:       1,
			RandomSeed:           &seed,
		},
	}
	s.ApplyDefaults()
	return s
}

func hasErrorAt(r *Report, path string) bool {
	for _, e := range r.Errors {
		if e.SpecPath == path {
			return true
		}
	}
	return false
}

func TestValidateSpecValid(t *testing.T) {
	r := ValidateSpec(validSpec())
	if !r.Valid {
		t.Fatalf("expected valid spec, got errors: %v", r.Errors)
	}
	if err := r.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestValidateSpecNonPositiveDays(t *testing.T) {
	s := validSpec()
	s.Simulation.DaysToSimulate = 0
	r := ValidateSpec(s)
	if r.Valid {
		t.Fatal("expected invalid spec for days_to_simulate = 0")
	}
	if !hasErrorAt(r, "simulation.days_to_simulate") {
		t.Errorf("expected error at simulation.days_to_simulate, got %v", r.Errors)
	}
}

func TestValidateSpecNonPositiveSampleSize(t *testing.T) {
	s := validSpec()
	s.Simulation.IntersectionsPerHour = -1
	r := ValidateSpec(s)
	if !hasErrorAt(r, "simulation.intersections_per_hour") {
		t.Errorf("expected error at simulation.intersections_per_hour, got %v", r.Errors)
	}
}

func TestValidateSpecHoursOutOfRange(t *testing.T) {
	for _, hours := range []int{-1, 25} {
		s := validSpec()
		s.Simulation.HoursPerDay = hours
		r := ValidateSpec(s)
		if !hasErrorAt(r, "simulation.hours_per_day") {
			t.Errorf("hours_per_day=%d: expected error, got %v", hours, r.Errors)
		}
	}
}

func TestValidateSpecMissingGrid(t *testing.T) {
	s := validSpec()
	s.Grid = spec.GridDef{}
	r := ValidateSpec(s)
	if !hasErrorAt(r, "grid") {
		t.Errorf("expected grid error, got %v", r.Errors)
	}
	if r.Err() == nil {
		t.Error("Err() should be non-nil for an invalid report")
	}
}

func TestValidateSpecNetworkFileSkipsGrid(t *testing.T) {
	s := validSpec()
	s.Grid = spec.GridDef{}
	s.NetworkFile = "city_grid.json"
	r := ValidateSpec(s)
	if !r.Valid {
		t.Errorf("network_file should make grid optional, got %v", r.Errors)
	}
}

func TestValidateSpecLargeSampleWarns(t *testing.T) {
	s := validSpec()
	s.Simulation.IntersectionsPerHour = 100
	r := ValidateSpec(s)
	if !r.Valid {
		t.Fatalf("oversized sample should only warn, got %v", r.Errors)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(r.Warnings))
	}
}

func TestValidateSpecBadDatabaseURL(t *testing.T) {
	s := validSpec()
	s.Output.DatabaseURL = "not a url"
	r := ValidateSpec(s)
	if !hasErrorAt(r, "output.database_url") {
		t.Errorf("expected output.database_url error, got %v", r.Errors)
	}
}

func TestValidateSpecMissingSeedIsInfo(t *testing.T) {
	s := validSpec()
	s.Simulation.RandomSeed = nil
	r := ValidateSpec(s)
	if !r.Valid {
		t.Fatalf("missing seed should not invalidate, got %v", r.Errors)
	}
	if len(r.Info) == 0 {
		t.Error("expected an info note about the missing seed")
	}
}
