package project

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChicagoDave/citytraffic/pkg/simulation"
)

func writeProject(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "traffic.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing traffic.yaml: %v", err)
	}
	return dir
}

const gridProject = `spec_version: "0.1.0"
grid: {rows: 5, cols: 5}
simulation:
  intersections_per_hour: 4
  days_to_simulate: 3
  random_seed: 99
output:
  dir: out
`

func TestLoadGeneratesGrid(t *testing.T) {
	dir := writeProject(t, gridProject)
	p, err := Load(context.Background(), dir, Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !p.Generated {
		t.Error("Generated = false, want true")
	}
	if p.Seed != 99 {
		t.Errorf("Seed = %d, want 99", p.Seed)
	}
	if p.Network.Len() != 25 {
		t.Errorf("intersections = %d, want 25", p.Network.Len())
	}
	if len(p.Streetlights) == 0 {
		t.Error("no streetlights placed")
	}
	cfg := p.SimulationConfig()
	if cfg.Days != 3 || cfg.HoursPerDay != 24 || cfg.IntersectionsPerHour != 4 {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := writeProject(t, gridProject)
	seed, parallel := int64(5), true
	p, err := Load(context.Background(), dir, Overrides{Seed: &seed, Days: 2, Parallel: &parallel})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := p.SimulationConfig()
	if cfg.Seed != 5 || cfg.Days != 2 || !cfg.Parallel {
		t.Errorf("config = %+v, want seed 5, 2 days, parallel", cfg)
	}
}

func TestLoadRejectsInvalidSpec(t *testing.T) {
	dir := writeProject(t, `grid: {rows: 3, cols: 3}
simulation:
  intersections_per_hour: 0
  days_to_simulate: 1
`)
	_, err := Load(context.Background(), dir, Overrides{})
	if !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("error = %v, want ErrInvalidSpec", err)
	}
}

func TestExportThenLoadNetworkFile(t *testing.T) {
	dir := writeProject(t, gridProject)
	p, err := Load(context.Background(), dir, Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	summary, err := p.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if summary.TotalIntersections != 25 {
		t.Errorf("summary intersections = %d, want 25", summary.TotalIntersections)
	}
	for _, name := range []string{"city_grid.json", "streetlights.json", "city_analysis.json"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Errorf("missing export %s: %v", name, err)
		}
	}

	// A second project reads the exported network instead of generating.
	dir2 := writeProject(t, `network_file: `+filepath.Join(dir, "out", "city_grid.json")+`
simulation:
  intersections_per_hour: 4
  days_to_simulate: 1
  random_seed: 1
output:
  dir: `+filepath.Join(dir, "out")+`
`)
	p2, err := Load(context.Background(), dir2, Overrides{})
	if err != nil {
		t.Fatalf("Load network_file: %v", err)
	}
	if p2.Generated {
		t.Error("Generated = true for a network_file project")
	}
	if p2.Network.Len() != 25 || len(p2.Network.Roads()) != len(p.Network.Roads()) {
		t.Errorf("reloaded %d intersections, %d roads", p2.Network.Len(), len(p2.Network.Roads()))
	}
	if len(p2.Streetlights) != len(p.Streetlights) {
		t.Errorf("reloaded %d streetlights, want %d", len(p2.Streetlights), len(p.Streetlights))
	}
	if len(p2.Report.Warnings) != 0 {
		t.Errorf("exported network produced warnings: %v", p2.Report.Warnings)
	}
}

// simulateToCSV runs the project into fresh logs and returns their contents.
func simulateToCSV(t *testing.T, yaml string, parallel bool) ([]byte, []byte) {
	t.Helper()
	dir := writeProject(t, yaml)
	p, err := Load(context.Background(), dir, Overrides{Parallel: &parallel})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sink, err := p.OpenSinks(context.Background())
	if err != nil {
		t.Fatalf("OpenSinks: %v", err)
	}
	sim, err := simulation.New(p.Index, p.SimulationConfig())
	if err != nil {
		t.Fatalf("simulation.New: %v", err)
	}
	if _, err := sim.Run(context.Background(), sink); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	veh, err := os.ReadFile(filepath.Join(dir, "out", "vehicles_log.csv"))
	if err != nil {
		t.Fatalf("reading vehicles log: %v", err)
	}
	ped, err := os.ReadFile(filepath.Join(dir, "out", "pedestrians_log.csv"))
	if err != nil {
		t.Fatalf("reading pedestrians log: %v", err)
	}
	return veh, ped
}

func TestLogsAreByteIdentical(t *testing.T) {
	v1, p1 := simulateToCSV(t, gridProject, false)
	v2, p2 := simulateToCSV(t, gridProject, false)
	v3, p3 := simulateToCSV(t, gridProject, true)

	if !bytes.Equal(v1, v2) || !bytes.Equal(p1, p2) {
		t.Error("two sequential runs with the same seed wrote different logs")
	}
	if !bytes.Equal(v1, v3) || !bytes.Equal(p1, p3) {
		t.Error("parallel run wrote different logs from the sequential run")
	}
	if !bytes.HasPrefix(v1, []byte("id,type,wheel_count,from,to,path,hour,day,congestion_penalty\n")) {
		t.Errorf("vehicle log header = %q", bytes.SplitN(v1, []byte("\n"), 2)[0])
	}
}
