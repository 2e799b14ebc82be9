package spec

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the spec file name looked up inside a project directory.
const ProjectFile = "traffic.yaml"

// Load reads a run spec from a YAML file and applies defaults.
func Load(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	var spec RunSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing spec YAML: %w", err)
	}
	spec.ApplyDefaults()

	return &spec, nil
}

// LoadProject loads a run spec from a project directory.
// It looks for traffic.yaml in the given directory.
func LoadProject(projectDir string) (*RunSpec, error) {
	specPath := filepath.Join(projectDir, ProjectFile)
	return Load(specPath)
}

// OutputPath resolves an output file name against the project directory and
// the configured output directory. Absolute names are returned unchanged.
func (s *RunSpec) OutputPath(projectDir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	dir := s.Output.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(projectDir, dir)
	}
	return filepath.Join(dir, name)
}

// NetworkPath resolves NetworkFile against the project directory. It returns
// "" when no network file is configured.
func (s *RunSpec) NetworkPath(projectDir string) string {
	if s.NetworkFile == "" || filepath.IsAbs(s.NetworkFile) {
		return s.NetworkFile
	}
	return filepath.Join(projectDir, s.NetworkFile)
}
