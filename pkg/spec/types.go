package spec

// DefaultHoursPerDay is used when hours_per_day is omitted.
const DefaultHoursPerDay = 24

// RunSpec is the top-level description of a trace generation run.
type RunSpec struct {
	SpecVersion string        `yaml:"spec_version" json:"spec_version"`
	Grid        GridDef       `yaml:"grid" json:"grid"`
	NetworkFile string        `yaml:"network_file" json:"network_file,omitempty"`
	Simulation  SimulationDef `yaml:"simulation" json:"simulation"`
	Output      OutputDef     `yaml:"output" json:"output"`
}

// GridDef is the grid shape handed to the grid generator. It is ignored when
// NetworkFile points at an existing network.
type GridDef struct {
	Rows int `yaml:"rows" json:"rows" validate:"gte=0,lte=26"`
	Cols int `yaml:"cols" json:"cols" validate:"gte=0"`
}

type SimulationDef struct {
	IntersectionsPerHour int    `yaml:"intersections_per_hour" json:"intersections_per_hour" validate:"gt=0"`
	DaysToSimulate       int    `yaml:"days_to_simulate" json:"days_to_simulate" validate:"gt=0"`
	HoursPerDay          int    `yaml:"hours_per_day" json:"hours_per_day" validate:"gte=1,lte=24"`
	RandomSeed           *int64 `yaml:"random_seed" json:"random_seed,omitempty"`
	ParallelDays         bool   `yaml:"parallel_days" json:"parallel_days"`
}

type OutputDef struct {
	Dir            string `yaml:"dir" json:"dir"`
	VehiclesLog    string `yaml:"vehicles_log" json:"vehicles_log"`
	PedestriansLog string `yaml:"pedestrians_log" json:"pedestrians_log"`
	NetworkExport  string `yaml:"network_export" json:"network_export"`
	Streetlights   string `yaml:"streetlights" json:"streetlights"`
	Analysis       string `yaml:"analysis" json:"analysis"`
	DatabaseURL    string `yaml:"database_url" json:"database_url,omitempty" validate:"omitempty,url"`
}

// ApplyDefaults fills optional fields that were left empty.
func (s *RunSpec) ApplyDefaults() {
	if s.Simulation.HoursPerDay == 0 {
		s.Simulation.HoursPerDay = DefaultHoursPerDay
	}
	o := &s.Output
	if o.Dir == "" {
		o.Dir = "out"
	}
	if o.VehiclesLog == "" {
		o.VehiclesLog = "vehicles_log.csv"
	}
	if o.PedestriansLog == "" {
		o.PedestriansLog = "pedestrians_log.csv"
	}
	if o.NetworkExport == "" {
		o.NetworkExport = "city_grid.json"
	}
	if o.Streetlights == "" {
		o.Streetlights = "streetlights.json"
	}
	if o.Analysis == "" {
		o.Analysis = "city_analysis.json"
	}
}
