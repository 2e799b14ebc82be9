package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ChicagoDave/citytraffic/pkg/spec"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field paths with the YAML names users write in traffic.yaml.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct checks the validate tags of any struct and returns one Result per
// failing field. It is shared with request payloads of the HTTP server.
func Struct(level Level, v any) []Result {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Result{{Level: level, Message: err.Error()}}
	}
	results := make([]Result, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		results = append(results, Result{
			Level:       level,
			Message:     fmt.Sprintf("%s failed %q constraint", path, constraint(fe)),
			SpecPath:    path,
			ActualValue: fe.Value(),
			Expected:    constraint(fe),
		})
	}
	return results
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// ValidateSpec performs schema validation on a parsed RunSpec.
// It checks structural correctness before the simulation loop starts.
func ValidateSpec(s *spec.RunSpec) *Report {
	r := NewReport()

	for _, res := range Struct(LevelSchema, s) {
		r.AddError(res)
	}
	validateNetworkSource(s, r)
	validateSampleSize(s, r)
	validateSeed(s, r)

	return r
}

func validateNetworkSource(s *spec.RunSpec, r *Report) {
	if s.NetworkFile != "" {
		if s.Grid.Rows > 0 || s.Grid.Cols > 0 {
			r.AddInfo(Result{
				Level:    LevelSchema,
				Message:  "network_file is set; grid rows/cols are ignored",
				SpecPath: "grid",
			})
		}
		return
	}
	if s.Grid.Rows <= 0 || s.Grid.Cols <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "grid rows and cols must be > 0 when no network_file is given",
			SpecPath:    "grid",
			ActualValue: fmt.Sprintf("%dx%d", s.Grid.Rows, s.Grid.Cols),
			Expected:    "> 0 x > 0",
			Suggestions: []string{"Set grid.rows and grid.cols", "Point network_file at an exported network"},
		})
	}
}

func validateSampleSize(s *spec.RunSpec, r *Report) {
	if s.NetworkFile != "" || s.Grid.Rows <= 0 || s.Grid.Cols <= 0 {
		return
	}
	total := s.Grid.Rows * s.Grid.Cols
	if s.Simulation.IntersectionsPerHour > total {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("intersections_per_hour %d exceeds the %d intersections of the grid; every intersection is sampled each hour", s.Simulation.IntersectionsPerHour, total),
			SpecPath:    "simulation.intersections_per_hour",
			ActualValue: s.Simulation.IntersectionsPerHour,
			Expected:    fmt.Sprintf("<= %d", total),
		})
	}
}

func validateSeed(s *spec.RunSpec, r *Report) {
	if s.Simulation.RandomSeed == nil {
		r.AddInfo(Result{
			Level:    LevelSchema,
			Message:  "random_seed not set; a seed is drawn at start-up and logged",
			SpecPath: "simulation.random_seed",
		})
	}
}
