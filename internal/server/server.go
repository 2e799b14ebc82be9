package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/ChicagoDave/citytraffic/internal/project"
	"github.com/ChicagoDave/citytraffic/pkg/simulation"
	"github.com/ChicagoDave/citytraffic/pkg/tripsink"
	"github.com/ChicagoDave/citytraffic/pkg/validation"
)

// MaxSimulateDays bounds batch runs requested over HTTP.
const MaxSimulateDays = 31

// Server serves a loaded project over HTTP for dashboards and inspection.
type Server struct {
	project *project.Project
	port    int
	echo    *echo.Echo
}

// New creates a server for a loaded project.
func New(p *project.Project, port int) *Server {
	s := &Server{project: p, port: port}
	s.echo = s.routes()
	return s
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.WithFields(log.Fields{"method": v.Method, "uri": v.URI, "status": v.Status}).Debug("request")
			return nil
		},
	}))

	api := e.Group("/api")
	api.GET("/network", s.handleNetwork)
	api.GET("/analysis", s.handleAnalysis)
	api.GET("/validation", s.handleValidation)
	api.POST("/simulate", s.handleSimulate)
	e.GET("/", s.handleIndex)
	return e
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start launches the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.WithFields(log.Fields{"addr": "http://localhost" + addr, "project": s.project.Dir}).Info("citytraffic server starting")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string              `json:"message"`
	Details []validation.Result `json:"details,omitempty"`
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.HTML(http.StatusOK, `<!DOCTYPE html>
<html><head><title>citytraffic</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>citytraffic</h1>
<p>API: <code>/api/network</code>, <code>/api/analysis</code>, <code>/api/validation</code>, <code>POST /api/simulate</code></p>
</div>
</body></html>`)
}

func (s *Server) handleNetwork(c echo.Context) error {
	return c.JSON(http.StatusOK, s.project.Network.ToDocument())
}

func (s *Server) handleAnalysis(c echo.Context) error {
	summary, report := s.project.Analyze()
	return c.JSON(http.StatusOK, map[string]any{
		"summary":    summary,
		"validation": report,
	})
}

func (s *Server) handleValidation(c echo.Context) error {
	return c.JSON(http.StatusOK, s.project.Report)
}

// SimulateRequest is the body of POST /api/simulate. Omitted fields fall
// back to the project configuration.
type SimulateRequest struct {
	Days                 int    `json:"days" yaml:"days" validate:"gte=0,lte=31"`
	HoursPerDay          int    `json:"hours_per_day" yaml:"hours_per_day" validate:"gte=0,lte=24"`
	IntersectionsPerHour int    `json:"intersections_per_hour" yaml:"intersections_per_hour" validate:"gte=0"`
	RandomSeed           *int64 `json:"random_seed" yaml:"random_seed"`
}

// SimulateResponse carries the trips of a batch run.
type SimulateResponse struct {
	Config simulation.Config  `json:"config"`
	Result *simulation.Result `json:"result"`
	Trips  []simulation.Trip  `json:"trips"`
}

func (s *Server) simulationConfig(req SimulateRequest) simulation.Config {
	cfg := s.project.SimulationConfig()
	cfg.Parallel = false
	if req.Days > 0 {
		cfg.Days = req.Days
	}
	if req.HoursPerDay > 0 {
		cfg.HoursPerDay = req.HoursPerDay
	}
	if req.IntersectionsPerHour > 0 {
		cfg.IntersectionsPerHour = req.IntersectionsPerHour
	}
	if req.RandomSeed != nil {
		cfg.Seed = *req.RandomSeed
	}
	cfg.Days = min(cfg.Days, MaxSimulateDays)
	return cfg
}

func (s *Server) handleSimulate(c echo.Context) error {
	var req SimulateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}
	if results := validation.Struct(validation.LevelRuntime, req); len(results) > 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid simulation request", Details: results})
	}

	cfg := s.simulationConfig(req)
	sim, err := simulation.New(s.project.Index, cfg)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	}
	sink := tripsink.NewMemory()
	res, err := sim.Run(c.Request().Context(), sink)
	if err != nil {
		log.WithError(err).Warn("simulation request failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "simulation failed"})
	}
	return c.JSON(http.StatusOK, SimulateResponse{Config: cfg, Result: res, Trips: sink.Trips()})
}
