// Package simulation runs the day×hour loop: it asks the demand generator for
// routed trips, prices each against the day's congestion, stamps ids and hands
// the trips to a Sink hour by hour.
package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ChicagoDave/citytraffic/pkg/congestion"
	"github.com/ChicagoDave/citytraffic/pkg/demand"
	"github.com/ChicagoDave/citytraffic/pkg/network"
	"github.com/ChicagoDave/citytraffic/pkg/routing"
)

// RandFactory returns the random stream of one day of a run.
type RandFactory func(seed int64, day int) demand.Rand

// DayRand derives an independent PCG stream from the run seed and the day.
func DayRand(seed int64, day int) demand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(day)))
}

// DayStats is the outcome of one simulated day.
type DayStats struct {
	Day int `json:"day"`
	demand.Stats
	// RoadsUsed is the number of distinct roads with traffic that day.
	RoadsUsed int `json:"roads_used"`
}

// Result summarizes a completed run.
type Result struct {
	Seed    int64         `json:"seed"`
	Total   demand.Stats  `json:"total"`
	Days    []DayStats    `json:"days"`
	Elapsed time.Duration `json:"elapsed"`
}

// Simulator drives runs over one indexed network.
type Simulator struct {
	cfg     Config
	net     *network.Network
	gen     *demand.Generator
	newRand RandFactory
	log     *log.Entry
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithRand replaces the per-day random stream factory.
func WithRand(f RandFactory) Option {
	return func(s *Simulator) { s.newRand = f }
}

// WithLogger sets the entry used for progress logging.
func WithLogger(l *log.Entry) Option {
	return func(s *Simulator) { s.log = l }
}

// New validates cfg and prepares a Simulator.
func New(index *routing.Index, cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		cfg:     cfg,
		net:     index.Network(),
		gen:     demand.New(index),
		newRand: DayRand,
		log:     log.NewEntry(log.StandardLogger()),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Config returns the validated configuration.
func (s *Simulator) Config() Config { return s.cfg }

// day is the state owned by one simulated day.
type day struct {
	n       int
	rng     demand.Rand
	tracker *congestion.Tracker
	stats   demand.Stats
}

func (s *Simulator) newDay(n int) *day {
	d := &day{n: n, rng: s.newRand(s.cfg.Seed, n), tracker: congestion.New(s.net)}
	d.tracker.ResetDay()
	return d
}

// hour generates, prices and records the trips of one hour in generation
// order. Each trip's penalty is computed before its own usage is recorded.
func (s *Simulator) hour(d *day, h int) []routedTrip {
	reqs, stats := s.gen.Hour(d.rng, d.n, h, s.cfg.IntersectionsPerHour)
	d.stats.Add(stats)
	batch := make([]routedTrip, len(reqs))
	for i, r := range reqs {
		batch[i] = routedTrip{req: r, penalty: d.tracker.Penalty(r.Path)}
		d.tracker.Record(r.Path)
	}
	return batch
}

func (s *Simulator) finishDay(d *day) DayStats {
	ds := DayStats{Day: d.n, Stats: d.stats, RoadsUsed: d.tracker.Roads()}
	s.log.WithFields(log.Fields{
		"day":            d.n,
		"vehicles":       ds.Vehicles,
		"pedestrians":    ds.Pedestrians,
		"unreachable":    ds.Unreachable,
		"no_destination": ds.NoDestination,
		"roads_used":     ds.RoadsUsed,
	}).Info("day simulated")
	return ds
}

// Run simulates every configured day and writes the trips to sink. It stops
// between hours when ctx is cancelled. The sink is not closed.
func (s *Simulator) Run(ctx context.Context, sink Sink) (*Result, error) {
	start := time.Now()
	s.log.WithFields(log.Fields{
		"days":                   s.cfg.Days,
		"hours_per_day":          s.cfg.HoursPerDay,
		"intersections_per_hour": s.cfg.IntersectionsPerHour,
		"seed":                   s.cfg.Seed,
		"parallel":               s.cfg.Parallel,
	}).Info("simulation started")

	var (
		days []DayStats
		err  error
	)
	if s.cfg.Parallel && s.cfg.Days > 1 {
		days, err = s.runParallel(ctx, sink)
	} else {
		days, err = s.runSequential(ctx, sink)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Seed: s.cfg.Seed, Days: days, Elapsed: time.Since(start)}
	for _, d := range days {
		res.Total.Add(d.Stats)
	}
	s.log.WithFields(log.Fields{
		"vehicles":    res.Total.Vehicles,
		"pedestrians": res.Total.Pedestrians,
		"unreachable": res.Total.Unreachable,
		"elapsed":     res.Elapsed.Round(time.Millisecond),
	}).Info("simulation finished")
	return res, nil
}

func (s *Simulator) runSequential(ctx context.Context, sink Sink) ([]DayStats, error) {
	var ids idSequencer
	days := make([]DayStats, 0, s.cfg.Days)
	for n := 1; n <= s.cfg.Days; n++ {
		d := s.newDay(n)
		for h := 0; h < s.cfg.HoursPerDay; h++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := emit(ctx, sink, ids.stamp(n, h, s.hour(d, h))); err != nil {
				return nil, fmt.Errorf("day %d hour %d: %w", n, h, err)
			}
		}
		days = append(days, s.finishDay(d))
	}
	return days, nil
}

// dayOutput is the buffered work of one day simulated ahead of emission.
type dayOutput struct {
	hours [][]routedTrip
	stats DayStats
	ready chan struct{}
}

// runParallel simulates days on a bounded set of goroutines and emits them in
// day order as soon as each is complete. At most workers days are simulated
// or buffered ahead of the sink at any time.
func (s *Simulator) runParallel(ctx context.Context, sink Sink) ([]DayStats, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outputs := make([]*dayOutput, s.cfg.Days)
	for i := range outputs {
		outputs[i] = &dayOutput{ready: make(chan struct{})}
	}

	workers := s.cfg.workers()
	// A slot is taken when a day is scheduled and given back once it is emitted.
	window := make(chan struct{}, workers)

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(workers)
	scheduled := make(chan struct{})
	go func() {
		defer close(scheduled)
		for i := range outputs {
			select {
			case window <- struct{}{}:
			case <-gctx.Done():
				return
			}
			n, out := i+1, outputs[i]
			g.Go(func() error {
				d := s.newDay(n)
				out.hours = make([][]routedTrip, s.cfg.HoursPerDay)
				for h := range out.hours {
					if err := gctx.Err(); err != nil {
						return err
					}
					out.hours[h] = s.hour(d, h)
				}
				out.stats = s.finishDay(d)
				close(out.ready)
				return nil
			})
		}
	}()

	var ids idSequencer
	days := make([]DayStats, 0, s.cfg.Days)
	var emitErr error
	for i, out := range outputs {
		select {
		case <-out.ready:
		case <-gctx.Done():
		}
		if gctx.Err() != nil {
			break
		}
		n := i + 1
		for h, batch := range out.hours {
			if err := emit(runCtx, sink, ids.stamp(n, h, batch)); err != nil {
				emitErr = fmt.Errorf("day %d hour %d: %w", n, h, err)
				break
			}
		}
		if emitErr != nil {
			break
		}
		out.hours = nil
		days = append(days, out.stats)
		<-window
	}
	cancel()
	<-scheduled
	werr := g.Wait()

	switch {
	case emitErr != nil:
		return nil, emitErr
	case len(days) < len(outputs) && werr != nil:
		return nil, werr
	case len(days) < len(outputs):
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, context.Canceled
	}
	return days, nil
}

func emit(ctx context.Context, sink Sink, trips []Trip) error {
	if len(trips) == 0 {
		return nil
	}
	return sink.WriteTrips(ctx, trips)
}
