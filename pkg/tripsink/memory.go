package tripsink

import (
	"context"
	"errors"
	"sync"

	"github.com/ChicagoDave/citytraffic/pkg/simulation"
)

// ErrClosed is returned when writing to a closed sink.
var ErrClosed = errors.New("sink closed")

// Memory keeps every trip in memory.
type Memory struct {
	mu     sync.Mutex
	trips  []simulation.Trip
	closed bool
}

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) WriteTrips(_ context.Context, trips []simulation.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.trips = append(m.trips, trips...)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Trips returns a copy of the collected trips in emission order.
func (m *Memory) Trips() []simulation.Trip {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]simulation.Trip, len(m.trips))
	copy(out, m.trips)
	return out
}

// Multi writes every batch to each sink in turn.
type Multi []simulation.Sink

func (ms Multi) WriteTrips(ctx context.Context, trips []simulation.Trip) error {
	for _, s := range ms {
		if err := s.WriteTrips(ctx, trips); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (ms Multi) Close() error {
	var errs []error
	for _, s := range ms {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
