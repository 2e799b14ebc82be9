package simulation

import (
	"context"
	"fmt"
	"math"

	"github.com/ChicagoDave/citytraffic/pkg/demand"
)

// Trip is one logged movement. Trips are immutable once emitted.
type Trip struct {
	ID                string      `json:"id"`
	Mode              demand.Mode `json:"-"`
	Type              string      `json:"type"`
	WheelCount        int         `json:"wheel_count"`
	From              string      `json:"from"`
	To                string      `json:"to"`
	Path              string      `json:"path"`
	Hour              int         `json:"hour"`
	Day               int         `json:"day"`
	CongestionPenalty float64     `json:"congestion_penalty"`
}

// Pedestrian reports whether the trip was made on foot.
func (t Trip) Pedestrian() bool { return t.Mode == demand.ModePedestrian }

// Sink receives trips in emission order, one batch per simulated hour.
type Sink interface {
	WriteTrips(ctx context.Context, trips []Trip) error
	Close() error
}

// Trip id prefixes. Vehicle and pedestrian ids are independent sequences.
const (
	VehiclePrefix    = "veh"
	PedestrianPrefix = "ped"
)

// FormatID renders the n-th id of a sequence, e.g. veh_00042.
func FormatID(prefix string, n int) string {
	return fmt.Sprintf("%s_%05d", prefix, n)
}

// RoundPenalty rounds a penalty to two decimals.
func RoundPenalty(p float64) float64 {
	return math.Round(p*100) / 100
}

// idSequencer stamps ids at emission time so that they increase in emission
// order no matter how days were scheduled.
type idSequencer struct {
	vehicles    int
	pedestrians int
}

func (s *idSequencer) next(m demand.Mode) string {
	if m == demand.ModePedestrian {
		s.pedestrians++
		return FormatID(PedestrianPrefix, s.pedestrians)
	}
	s.vehicles++
	return FormatID(VehiclePrefix, s.vehicles)
}

// routedTrip is a request together with the penalty computed for it.
type routedTrip struct {
	req     demand.Request
	penalty float64
}

func (s *idSequencer) stamp(day, hour int, batch []routedTrip) []Trip {
	trips := make([]Trip, len(batch))
	for i, rt := range batch {
		t := Trip{
			ID:                s.next(rt.req.Mode),
			Mode:              rt.req.Mode,
			Type:              rt.req.Mode.String(),
			From:              rt.req.Origin,
			To:                rt.req.Destination,
			Path:              rt.req.Path.String(),
			Hour:              hour,
			Day:               day,
			CongestionPenalty: RoundPenalty(rt.penalty),
		}
		if rt.req.Mode == demand.ModeVehicle {
			t.Type = rt.req.Vehicle.Name()
			t.WheelCount = rt.req.Vehicle.Wheels
		}
		trips[i] = t
	}
	return trips
}
