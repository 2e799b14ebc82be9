package congestion

import (
	"math"
	"testing"

	"github.com/ChicagoDave/citytraffic/pkg/network"
)

const eps = 1e-9

// testNetwork is A→B→C with a light at B. A→B has capacity 250.
func testNetwork(t *testing.T) *network.Network {
	t.Helper()
	n, err := network.New(
		[]network.Intersection{
			{ID: "A", Zone: network.ZoneResidential},
			{ID: "B", Zone: network.ZoneCommercial, TrafficLight: true, TrafficLightDelay: 0.15},
			{ID: "C", Zone: network.ZoneIndustrial, TrafficLight: true, TrafficLightDelay: 0.3},
		},
		[]network.Road{
			{From: "A", To: "B", Distance: 1, Type: network.RoadMinor, Capacity: 250, Delay: 0.1},
			{From: "B", To: "C", Distance: 3, Type: network.RoadMajor, Capacity: 500},
		},
	)
	if err != nil {
		t.Fatalf("network.New: %v", err)
	}
	return n
}

func TestPenaltyLowCapacityAfterThreeTrips(t *testing.T) {
	tr := New(testNetwork(t))
	path := []string{"A", "B"}
	for i := 0; i < 3; i++ {
		tr.Record(path)
	}

	// 0.5 × (1 + 3 × 0.05) + delay 0.1; A has no light.
	got := tr.Penalty(path)
	if want := 0.575 + 0.1; math.Abs(got-want) > eps {
		t.Errorf("Penalty = %v, want %v", got, want)
	}
}

func TestPenaltyAddsLightDelayExceptAtDestination(t *testing.T) {
	tr := New(testNetwork(t))

	// A→B: 0.5 + 0.1; B→C: 0.2 + light at B 0.15. C's light is not counted.
	got := tr.Penalty([]string{"A", "B", "C"})
	if want := 0.6 + 0.35; math.Abs(got-want) > eps {
		t.Errorf("Penalty = %v, want %v", got, want)
	}
}

func TestPenaltyNonDecreasingWithUsage(t *testing.T) {
	tr := New(testNetwork(t))
	path := []string{"A", "B", "C"}

	prev := tr.Penalty(path)
	for i := 0; i < 50; i++ {
		tr.Record(path)
		got := tr.Penalty(path)
		if got < prev {
			t.Fatalf("after %d records penalty fell from %v to %v", i+1, prev, got)
		}
		prev = got
	}
}

func TestPenaltyAtLeastFloor(t *testing.T) {
	tr := New(testNetwork(t))
	path := []string{"A", "B", "C"}
	floor := tr.Floor(path)
	if floor <= 0 {
		t.Fatalf("Floor = %v, want > 0", floor)
	}
	if got := tr.Penalty(path); math.Abs(got-floor) > eps {
		t.Errorf("empty-day Penalty = %v, want floor %v", got, floor)
	}
	tr.Record(path)
	if got := tr.Penalty(path); got < floor {
		t.Errorf("Penalty = %v, below floor %v", got, floor)
	}
}

func TestPenaltyDoesNotRecord(t *testing.T) {
	tr := New(testNetwork(t))
	tr.Penalty([]string{"A", "B"})
	if got := tr.Usage("A", "B"); got != 0 {
		t.Errorf("Usage after Penalty = %d, want 0", got)
	}
}

func TestSingleNodePathIsFree(t *testing.T) {
	tr := New(testNetwork(t))
	if got := tr.Penalty([]string{"B"}); got != 0 {
		t.Errorf("Penalty([B]) = %v, want 0", got)
	}
	tr.Record([]string{"B"})
	if got := tr.Roads(); got != 0 {
		t.Errorf("Roads after single-node Record = %d, want 0", got)
	}
}

func TestResetDayClearsUsage(t *testing.T) {
	tr := New(testNetwork(t))
	path := []string{"A", "B", "C"}
	fresh := tr.Penalty(path)
	tr.Record(path)
	tr.Record(path)
	if got := tr.Usage("B", "C"); got != 2 {
		t.Fatalf("Usage(B, C) = %d, want 2", got)
	}

	tr.ResetDay()

	for _, pair := range [][2]string{{"A", "B"}, {"B", "C"}} {
		if got := tr.Usage(pair[0], pair[1]); got != 0 {
			t.Errorf("Usage(%s, %s) after reset = %d, want 0", pair[0], pair[1], got)
		}
	}
	if got := tr.Penalty(path); math.Abs(got-fresh) > eps {
		t.Errorf("Penalty after reset = %v, want %v", got, fresh)
	}
}
