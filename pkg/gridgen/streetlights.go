package gridgen

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/ChicagoDave/citytraffic/pkg/network"
)

// lightOffset shifts streetlights off the road center line.
const lightOffset = 0.03

// Streetlight is one lamp placed beside a road.
type Streetlight struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Point returns the lamp position.
func (s Streetlight) Point() orb.Point { return orb.Point{s.X, s.Y} }

// LightCount returns how many streetlights a road of the given length gets
// between intersections of zones zu and zv.
func LightCount(distance float64, zu, zv network.Zone) int {
	factor := 1.0
	has := func(z network.Zone) bool { return zu == z || zv == z }
	switch {
	case has(network.ZoneIndustrial):
		factor = 0.8
	case has(network.ZoneCommercial):
		factor = 1.5
	case has(network.ZonePark):
		factor = 0.5
	}
	return max(1, int(distance*factor*2))
}

// PlaceStreetlights spaces each road's lights evenly along its segment,
// offset to the left of the direction of travel.
func PlaceStreetlights(net *network.Network) []Streetlight {
	var lights []Streetlight
	for _, r := range net.Roads() {
		u, _ := net.Intersection(r.From)
		v, _ := net.Intersection(r.To)
		count := LightCount(r.Distance, u.Zone, v.Zone)

		seg := orb.LineString{u.Pos, v.Pos}
		length := planar.Length(seg)
		if length == 0 {
			continue
		}
		dx, dy := v.Pos.X()-u.Pos.X(), v.Pos.Y()-u.Pos.Y()
		ox, oy := -dy/length*lightOffset, dx/length*lightOffset

		for i := 1; i <= count; i++ {
			t := float64(i) / float64(count+1)
			lights = append(lights, Streetlight{
				From: r.From,
				To:   r.To,
				X:    u.Pos.X() + t*dx + ox,
				Y:    u.Pos.Y() + t*dy + oy,
			})
		}
	}
	return lights
}

// ExportStreetlights writes lights as an indented JSON array.
func ExportStreetlights(lights []Streetlight, path string) error {
	if lights == nil {
		lights = []Streetlight{}
	}
	data, err := json.MarshalIndent(lights, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding streetlights: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing streetlights: %w", err)
	}
	return nil
}

// LoadStreetlights reads a file written by ExportStreetlights.
func LoadStreetlights(path string) ([]Streetlight, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading streetlights: %w", err)
	}
	var lights []Streetlight
	if err := json.Unmarshal(data, &lights); err != nil {
		return nil, fmt.Errorf("parsing streetlights %s: %w", path, err)
	}
	return lights, nil
}
