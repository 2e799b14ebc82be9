package network

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ChicagoDave/citytraffic/pkg/validation"
)

// Document is the node-link representation exchanged with the graph provider.
type Document struct {
	Directed bool      `json:"directed" yaml:"directed"`
	Nodes    []NodeDoc `json:"nodes" yaml:"nodes"`
	Links    []LinkDoc `json:"links" yaml:"links"`
}

// NodeDoc is one intersection in a Document.
type NodeDoc struct {
	ID                string    `json:"id" yaml:"id"`
	Zone              string    `json:"zone" yaml:"zone"`
	TrafficLight      bool      `json:"traffic_light" yaml:"traffic_light"`
	TrafficLightDelay float64   `json:"traffic_light_delay" yaml:"traffic_light_delay"`
	Pos               []float64 `json:"pos,omitempty" yaml:"pos,omitempty"`
}

// LinkDoc is one directed road in a Document. Capacity and Delay are pointers
// so that an omitted attribute can be told apart from an explicit zero.
type LinkDoc struct {
	Source   string   `json:"source" yaml:"source"`
	Target   string   `json:"target" yaml:"target"`
	Distance float64  `json:"distance" yaml:"distance"`
	RoadType string   `json:"road_type" yaml:"road_type"`
	Capacity *int     `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	Delay    *float64 `json:"delay,omitempty" yaml:"delay,omitempty"`
	Weight   float64  `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Load reads a node-link document from path. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
func Load(path string) (*Network, *validation.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading network file: %w", err)
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("parsing network file %s: %w", path, err)
	}
	return FromDocument(doc)
}

// FromDocument converts a Document into a Network. Missing capacity and delay
// attributes are replaced by DefaultCapacity and DefaultDelay; every replacement
// is recorded as a warning on the returned report. Structural problems are
// returned as errors.
func FromDocument(doc Document) (*Network, *validation.Report, error) {
	report := validation.NewReport()

	intersections := make([]Intersection, 0, len(doc.Nodes))
	for i, nd := range doc.Nodes {
		zone := Zone(nd.Zone)
		if nd.Zone == "" {
			zone = ZoneResidential
			report.AddWarning(validation.Result{
				Level:    validation.LevelNetwork,
				Message:  fmt.Sprintf("intersection %s has no zone; treating it as residential", nd.ID),
				SpecPath: fmt.Sprintf("nodes[%d].zone", i),
			})
		} else if !zone.Valid() {
			return nil, report, fmt.Errorf("intersection %s: unknown zone %q", nd.ID, nd.Zone)
		}
		if nd.TrafficLightDelay < 0 || math.IsNaN(nd.TrafficLightDelay) {
			return nil, report, fmt.Errorf("intersection %s: traffic_light_delay must be >= 0", nd.ID)
		}
		in := Intersection{
			ID:                nd.ID,
			Zone:              zone,
			TrafficLight:      nd.TrafficLight,
			TrafficLightDelay: nd.TrafficLightDelay,
		}
		if len(nd.Pos) == 2 {
			in.Pos = orb.Point{nd.Pos[0], nd.Pos[1]}
		}
		intersections = append(intersections, in)
	}

	defaulted := 0
	roads := make([]Road, 0, len(doc.Links))
	for i, ld := range doc.Links {
		r := Road{
			From:     ld.Source,
			To:       ld.Target,
			Distance: ld.Distance,
			Type:     RoadType(ld.RoadType),
			Capacity: DefaultCapacity,
			Delay:    DefaultDelay,
		}
		var missing []string
		if ld.Capacity != nil {
			r.Capacity = *ld.Capacity
		} else {
			missing = append(missing, fmt.Sprintf("capacity=%d", DefaultCapacity))
		}
		if ld.Delay != nil {
			r.Delay = *ld.Delay
		} else {
			missing = append(missing, fmt.Sprintf("delay=%g", DefaultDelay))
		}
		if len(missing) > 0 {
			defaulted++
			report.AddWarning(validation.Result{
				Level:       validation.LevelNetwork,
				Message:     fmt.Sprintf("road %s→%s is missing attributes; defaulted %s", r.From, r.To, strings.Join(missing, ", ")),
				SpecPath:    fmt.Sprintf("links[%d]", i),
				Suggestions: []string{"Supply capacity and delay for every road from the graph provider"},
			})
		}
		roads = append(roads, r)
	}
	if defaulted > 0 {
		log.WithField("roads", defaulted).Warn("applied default road attributes")
	}

	n, err := New(intersections, roads)
	if err != nil {
		return nil, report, err
	}

	report.AddInfo(validation.Result{
		Level:   validation.LevelNetwork,
		Message: fmt.Sprintf("loaded %d intersections and %d roads", n.Len(), len(n.Roads())),
	})
	return n, report, nil
}

// ToDocument converts the network into its node-link representation.
func (n *Network) ToDocument() Document {
	doc := Document{
		Directed: true,
		Nodes:    make([]NodeDoc, 0, len(n.intersections)),
		Links:    make([]LinkDoc, 0, len(n.roads)),
	}
	for _, in := range n.intersections {
		doc.Nodes = append(doc.Nodes, NodeDoc{
			ID:                in.ID,
			Zone:              string(in.Zone),
			TrafficLight:      in.TrafficLight,
			TrafficLightDelay: in.TrafficLightDelay,
			Pos:               []float64{in.Pos.X(), in.Pos.Y()},
		})
	}
	for _, r := range n.roads {
		capacity, delay := r.Capacity, r.Delay
		doc.Links = append(doc.Links, LinkDoc{
			Source:   r.From,
			Target:   r.To,
			Distance: r.Distance,
			RoadType: string(r.Type),
			Capacity: &capacity,
			Delay:    &delay,
			Weight:   r.Weight(),
		})
	}
	return doc
}

// Export writes the network as an indented node-link JSON document.
func Export(n *Network, path string) error {
	data, err := json.MarshalIndent(n.ToDocument(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding network: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing network file: %w", err)
	}
	return nil
}
