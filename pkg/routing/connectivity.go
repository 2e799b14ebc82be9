package routing

// Connectivity summarizes which ordered pairs of distinct intersections are
// joined by at least one directed path.
type Connectivity struct {
	Pairs       int `json:"pairs"`
	Reachable   int `json:"reachable"`
	Unreachable int `json:"unreachable"`
	// Sinks have no outgoing path to any other intersection.
	Sinks []string `json:"sinks,omitempty"`
	// Sources cannot be reached from any other intersection.
	Sources []string `json:"sources,omitempty"`
}

// Connected reports whether every ordered pair is reachable.
func (c Connectivity) Connected() bool { return c.Unreachable == 0 }

// Connectivity walks the path table and counts reachable pairs.
func (idx *Index) Connectivity() Connectivity {
	n := len(idx.ids)
	c := Connectivity{Pairs: n * (n - 1)}
	inbound := make([]int, n)
	for s := range idx.ids {
		out := 0
		for d, p := range idx.paths[s] {
			if d == s || p == nil {
				continue
			}
			out++
			inbound[d]++
		}
		c.Reachable += out
		if out == 0 && n > 1 {
			c.Sinks = append(c.Sinks, idx.ids[s])
		}
	}
	for d, in := range inbound {
		if in == 0 && n > 1 {
			c.Sources = append(c.Sources, idx.ids[d])
		}
	}
	c.Unreachable = c.Pairs - c.Reachable
	return c
}
