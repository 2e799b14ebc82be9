// Package routing precomputes shortest paths over the road network and
// serves them to the simulation.
//
// The index runs Dijkstra from every intersection once, using each road's
// static weight (distance + delay), and keeps the resulting all-pairs table.
// It is read-only after Build and safe for concurrent lookups.
package routing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ChicagoDave/citytraffic/pkg/network"
)

// ErrNoPath is returned by Lookup when no directed chain of roads connects
// the two intersections.
var ErrNoPath = errors.New("no path")

// PathSeparator joins intersection ids when a path is rendered as text.
const PathSeparator = "→"

// Path is an ordered list of intersection ids, origin first.
type Path []string

// Hops returns the number of roads on the path.
func (p Path) Hops() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// String renders the path as arrow-joined ids.
func (p Path) String() string { return strings.Join(p, PathSeparator) }

// Index is the all-pairs shortest path table of a network.
type Index struct {
	net   *network.Network
	ids   []string
	pos   map[string]int
	paths [][]Path    // paths[src][dst]; nil when unreachable
	dist  [][]float64 // summed routing weight; +Inf when unreachable
}

// Build computes the index for net.
func Build(net *network.Network) *Index {
	idx, _ := BuildContext(context.Background(), net)
	return idx
}

// BuildContext computes the index, running one Dijkstra per intersection on a
// bounded set of goroutines. It returns early with ctx.Err() if ctx is done.
func BuildContext(ctx context.Context, net *network.Network) (*Index, error) {
	ids := net.IDs()
	idx := &Index{
		net:   net,
		ids:   ids,
		pos:   make(map[string]int, len(ids)),
		paths: make([][]Path, len(ids)),
		dist:  make([][]float64, len(ids)),
	}
	for i, id := range ids {
		idx.pos[id] = i
	}

	adj := make([][]arc, len(ids))
	for _, r := range net.Roads() {
		u := idx.pos[r.From]
		adj[u] = append(adj[u], arc{to: idx.pos[r.To], weight: r.Weight()})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for src := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dist, prev := shortestPaths(adj, src)
			idx.dist[src] = dist
			idx.paths[src] = idx.materialize(src, dist, prev)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return idx, nil
}

// materialize turns a predecessor tree into explicit paths.
func (idx *Index) materialize(src int, dist []float64, prev []int) []Path {
	row := make([]Path, len(idx.ids))
	for dst := range idx.ids {
		if math.IsInf(dist[dst], 1) {
			continue
		}
		n := 1
		for v := dst; v != src; v = prev[v] {
			n++
		}
		p := make(Path, n)
		for v, i := dst, n-1; i >= 0; i-- {
			p[i] = idx.ids[v]
			if v != src {
				v = prev[v]
			}
		}
		row[dst] = p
	}
	return row
}

// Network returns the network the index was built from.
func (idx *Index) Network() *network.Network { return idx.net }

// Lookup returns the shortest path from origin to destination. The path from
// an intersection to itself is the single-node path.
func (idx *Index) Lookup(origin, destination string) (Path, error) {
	s, d, err := idx.positions(origin, destination)
	if err != nil {
		return nil, err
	}
	p := idx.paths[s][d]
	if p == nil {
		return nil, fmt.Errorf("%w from %q to %q", ErrNoPath, origin, destination)
	}
	return p, nil
}

// Distance returns the summed routing weight of the shortest path.
func (idx *Index) Distance(origin, destination string) (float64, error) {
	s, d, err := idx.positions(origin, destination)
	if err != nil {
		return 0, err
	}
	if math.IsInf(idx.dist[s][d], 1) {
		return 0, fmt.Errorf("%w from %q to %q", ErrNoPath, origin, destination)
	}
	return idx.dist[s][d], nil
}

// Within returns, in network order, every intersection other than origin whose
// shortest path from origin has at most maxHops roads.
func (idx *Index) Within(origin string, maxHops int) []string {
	s, ok := idx.pos[origin]
	if !ok {
		return nil
	}
	var out []string
	for d, p := range idx.paths[s] {
		if d == s || p == nil || p.Hops() > maxHops {
			continue
		}
		out = append(out, idx.ids[d])
	}
	return out
}

func (idx *Index) positions(origin, destination string) (int, int, error) {
	s, ok := idx.pos[origin]
	if !ok {
		return 0, 0, fmt.Errorf("origin: %w %q", network.ErrUnknownIntersection, origin)
	}
	d, ok := idx.pos[destination]
	if !ok {
		return 0, 0, fmt.Errorf("destination: %w %q", network.ErrUnknownIntersection, destination)
	}
	return s, d, nil
}
