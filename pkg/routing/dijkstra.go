package routing

import (
	"container/heap"
	"math"
)

type arc struct {
	to     int
	weight float64
}

// shortestPaths runs Dijkstra from src over adj. prev[v] is the predecessor of
// v on its shortest path, or -1 for src and unreachable nodes.
func shortestPaths(adj [][]arc, src int) ([]float64, []int) {
	dist := make([]float64, len(adj))
	prev := make([]int, len(adj))
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[src] = 0

	done := make([]bool, len(adj))
	pq := &priorityQueue{}
	heap.Push(pq, item{node: src, priority: 0})

	for pq.Len() > 0 {
		u := heap.Pop(pq).(item).node
		if done[u] {
			continue
		}
		done[u] = true
		for _, a := range adj[u] {
			alt := dist[u] + a.weight
			if alt < dist[a.to] {
				dist[a.to] = alt
				prev[a.to] = u
				heap.Push(pq, item{node: a.to, priority: alt})
			}
		}
	}
	return dist, prev
}

type item struct {
	node     int
	priority float64
}

// priorityQueue is a min-heap on priority; ties pop the lower node index
// first so that equal-cost paths resolve the same way on every run.
type priorityQueue []item

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority == pq[j].priority {
		return pq[i].node < pq[j].node
	}
	return pq[i].priority < pq[j].priority
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)   { *pq = append(*pq, x.(item)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	*pq = old[:n-1]
	return it
}
