package subway

import (
	"container/heap"
	"fmt"
)

// Path is the result of a shortest path query
type Path struct {
	Stations []Station
	Distance int
}

type edge struct {
	to     int64
	weight int
}

// PathFinder answers shortest path queries over a snapshot of the network.
// Every segment becomes one directed edge up -> down; parallel edges from
// different lines are kept.
type PathFinder struct {
	stations map[int64]Station
	edges    map[int64][]edge
	edgeN    int
}

// NewPathFinder builds the network graph from the current segments of all lines
func NewPathFinder(lines []*Line) *PathFinder {
	f := &PathFinder{
		stations: make(map[int64]Station),
		edges:    make(map[int64][]edge),
	}
	for _, line := range lines {
		if line == nil || line.Segments == nil {
			continue
		}
		for _, seg := range line.Segments.Segments() {
			f.addEdge(seg)
		}
	}
	return f
}

func (f *PathFinder) addEdge(seg Segment) {
	f.stations[seg.Up.ID] = seg.Up
	f.stations[seg.Down.ID] = seg.Down
	f.edges[seg.Up.ID] = append(f.edges[seg.Up.ID], edge{to: seg.Down.ID, weight: seg.Distance})
	f.edgeN++
}

// VertexCount returns the number of distinct stations in the graph
func (f *PathFinder) VertexCount() int {
	return len(f.stations)
}

// EdgeCount returns the number of segments in the graph
func (f *PathFinder) EdgeCount() int {
	return f.edgeN
}

// ShortestPath returns the minimum-distance path from source to target
func (f *PathFinder) ShortestPath(source, target Station) (Path, error) {
	if source.ID == target.ID {
		return Path{}, fmt.Errorf("%w: station %d", ErrSameStation, source.ID)
	}
	if _, ok := f.stations[source.ID]; !ok {
		return Path{}, fmt.Errorf("%w: station %d is not on any line", ErrNoPath, source.ID)
	}
	if _, ok := f.stations[target.ID]; !ok {
		return Path{}, fmt.Errorf("%w: station %d is not on any line", ErrNoPath, target.ID)
	}

	dist := map[int64]int{source.ID: 0}
	prev := make(map[int64]int64)
	done := make(map[int64]bool)

	pq := &queue{}
	heap.Push(pq, &queueItem{station: source.ID, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*queueItem)
		if done[item.station] {
			continue
		}
		done[item.station] = true
		if item.station == target.ID {
			break
		}

		for _, e := range f.edges[item.station] {
			if done[e.to] {
				continue
			}
			next := item.dist + e.weight
			if cur, seen := dist[e.to]; seen && cur <= next {
				continue
			}
			dist[e.to] = next
			prev[e.to] = item.station
			heap.Push(pq, &queueItem{station: e.to, dist: next})
		}
	}

	total, ok := dist[target.ID]
	if !ok {
		return Path{}, fmt.Errorf("%w: %d -> %d", ErrNoPath, source.ID, target.ID)
	}

	var reversed []Station
	for id := target.ID; ; id = prev[id] {
		reversed = append(reversed, f.stations[id])
		if id == source.ID {
			break
		}
	}

	stations := make([]Station, len(reversed))
	for i, st := range reversed {
		stations[len(reversed)-1-i] = st
	}

	return Path{Stations: stations, Distance: total}, nil
}

type queueItem struct {
	station int64
	dist    int
}

// queue is a min-heap on distance
type queue []*queueItem

func (q queue) Len() int            { return len(q) }
func (q queue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q queue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x interface{}) { *q = append(*q, x.(*queueItem)) }
func (q *queue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
