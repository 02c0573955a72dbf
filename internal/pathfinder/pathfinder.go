// Package pathfinder answers the two route queries the Planner needs:
// where a bot should extend its track (build search) and how a bot's
// train should move across track it already owns (move search),
// spec.md §4.4. Grounded on the teacher's internal/game pathing helpers
// for project requirement lookups, generalized here into a proper
// graph search since the teacher's own domain never needed one.
package pathfinder

import (
	"container/heap"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/topology"
)

// Pathfinder runs build and move searches over a Topology.
type Pathfinder struct {
	topo *topology.Topology
}

// New constructs a Pathfinder bound to topo.
func New(topo *topology.Topology) *Pathfinder {
	return &Pathfinder{topo: topo}
}

type pqItem struct {
	node model.Coord
	cost int
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].cost < pq[j].cost }
func (pq priorityQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)        { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// BuildSearch runs a multi-source Dijkstra seeded at every node of the
// bot's owned track graph (or virtualStart if the bot owns no track
// yet), expanding only through legal new edges, and returns the new
// segments to append: the prefix of the best-reaching path that fits
// within budget and maxSegments (spec.md §4.4).
func (pf *Pathfinder) BuildSearch(snap *snapshot.WorldSnapshot, virtualStart *model.Coord, budget, maxSegments int) ([]model.TrackSegment, error) {
	ownGraph := snap.OwnGraph()
	ownEdges := ownEdgeSet(snap.OwnSegments())

	dist := make(map[model.Coord]int)
	parent := make(map[model.Coord]model.Coord)
	visited := make(map[model.Coord]bool)

	pq := &priorityQueue{}
	heap.Init(pq)

	seeded := false
	for node := range ownGraph {
		dist[node] = 0
		heap.Push(pq, pqItem{node: node, cost: 0})
		seeded = true
	}
	if !seeded && virtualStart != nil {
		dist[*virtualStart] = 0
		heap.Push(pq, pqItem{node: *virtualStart, cost: 0})
	}

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if visited[item.node] {
			continue
		}
		visited[item.node] = true

		for _, neighbor := range pf.topo.Neighbors(item.node) {
			point, ok := pf.topo.Point(neighbor)
			if !ok {
				continue
			}
			if pf.topo.SameMajorCityGroup(item.node, neighbor) {
				continue // illegal: both endpoints in same major-city group
			}

			edgeCost := 0
			if !isOwnedEdge(ownEdges, item.node, neighbor) {
				cost, finite := topology.TerrainCost(point.Terrain)
				if !finite {
					continue // water is unreachable
				}
				edgeCost = cost
			}

			newDist := dist[item.node] + edgeCost
			if newDist > budget {
				continue
			}
			if existing, ok := dist[neighbor]; !ok || newDist < existing {
				dist[neighbor] = newDist
				parent[neighbor] = item.node
				heap.Push(pq, pqItem{node: neighbor, cost: newDist})
			}
		}
	}

	var bestNode model.Coord
	bestNewSegments := -1
	bestCost := 0
	found := false
	for node, cost := range dist {
		if _, isSeed := ownGraph[node]; isSeed {
			continue
		}
		if virtualStart != nil && node == *virtualStart {
			continue // the search origin itself is not a build target
		}
		path := reconstructPath(parent, ownGraph, node)
		newCount := countNewSegments(path, ownEdges)
		if newCount == 0 {
			continue
		}
		if newCount > bestNewSegments || (newCount == bestNewSegments && cost < bestCost) {
			bestNode = node
			bestNewSegments = newCount
			bestCost = cost
			found = true
		}
	}
	if !found {
		return nil, nil
	}

	path := reconstructPath(parent, ownGraph, bestNode)
	return pathToSegments(path, dist, ownEdges, budget, maxSegments), nil
}

// reconstructPath walks parent pointers from target back to a seed
// (any node already in ownGraph, or the sole entry with no parent),
// returning the path from seed to target in forward order.
func reconstructPath(parent map[model.Coord]model.Coord, ownGraph map[model.Coord][]model.Coord, target model.Coord) []model.Coord {
	var reversed []model.Coord
	node := target
	for {
		reversed = append(reversed, node)
		p, ok := parent[node]
		if !ok {
			break
		}
		if _, isSeed := ownGraph[node]; isSeed {
			break
		}
		node = p
	}
	out := make([]model.Coord, len(reversed))
	for i, n := range reversed {
		out[len(reversed)-1-i] = n
	}
	return out
}

func countNewSegments(path []model.Coord, ownEdges map[edgeKey]bool) int {
	n := 0
	for i := 0; i+1 < len(path); i++ {
		if !isOwnedEdge(ownEdges, path[i], path[i+1]) {
			n++
		}
	}
	return n
}

// pathToSegments emits the prefix of path's new edges that fits within
// budget and maxSegments (spec.md §4.4). Per-edge cost is recovered from
// the Dijkstra distance labels: dist[b]-dist[a], which the relaxation
// step guarantees holds exactly along any parent-chain edge.
func pathToSegments(path []model.Coord, dist map[model.Coord]int, ownEdges map[edgeKey]bool, budget, maxSegments int) []model.TrackSegment {
	var out []model.TrackSegment
	cumulativeCost := 0
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		if isOwnedEdge(ownEdges, a, b) {
			continue
		}
		cost := dist[b] - dist[a]
		if len(out) >= maxSegments || cumulativeCost+cost > budget {
			break
		}
		out = append(out, model.TrackSegment{A: a, B: b, Cost: cost})
		cumulativeCost += cost
	}
	return out
}

// edgeKey is a comparable, order-independent identity for an edge,
// mirroring model.TrackSegment.CanonicalKey's tie-break.
type edgeKey struct{ A, B model.Coord }

func ownEdgeSet(segments []model.TrackSegment) map[edgeKey]bool {
	set := make(map[edgeKey]bool, len(segments))
	for _, seg := range segments {
		a, b := seg.CanonicalKey()
		set[edgeKey{A: a, B: b}] = true
	}
	return set
}

func isOwnedEdge(ownEdges map[edgeKey]bool, a, b model.Coord) bool {
	ca, cb := (model.TrackSegment{A: a, B: b}).CanonicalKey()
	return ownEdges[edgeKey{A: ca, B: cb}]
}

// MoveSearch runs a BFS over the bot's owned adjacency graph from the
// current position to target, bounded by remainingMovement mileposts,
// returning the shortest path inclusive of both endpoints (spec.md
// §4.4). ok is false if target is unreachable within the movement
// budget.
func (pf *Pathfinder) MoveSearch(snap *snapshot.WorldSnapshot, target model.Coord, remainingMovement int) (path []model.Coord, ok bool) {
	start := snap.Position()
	if start == nil {
		return nil, false
	}
	graph := snap.OwnGraph()

	type queueEntry struct {
		node model.Coord
		path []model.Coord
	}
	visited := map[model.Coord]bool{*start: true}
	queue := []queueEntry{{node: *start, path: []model.Coord{*start}}}

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]
		if entry.node == target {
			return entry.path, true
		}
		if len(entry.path)-1 >= remainingMovement {
			continue
		}
		for _, next := range graph[entry.node] {
			if visited[next] {
				continue
			}
			visited[next] = true
			nextPath := append(append([]model.Coord(nil), entry.path...), next)
			queue = append(queue, queueEntry{node: next, path: nextPath})
		}
	}
	return nil, false
}
