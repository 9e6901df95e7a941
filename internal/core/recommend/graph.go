// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package recommend

import "github.com/taibuivan/libris/internal/core/book"

// Edge weights of the similarity graph.
const (
	CategoryWeight = 0.5
	AuthorWeight   = 1.0
)

// Edge is a weighted link to a neighbouring book.
type Edge struct {
	To     string
	Weight float64
}

// Graph is an undirected weighted similarity graph over book ids.
//
// Neighbour lists keep the order in which edges were first created, which
// makes traversal order reproducible: category edges (groups in order of first
// appearance) come before author edges. A later, heavier edge between the same
// pair raises the weight in place without moving it.
type Graph struct {
	adjacency map[string][]Edge
	position  map[string]map[string]int
}

// newGraph creates an empty graph.
func newGraph() *Graph {
	return &Graph{
		adjacency: make(map[string][]Edge),
		position:  make(map[string]map[string]int),
	}
}

/*
BuildGraph links books that share a category token (weight 0.5) or an
identical, non-empty authors string (weight 1.0).

Description: Every book becomes a node even without edges. All category
groups are linked before any author group. Self-loops are never created.
*/
func BuildGraph(books []*book.Book) *Graph {
	graph := newGraph()

	categories := newGroups()
	authors := newGroups()

	for _, b := range books {
		graph.addNode(b.ID)
		for _, category := range b.CategoryList() {
			categories.add(category, b.ID)
		}
		if b.Authors != "" {
			authors.add(b.Authors, b.ID)
		}
	}

	categories.link(graph, CategoryWeight)
	authors.link(graph, AuthorWeight)

	return graph
}

// Has reports whether id is a node.
func (graph *Graph) Has(id string) bool {
	_, ok := graph.adjacency[id]
	return ok
}

// Len returns the number of nodes.
func (graph *Graph) Len() int {
	return len(graph.adjacency)
}

// Neighbors returns the edges of id in creation order.
func (graph *Graph) Neighbors(id string) []Edge {
	return graph.adjacency[id]
}

// Weight returns the weight of the edge between a and b.
func (graph *Graph) Weight(a, b string) (float64, bool) {
	i, ok := graph.position[a][b]
	if !ok {
		return 0, false
	}
	return graph.adjacency[a][i].Weight, true
}

/*
Traverse runs a breadth-first expansion from seed.

Description: A book is collected the first time it is discovered. Books at
depth maxDepth are collected but not expanded. Collection stops once
maxResults books are found. The seed is never part of the result.

Returns:
  - []string: Book ids in discovery order; empty for an unknown or isolated seed
*/
func (graph *Graph) Traverse(seed string, maxDepth, maxResults int) []string {
	results := make([]string, 0)
	if !graph.Has(seed) || maxResults <= 0 {
		return results
	}

	type visit struct {
		id    string
		depth int
	}

	visited := map[string]struct{}{seed: {}}
	queue := []visit{{id: seed}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		for _, edge := range graph.adjacency[current.id] {
			if _, seen := visited[edge.To]; seen {
				continue
			}
			visited[edge.To] = struct{}{}
			results = append(results, edge.To)

			if len(results) == maxResults {
				return results
			}
			queue = append(queue, visit{id: edge.To, depth: current.depth + 1})
		}
	}

	return results
}

func (graph *Graph) addNode(id string) {
	if _, ok := graph.adjacency[id]; ok {
		return
	}
	graph.adjacency[id] = nil
	graph.position[id] = make(map[string]int)
}

// addEdge links a and b in both directions, keeping the larger weight.
func (graph *Graph) addEdge(a, b string, weight float64) {
	if a == b {
		return
	}
	graph.addHalf(a, b, weight)
	graph.addHalf(b, a, weight)
}

func (graph *Graph) addHalf(from, to string, weight float64) {
	if i, ok := graph.position[from][to]; ok {
		graph.adjacency[from][i].Weight = max(graph.adjacency[from][i].Weight, weight)
		return
	}
	graph.position[from][to] = len(graph.adjacency[from])
	graph.adjacency[from] = append(graph.adjacency[from], Edge{To: to, Weight: weight})
}

// groups collects ids per key, remembering the order keys first appeared.
type groups struct {
	order   []string
	members map[string][]string
}

func newGroups() *groups {
	return &groups{members: make(map[string][]string)}
}

func (g *groups) add(key, id string) {
	if _, ok := g.members[key]; !ok {
		g.order = append(g.order, key)
	}
	g.members[key] = append(g.members[key], id)
}

// link adds an edge between every pair of ids sharing a key.
func (g *groups) link(graph *Graph, weight float64) {
	for _, key := range g.order {
		ids := g.members[key]
		for i := 0; i < len(ids)-1; i++ {
			for _, other := range ids[i+1:] {
				graph.addEdge(ids[i], other, weight)
			}
		}
	}
}
