// Package deps validates the task dependency graph and derives blocked state.
//
// The graph is never stored. Each call rebuilds an adjacency map from the
// depends_on sets of the snapshot it is given.
package deps

import (
	"github.com/fentz26/todo/internal/models"
)

// Graph maps a task id to the ids it depends on, in stored order.
type Graph map[string][]string

// Build computes the adjacency map of a task collection.
func Build(tasks []models.Task) Graph {
	g := make(Graph, len(tasks))
	for i := range tasks {
		g[tasks[i].ID] = tasks[i].DependsOn
	}
	return g
}

// PathTo returns the edge path from start to target following depends_on,
// or nil if target is unreachable. The search is depth-first and visits
// edges in stored order, so the witness is deterministic.
func (g Graph) PathTo(start, target string) []string {
	visited := make(map[string]bool, len(g))
	var path []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		path = append(path, id)
		if id == target {
			return true
		}
		for _, next := range g[id] {
			if visited[next] {
				continue
			}
			if dfs(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if dfs(start) {
		return path
	}
	return nil
}

// FindCycle returns one cycle present in the collection, or nil.
// Used to audit documents edited outside the tool.
func FindCycle(tasks []models.Task) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	g := Build(tasks)
	color := make(map[string]int, len(tasks))
	parent := make(map[string]string, len(tasks))
	var cycle []string

	var dfs func(u string) bool
	dfs = func(u string) bool {
		color[u] = gray
		for _, v := range g[u] {
			if _, known := g[v]; !known {
				continue
			}
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back-edge u -> v closes v ... u -> v.
				rev := []string{v, u}
				for cur := u; cur != v; {
					cur = parent[cur]
					rev = append(rev, cur)
				}
				for i := len(rev) - 1; i >= 0; i-- {
					cycle = append(cycle, rev[i])
				}
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range tasks {
		if color[tasks[i].ID] != white {
			continue
		}
		if dfs(tasks[i].ID) {
			break
		}
	}
	return cycle
}
