package orchestrator

import (
	"fmt"
	"sort"

	"github.com/mehdi-bk/stevedore/internal/planner"
)

// buildWaves partitions steps into execution waves by graph depth: wave 0
// holds steps with no dependencies, wave k holds steps whose dependencies
// all lie in earlier waves. Steps inside a wave have no relative order.
// Returns a CyclicDependencyError if the graph has a cycle.
func buildWaves(steps []planner.Step) ([][]planner.Step, error) {
	byID := make(map[string]planner.Step, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
	}
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if _, ok := byID[dep]; !ok {
				return nil, fmt.Errorf("step %q depends on unknown step %q", s.ID, dep)
			}
		}
	}

	depth := make(map[string]int, len(steps))
	assigned := 0

	// Peel off zero-indegree layers until nothing moves; leftovers form a
	// cycle.
	for assigned < len(steps) {
		progressed := false
		for _, s := range steps {
			if _, done := depth[s.ID]; done {
				continue
			}
			level := 0
			ready := true
			for _, dep := range s.DependsOn {
				d, done := depth[dep]
				if !done {
					ready = false
					break
				}
				if d+1 > level {
					level = d + 1
				}
			}
			if ready {
				depth[s.ID] = level
				assigned++
				progressed = true
			}
		}
		if !progressed {
			var stuck []string
			for _, s := range steps {
				if _, done := depth[s.ID]; !done {
					stuck = append(stuck, s.ID)
				}
			}
			sort.Strings(stuck)
			return nil, &planner.CyclicDependencyError{Steps: stuck}
		}
	}

	maxDepth := 0
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}

	waves := make([][]planner.Step, maxDepth+1)
	for _, s := range steps {
		d := depth[s.ID]
		waves[d] = append(waves[d], s)
	}
	return waves, nil
}
