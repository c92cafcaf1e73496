package resolve

import (
	"slices"
	"strings"

	"github.com/th3gh0s8/aura/pkg/errors"
)

// BuildOrder computes a tiered build plan for a finished build set.
//
// The result is a sequence of groups: every group's packages depend only
// on packages in earlier groups (considering only dependencies that are
// themselves in the build set -- official and satisfied dependencies are
// irrelevant to ordering), so each group can be built in parallel once its
// predecessors are installed. Groups are maximal: a package lands in the
// earliest group its dependencies allow. Names within a group are sorted
// for deterministic output.
//
// A dependency cycle among the buildables leaves nodes that can never be
// placed; BuildOrder reports them in a DEPENDENCY_CYCLE error instead of
// looping or silently dropping them.
func BuildOrder(toBuild []Buildable) ([][]string, error) {
	members := make(map[string]bool, len(toBuild))
	for _, b := range toBuild {
		members[b.Name] = true
	}

	// In-degree counts and reverse edges, restricted to the build set.
	inDegree := make(map[string]int, len(toBuild))
	dependents := make(map[string][]string)
	for _, b := range toBuild {
		inDegree[b.Name] += 0
		for _, dep := range b.Deps {
			if dep == b.Name || !members[dep] {
				continue
			}
			inDegree[b.Name]++
			dependents[dep] = append(dependents[dep], b.Name)
		}
	}

	var ready []string
	for name, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}

	var plan [][]string
	placed := 0
	for len(ready) > 0 {
		slices.Sort(ready)
		plan = append(plan, ready)
		placed += len(ready)

		var next []string
		for _, name := range ready {
			for _, dependent := range dependents[name] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		ready = next
	}

	if placed < len(inDegree) {
		var stuck []string
		for name, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		slices.Sort(stuck)
		return nil, errors.New(errors.ErrCodeDependencyCycle,
			"dependency cycle among buildable packages: %s", strings.Join(stuck, ", "))
	}

	return plan, nil
}
