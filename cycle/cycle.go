// Copyright 2018 The Jadep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cycle detects re-entrant binding, generalizing a plain graph
// DFS into a reusable re-entrancy guard: instead of walking a
// pre-built adjacency map, each binder stage calls Enter right before
// it starts resolving a key and Leave when it is done, so the "graph"
// being searched is the call stack of binder recursion itself rather
// than data assembled up front.
package cycle

// Guard tracks which keys are currently being resolved, on the
// current call stack, so a binder can detect when resolving a key
// requires resolving that same key again. The hierarchy binder and the
// constant evaluator each keep one.
type Guard[K comparable] struct {
	inProgress map[K]bool
	order      []K
}

// NewGuard returns an empty Guard.
func NewGuard[K comparable]() *Guard[K] {
	return &Guard[K]{inProgress: make(map[K]bool)}
}

// Enter reports whether key is already being resolved higher up the
// current call stack. If not, it marks key in-progress and the caller
// must call Leave(key) when it finishes (typically via defer).
func (g *Guard[K]) Enter(key K) (alreadyInProgress bool) {
	if g.inProgress[key] {
		return true
	}
	g.inProgress[key] = true
	g.order = append(g.order, key)
	return false
}

// Leave clears key's in-progress marker.
func (g *Guard[K]) Leave(key K) {
	delete(g.inProgress, key)
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Stack returns the keys currently in progress, outermost first,
// suitable for reporting the cycle a CyclicHierarchy diagnostic found.
func (g *Guard[K]) Stack() []K {
	out := make([]K, len(g.order))
	copy(out, g.order)
	return out
}
