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

// Package memo implements a duplicate-suppressing cache for the result
// of an arbitrarily expensive keyed computation: each key's compute
// function runs at most once, and every other caller for that key
// observes the same cached result (including a cached error).
//
// This generalizes the caching loader that wrapped a Bazel package
// loader one level higher, as a generic table over any comparable key,
// since the classpath Env (classenv) and the constant evaluator both
// need the same "compute once, remember forever" shape: decoded
// classpath entries and folded field constants.
package memo

import "sync"

// Table is a cache from K to the result of computing a V (or an error)
// for that key. Unlike the loader it is modeled on, Table is
// synchronous by construction: the binder pipeline runs its stages on
// a single goroutine per compilation (stages are ordered; there is no
// concurrent demand for the same key from two goroutines within one
// Compile call), so Get never blocks on another goroutine's in-flight
// computation. The mutex below only protects the map itself, guarding
// against incidental concurrent use (for example, two independent
// Compile calls sharing a classpath Table) rather than against
// concurrent recomputation of the same key.
type Table[K comparable, V any] struct {
	mu    sync.Mutex
	cache map[K]entry[V]
}

type entry[V any] struct {
	value V
	err   error
}

// NewTable returns an empty Table.
func NewTable[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{cache: make(map[K]entry[V])}
}

// Get returns the cached result for key, computing it with compute and
// caching the result (value or error) if this is the first request for
// key. A cached error is returned again on every subsequent Get for
// the same key without recomputation, matching the "poisoned cache
// entry" behavior of the loader this is grounded on.
func (t *Table[K, V]) Get(key K, compute func() (V, error)) (V, error) {
	t.mu.Lock()
	if e, ok := t.cache[key]; ok {
		t.mu.Unlock()
		return e.value, e.err
	}
	t.mu.Unlock()

	v, err := compute()

	t.mu.Lock()
	t.cache[key] = entry[V]{value: v, err: err}
	t.mu.Unlock()
	return v, err
}

// Peek returns the cached value for key without computing it, and
// reports whether an entry exists.
func (t *Table[K, V]) Peek(key K) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.cache[key]
	var zero V
	if !ok {
		return zero, false
	}
	return e.value, true
}

// Len reports the number of cached entries.
func (t *Table[K, V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cache)
}
