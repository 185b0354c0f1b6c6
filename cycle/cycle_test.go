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

package cycle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGuardEnterLeave(t *testing.T) {
	g := NewGuard[string]()

	if already := g.Enter("C"); already {
		t.Fatalf("Enter(C) already = true on first entry")
	}
	if already := g.Enter("D"); already {
		t.Fatalf("Enter(D) already = true on first entry")
	}
	g.Leave("D")
	if already := g.Enter("D"); already {
		t.Fatalf("Enter(D) already = true after Leave")
	}
	g.Leave("D")
	g.Leave("C")

	if got := g.Stack(); len(got) != 0 {
		t.Errorf("Stack() = %v, want empty after all Leave calls", got)
	}
}

func TestGuardDetectsReentrancy(t *testing.T) {
	g := NewGuard[string]()
	g.Enter("C")
	defer g.Leave("C")
	g.Enter("D")
	defer g.Leave("D")

	if already := g.Enter("C"); !already {
		t.Errorf("Enter(C) already = false, want true for class C extends D extends C")
	}
}

func TestGuardStackOrder(t *testing.T) {
	g := NewGuard[string]()
	g.Enter("A")
	g.Enter("B")
	g.Enter("C")

	want := []string{"A", "B", "C"}
	if diff := cmp.Diff(want, g.Stack()); diff != "" {
		t.Errorf("Stack() mismatch (-want +got):\n%s", diff)
	}

	g.Leave("B")
	want = []string{"A", "C"}
	if diff := cmp.Diff(want, g.Stack()); diff != "" {
		t.Errorf("Stack() after Leave(B) mismatch (-want +got):\n%s", diff)
	}
}
