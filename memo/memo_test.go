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

package memo

import (
	"errors"
	"testing"
)

func TestTableComputesOnce(t *testing.T) {
	table := NewTable[string, int]()
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := table.Get("a", compute)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if v != 42 {
			t.Fatalf("Get() = %d, want 42", v)
		}
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestTableCachesErrors(t *testing.T) {
	table := NewTable[string, int]()
	wantErr := errors.New("boom")
	calls := 0
	compute := func() (int, error) {
		calls++
		return 0, wantErr
	}

	if _, err := table.Get("k", compute); err != wantErr {
		t.Fatalf("first Get() error = %v, want %v", err, wantErr)
	}
	if _, err := table.Get("k", compute); err != wantErr {
		t.Fatalf("second Get() error = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1 (error should be cached)", calls)
	}
}

func TestTableKeysAreIndependent(t *testing.T) {
	table := NewTable[string, int]()
	table.Get("a", func() (int, error) { return 1, nil })
	table.Get("b", func() (int, error) { return 2, nil })

	va, _ := table.Get("a", func() (int, error) { return 99, nil })
	vb, _ := table.Get("b", func() (int, error) { return 99, nil })
	if va != 1 || vb != 2 {
		t.Errorf("Get(a)=%d, Get(b)=%d, want 1, 2", va, vb)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestTablePeek(t *testing.T) {
	table := NewTable[string, int]()
	if _, ok := table.Peek("missing"); ok {
		t.Errorf("Peek(missing) ok = true, want false")
	}

	table.Get("present", func() (int, error) { return 7, nil })
	v, ok := table.Peek("present")
	if !ok || v != 7 {
		t.Errorf("Peek(present) = %d, %v, want 7, true", v, ok)
	}
}
