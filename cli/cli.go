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

// Package cli provides utilities shared by hdrc's command-line front ends.
package cli

import (
	"log"
	"os"
	"runtime/pprof"
)

// StartProfiler starts CPU profiling and writes the output to outFile.
// An empty outFile disables profiling and StartProfiler is a no-op.
func StartProfiler(outFile string) (stopProfiler func()) {
	if outFile == "" {
		return func() {}
	}
	f, err := os.Create(outFile)
	if err != nil {
		log.Fatal(err)
	}
	pprof.StartCPUProfile(f)
	return pprof.StopCPUProfile
}
