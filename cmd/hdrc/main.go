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

// The hdrc command runs the header-compiler pipeline over a set of
// already-parsed compilation units, emitting API-only class files and
// (optionally) a module-info.class, plus the classpath classes the
// compiled output transitively depends on.
//
// hdrc does not itself parse Java source: a compilation unit is
// supplied as its JSON-encoded tree.CompilationUnit, the narrow
// interface this module consumes (see package tree). A front end that
// does parse source is expected to produce these on hdrc's behalf.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gojvm/hdrc/binder"
	"github.com/gojvm/hdrc/classenv"
	"github.com/gojvm/hdrc/cli"
	"github.com/gojvm/hdrc/color"
	"github.com/gojvm/hdrc/tree"
	"github.com/gojvm/hdrc/vlog"
)

var (
	classpath       = flag.String("classpath", "", "colon-separated list of directories and jars making up the classpath")
	outDir          = flag.String("d", ".", "directory to write compiled class files into")
	release         = flag.String("release", "17", "target class-file version, as a Java release number")
	modulePackages  = flag.String("module-packages", "", "comma-separated package list for the ModulePackages attribute")
	moduleMainClass = flag.String("module-main-class", "", "binary name recorded as the module's main class")
	cpuprofile      = flag.String("cpuprofile", "", "write a CPU profile to this file")
	vlevel          = flag.Int("v", 0, "verbose logging level")
	useColor        = flag.Bool("color", true, "colorize diagnostic output")
)

func main() {
	flag.Parse()
	vlog.Level = *vlevel
	color.Enabled = *useColor && *cpuprofile == "" // profiling runs are typically redirected to a file; keep that output plain

	stopProfiler := cli.StartProfiler(*cpuprofile)
	defer stopProfiler()

	args := flag.Args()
	if len(args) == 0 {
		log.Fatalln("Must provide at least one JSON-encoded compilation unit.")
	}

	units := make([]*tree.CompilationUnit, 0, len(args))
	for _, path := range args {
		cu, err := loadUnit(path)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		units = append(units, cu)
	}

	sources, err := buildClasspath(*classpath)
	if err != nil {
		log.Fatalf("building classpath: %v", err)
	}

	var pkgs []string
	if *modulePackages != "" {
		pkgs = strings.Split(*modulePackages, ",")
	}

	result, err := binder.Compile(binder.Config{
		Units:           units,
		Classpath:       sources,
		Release:         *release,
		ModulePackages:  pkgs,
		ModuleMainClass: *moduleMainClass,
	})
	if err != nil {
		log.Fatalf("compile failed: %v", err)
	}

	reportDiagnostics(result)
	if err := writeOutput(*outDir, result); err != nil {
		log.Fatalf("writing output: %v", err)
	}

	if hasErrors(result) {
		os.Exit(1)
	}
}

func loadUnit(path string) (*tree.CompilationUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cu tree.CompilationUnit
	if err := json.Unmarshal(data, &cu); err != nil {
		return nil, err
	}
	if cu.Path == "" {
		cu.Path = path
	}
	return &cu, nil
}

// buildClasspath turns a colon-separated list of directories and jars
// into classenv.Sources: a directory becomes a DirSource, a file
// ending in .jar becomes a JarSource.
func buildClasspath(cp string) ([]classenv.Source, error) {
	if cp == "" {
		return nil, nil
	}
	var sources []classenv.Source
	for _, entry := range strings.Split(cp, ":") {
		if entry == "" {
			continue
		}
		info, err := os.Stat(entry)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			sources = append(sources, &classenv.DirSource{Root: entry})
			continue
		}
		if strings.HasSuffix(entry, ".jar") {
			sources = append(sources, classenv.NewJarSource(entry))
			continue
		}
		return nil, &unsupportedClasspathEntryError{entry}
	}
	return sources, nil
}

type unsupportedClasspathEntryError struct{ entry string }

func (e *unsupportedClasspathEntryError) Error() string {
	return "classpath entry is neither a directory nor a .jar file: " + e.entry
}

// reportDiagnostics prints every diagnostic hdrc accumulated, with the
// source file in bold and the diagnostic kind in bold magenta before
// the message body.
func reportDiagnostics(result *binder.Result) {
	for _, d := range result.Diagnostics {
		if d.File == "" {
			log.Printf("%s: %s", color.BoldMagenta(d.Kind.String()), d.Msg)
			continue
		}
		pos := color.Bold(d.File)
		log.Printf("%s:%d:%d: %s: %s", pos, d.Pos.Line, d.Pos.Col, color.BoldMagenta(d.Kind.String()), d.Msg)
	}
}

func hasErrors(result *binder.Result) bool {
	return len(result.Diagnostics) > 0
}

// writeOutput writes every compiled class, the transitive classpath
// dependencies, and module-info.class (if any) under dir, converting
// each binary name into its nested directory layout the way a
// directory-based classpath Source expects to find it again.
func writeOutput(dir string, result *binder.Result) error {
	for name, data := range result.Classes {
		if err := writeClassFile(dir, name, data); err != nil {
			return err
		}
	}
	for name, data := range result.TransitiveDeps {
		if err := writeClassFile(dir, name, data); err != nil {
			return err
		}
	}
	if result.ModuleInfo != nil {
		if err := writeClassFile(dir, "module-info", result.ModuleInfo); err != nil {
			return err
		}
	}
	return nil
}

func writeClassFile(dir, binaryName string, data []byte) error {
	path := filepath.Join(dir, filepath.FromSlash(binaryName)+".class")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
