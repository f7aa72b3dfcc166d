//go:build integration
// +build integration

package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/louisbranch/ratinglab"

// The simulation core stays import-free of reporting, persistence, and
// transports so a run never depends on where its output goes.
func TestSimulationCoreDoesNotImportOuterLayers(t *testing.T) {
	config := &packages.Config{
		Mode:  packages.NeedName | packages.NeedImports,
		Tests: false,
		Dir:   integrationRepoRoot(t),
	}
	pkgs, err := packages.Load(config, simulationCorePatterns()...)
	if err != nil {
		t.Fatalf("load simulation core packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("simulation core package load errors")
	}
	if len(pkgs) == 0 {
		t.Fatal("simulation core packages not found")
	}

	forbidden := []string{
		modulePath + "/internal/report",
		modulePath + "/internal/simulation/storage",
		modulePath + "/internal/observability",
		modulePath + "/internal/mcp",
		modulePath + "/internal/scenario",
		modulePath + "/internal/cmd",
	}

	var violations []string
	for _, pkg := range pkgs {
		for importPath := range pkg.Imports {
			for _, prefix := range forbidden {
				if importPath == prefix || strings.HasPrefix(importPath, prefix+"/") {
					violations = append(violations, pkg.PkgPath+" imports "+importPath)
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("simulation core must not depend on reporting, storage, or transports:\n- %s", strings.Join(violations, "\n- "))
	}
}

func TestSimulationCoreGuardrailScope(t *testing.T) {
	patterns := simulationCorePatterns()
	if len(patterns) == 0 {
		t.Fatal("expected at least one package pattern")
	}
	found := false
	for _, pattern := range patterns {
		if pattern == "./internal/simulation" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected scan scope to include ./internal/simulation, got %v", patterns)
	}
}

func simulationCorePatterns() []string {
	return []string{
		"./internal/rating",
		"./internal/simulation",
		"./internal/simulation/domain",
		"./internal/simulation/matchmaking",
	}
}

func integrationRepoRoot(t *testing.T) string {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("get working dir: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			t.Fatal("go.mod not found")
		}
		wd = parent
	}
}
