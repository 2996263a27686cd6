package arch_test

import (
	"slices"
	"strings"
	"testing"
)

// layers assigns each internal package to a layer. A package may import
// packages of its own layer or below.
var layers = map[string]int{
	"task":      0,
	"telemetry": 0,

	"dag": 1,

	"priority": 2,

	"analysis": 3,

	"batchfile": 4,
	"config":    4,

	"server": 5,
	"ui":     5,
}

// engine is the pure analysis core: records in, ranked results out.
var engine = []string{"task", "dag", "priority", "analysis"}

// edgeLibraries maps an import path prefix to the only packages allowed to
// import it. The engine reaches transport, CLI, config files and terminals
// through these packages alone.
var edgeLibraries = map[string][]string{
	"github.com/gofiber/fiber":          {"server"},
	"github.com/spf13/cobra":            {"cmd"},
	"github.com/spf13/viper":            {"config", "cmd"},
	"github.com/spf13/afero":            {"batchfile", "cmd"},
	"github.com/fsnotify/fsnotify":      {"batchfile", "cmd"},
	"github.com/charmbracelet/lipgloss": {"ui"},
	"github.com/goccy/go-yaml":          {"batchfile"},
	"github.com/pelletier/go-toml":      {"batchfile"},
	"github.com/go-logr/stdr":           {"cmd"},
	"github.com/sourcegraph/conc":       {"cmd"},
}

// engineForbiddenStdlib are standard packages that would give the engine
// side effects beyond its logger and telemetry emitter.
var engineForbiddenStdlib = []string{"os", "os/signal", "io/fs", "net", "net/http", "bufio"}

func TestDependencyLayering(t *testing.T) {
	t.Parallel()

	for _, f := range productionFiles(t) {
		from, ok := layers[f.pkg]
		if !ok {
			continue
		}
		for _, imp := range f.imports() {
			to, ok := internalTarget(imp)
			if !ok {
				continue
			}
			if layers[to] > from {
				t.Errorf("%s: %s (layer %d) imports %s (layer %d)", f.rel, f.pkg, from, to, layers[to])
			}
		}
	}
}

func TestEveryPackageHasALayer(t *testing.T) {
	t.Parallel()

	for _, pkg := range internalPackages(t) {
		if _, ok := layers[pkg]; !ok {
			t.Errorf("package %s has no layer; add it to the layers map", pkg)
		}
	}
	for pkg := range layers {
		if !slices.Contains(internalPackages(t), pkg) {
			t.Errorf("layers lists %s, which no longer exists", pkg)
		}
	}
}

func TestEdgeLibrariesStayAtTheEdge(t *testing.T) {
	t.Parallel()

	for _, f := range moduleFiles(t) {
		if f.test {
			continue
		}
		for _, imp := range f.imports() {
			for prefix, allowed := range edgeLibraries {
				if strings.HasPrefix(imp, prefix) && !slices.Contains(allowed, f.pkg) {
					t.Errorf("%s: %s imports %s; only %v may", f.rel, f.pkg, imp, allowed)
				}
			}
		}
	}
}

func TestEngineHasNoSideChannels(t *testing.T) {
	t.Parallel()

	for _, f := range productionFiles(t) {
		if !slices.Contains(engine, f.pkg) {
			continue
		}
		for _, imp := range f.imports() {
			if slices.Contains(engineForbiddenStdlib, imp) {
				t.Errorf("%s: engine package %s imports %s", f.rel, f.pkg, imp)
			}
		}
	}
}

func TestNothingImportsCmd(t *testing.T) {
	t.Parallel()

	for _, f := range productionFiles(t) {
		for _, imp := range f.imports() {
			if imp == modulePath+"/cmd" || strings.HasPrefix(imp, modulePath+"/cmd/") {
				t.Errorf("%s imports %s", f.rel, imp)
			}
		}
	}
}
