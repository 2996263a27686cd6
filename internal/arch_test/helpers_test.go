package arch_test

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const modulePath = "github.com/PinjariAbdul/smart-task-analyser"

// sourceFile is one parsed Go file of the module.
type sourceFile struct {
	// rel is the slash-separated path from the repository root.
	rel string
	// pkg is the directory under internal/, or "cmd".
	pkg   string
	test  bool
	lines int
	node  *ast.File
	fset  *token.FileSet
}

// imports returns the file's import paths.
func (f sourceFile) imports() []string {
	paths := make([]string, 0, len(f.node.Imports))
	for _, imp := range f.node.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}

// line returns the line of pos within the file.
func (f sourceFile) line(pos token.Pos) int {
	return f.fset.Position(pos).Line
}

var (
	parseOnce   sync.Once
	parsedFiles []sourceFile
	parseErr    error
)

// moduleFiles parses every Go file under internal/ and cmd/ once per test
// binary. The arch_test directory itself is skipped.
func moduleFiles(t *testing.T) []sourceFile {
	t.Helper()
	parseOnce.Do(func() {
		parsedFiles, parseErr = parseModule()
	})
	if parseErr != nil {
		t.Fatalf("parsing module: %v", parseErr)
	}
	return parsedFiles
}

func parseModule() ([]sourceFile, error) {
	root, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		return nil, err
	}

	var files []sourceFile
	fset := token.NewFileSet()
	for _, top := range []string{"internal", "cmd"} {
		err := filepath.WalkDir(filepath.Join(root, top), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "arch_test" {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".go") {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			node, err := parser.ParseFile(fset, path, data, parser.ParseComments)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			files = append(files, sourceFile{
				rel:   rel,
				pkg:   packageOf(rel),
				test:  strings.HasSuffix(path, "_test.go"),
				lines: bytes.Count(data, []byte("\n")),
				node:  node,
				fset:  fset,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	return files, nil
}

// packageOf maps "internal/task/task.go" to "task" and anything under cmd/
// to "cmd".
func packageOf(rel string) string {
	parts := strings.Split(rel, "/")
	if parts[0] == "internal" && len(parts) > 2 {
		return parts[1]
	}
	return parts[0]
}

// internalPackages lists the packages under internal/ that hold production code.
func internalPackages(t *testing.T) []string {
	t.Helper()
	seen := make(map[string]bool)
	for _, f := range moduleFiles(t) {
		if strings.HasPrefix(f.rel, "internal/") && !f.test {
			seen[f.pkg] = true
		}
	}
	pkgs := make([]string, 0, len(seen))
	for p := range seen {
		pkgs = append(pkgs, p)
	}
	sort.Strings(pkgs)
	return pkgs
}

// productionFiles returns the non-test files of the internal packages.
func productionFiles(t *testing.T) []sourceFile {
	t.Helper()
	var out []sourceFile
	for _, f := range moduleFiles(t) {
		if strings.HasPrefix(f.rel, "internal/") && !f.test {
			out = append(out, f)
		}
	}
	return out
}

// internalTarget reports which internal package an import path names.
func internalTarget(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, modulePath+"/internal/")
	if !ok {
		return "", false
	}
	pkg, _, _ := strings.Cut(rest, "/")
	return pkg, true
}
