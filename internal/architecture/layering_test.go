package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePath = "agentcoach/internal/"

// importsOf walks dir and calls check with every non-test file and its module-local imports.
func importsOf(t *testing.T, dir string, check func(file string, imports []string)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		var local []string
		for _, imp := range node.Imports {
			if p := strings.Trim(imp.Path.Value, `"`); strings.HasPrefix(p, modulePath) {
				local = append(local, p)
			}
		}
		check(filepath.ToSlash(path), local)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
}

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	importsOf(t, filepath.Join("..", "modules"), func(file string, imports []string) {
		module := moduleName(file)
		layer := detectLayer(file)
		if module == "" || layer == "" {
			return
		}
		for _, importPath := range imports {
			if !strings.Contains(importPath, "/internal/modules/") {
				continue
			}
			if violatesLayerRule(module, layer, importPath) {
				t.Errorf("forbidden import in %s (%s): %s", file, layer, importPath)
			}
		}
	})
}

func TestOuterPackagesStayOutward(t *testing.T) {
	t.Parallel()
	cases := []struct {
		dir       string
		forbidden []string
	}{
		{dir: "platform", forbidden: []string{"modules/", "ui/", "bootstrap"}},
		{dir: "modules", forbidden: []string{"ui/", "bootstrap"}},
		// Views talk to modules through dto and port types only.
		{dir: "ui", forbidden: []string{"bootstrap", "/service", "/usecase", "/adapter/"}},
	}
	for _, tc := range cases {
		importsOf(t, filepath.Join("..", tc.dir), func(file string, imports []string) {
			for _, importPath := range imports {
				rel := strings.TrimPrefix(importPath, modulePath)
				for _, bad := range tc.forbidden {
					if strings.Contains(rel, bad) {
						t.Errorf("%s must not import %s", file, importPath)
					}
				}
			}
		})
	}
}

func moduleName(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" {
			return parts[i+1]
		}
	}
	return ""
}

func detectLayer(path string) string {
	for _, layer := range []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"} {
		if strings.Contains(path, "/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func isPortIn(path string) bool {
	return strings.Contains(path, "/port/in/") || strings.HasSuffix(path, "/port/in")
}

func isDTO(path string) bool {
	return strings.Contains(path, "/dto/") || strings.HasSuffix(path, "/dto")
}

func isDomain(path string) bool {
	return strings.HasSuffix(path, "/domain")
}

// violatesLayerRule allows another module only through its port/in and dto packages,
// plus its domain types from this module's domain and port/out.
func violatesLayerRule(module, layer, importPath string) bool {
	sameModule := strings.Contains(importPath, "/internal/modules/"+module+"/")
	if !sameModule {
		switch {
		case isPortIn(importPath) || isDTO(importPath):
			return false
		case isDomain(importPath):
			return layer != "domain" && layer != "port/out"
		default:
			return true
		}
	}

	switch layer {
	case "adapter/in":
		return !isPortIn(importPath) && !isDTO(importPath)
	case "usecase":
		return strings.Contains(importPath, "/adapter/")
	case "service":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/")
	case "domain":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/") || strings.Contains(importPath, "/service/")
	default:
		return false
	}
}
