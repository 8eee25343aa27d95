package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Import-boundary linter for the contexts/ tree. Run with
// `go run scripts/check_boundaries.go` from the repository root.
//
// Rules enforced:
//   - a service never imports another service's packages
//   - domain and application layers never import adapters or
//     runtime infrastructure (internal/, integrations/, platform/)
//   - inner layers stay inside an explicit per-layer allowlist

const modulePath = "loom"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerAllowlist maps an inner layer to the service-relative package
// suffixes it may import. Layers absent from the map (ports, adapters,
// transport) are unrestricted beyond the cross-service rule.
var layerAllowlist = map[string][]string{
	"domain":      {"domain"},
	"application": {"application", "domain", "ports"},
}

var infrastructurePrefixes = []string{
	modulePath + "/internal/",
	modulePath + "/integrations/",
	modulePath + "/platform/",
}

func main() {
	violations := lintTree("contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Import < b.Import
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func lintTree(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		normalized := filepath.ToSlash(path)
		parts := strings.Split(normalized, "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}

		service := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[1], parts[2])
		violations = append(violations, lintFile(path, normalized, parts[3], service)...)
		return nil
	})

	return violations
}

func lintFile(path string, normalized string, layer string, service string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalized, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line

		if strings.HasPrefix(importPath, modulePath+"/contexts/") && !underPrefix(importPath, service) {
			violations = append(violations, violation{
				File: normalized, Line: line, Import: importPath,
				Rule: "cross-module imports are forbidden",
			})
		}

		allowlist, restricted := layerAllowlist[layer]
		if !restricted {
			continue
		}
		violations = append(violations, lintInnerImport(normalized, line, importPath, layer, service, allowlist)...)
	}
	return violations
}

func lintInnerImport(file string, line int, importPath string, layer string, service string, allowlist []string) []violation {
	var violations []violation

	if strings.Contains(importPath, "/adapters/") {
		violations = append(violations, violation{
			File: file, Line: line, Import: importPath,
			Rule: layer + " must not import adapters",
		})
	}

	for _, prefix := range infrastructurePrefixes {
		if strings.HasPrefix(importPath, prefix) {
			violations = append(violations, violation{
				File: file, Line: line, Import: importPath,
				Rule: layer + " must not import runtime infrastructure",
			})
			break
		}
	}

	if !isStdlib(importPath) && !allowed(importPath, service, allowlist) {
		violations = append(violations, violation{
			File: file, Line: line, Import: importPath,
			Rule: layer + " import is outside explicit allowlist",
		})
	}

	return violations
}

func allowed(importPath string, service string, allowlist []string) bool {
	for _, suffix := range allowlist {
		if underPrefix(importPath, service+"/"+suffix) {
			return true
		}
	}
	return false
}

func underPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isStdlib(importPath string) bool {
	if strings.HasPrefix(importPath, modulePath+"/") {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
