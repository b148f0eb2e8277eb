package analyzer

import (
	"strings"
)

// ExtractImports pulls imported module names out of source content so
// the import-graph sub-score has something to match against. Only Go
// and JS/TS files are parsed; other extensions yield nil.
func ExtractImports(content, ext string) []string {
	switch strings.ToLower(ext) {
	case ".go":
		return goImports(content)
	case ".js", ".jsx", ".ts", ".tsx":
		return jsImports(content)
	default:
		return nil
	}
}

func goImports(content string) []string {
	var imports []string
	inBlock := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "import ("):
			inBlock = true
		case inBlock && line == ")":
			inBlock = false
		case inBlock:
			if p := quotedPath(line); p != "" {
				imports = append(imports, p)
			}
		case strings.HasPrefix(line, "import "):
			if p := quotedPath(strings.TrimPrefix(line, "import ")); p != "" {
				imports = append(imports, p)
			}
		}
	}
	return imports
}

func jsImports(content string) []string {
	var imports []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "import ") && !strings.Contains(line, "require(") {
			continue
		}
		if p := quotedPath(line); p != "" {
			imports = append(imports, p)
		}
	}
	return imports
}

// quotedPath returns the first single- or double-quoted string in line.
func quotedPath(line string) string {
	for _, q := range []string{`"`, `'`} {
		start := strings.Index(line, q)
		if start < 0 {
			continue
		}
		rest := line[start+1:]
		end := strings.Index(rest, q)
		if end < 0 {
			continue
		}
		return rest[:end]
	}
	return ""
}
