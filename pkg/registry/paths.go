package registry

import (
	"os"
	"path/filepath"
	"strings"
)

var resolveExtensions = []string{"ts", "tsx", "js", "jsx"}

// ResolveImportPath maps a relative import in fromFile to a source file.
// Candidates are the module path with each extension, then index files.
// When nothing exists yet a speculative `.ts` path is returned so registry
// keys still line up once that file is collected. Bare module imports are
// not resolved.
func ResolveImportPath(fromFile, module string, exists func(string) bool) (string, bool) {
	if !strings.HasPrefix(module, ".") {
		return "", false
	}
	if exists == nil {
		exists = fileExists
	}

	base := filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(module))
	if ext := strings.TrimPrefix(filepath.Ext(base), "."); isResolveExt(ext) && exists(base) {
		return base, true
	}
	for _, ext := range resolveExtensions {
		if p := base + "." + ext; exists(p) {
			return p, true
		}
	}
	for _, ext := range resolveExtensions {
		if p := filepath.Join(base, "index."+ext); exists(p) {
			return p, true
		}
	}
	return base + ".ts", true
}

func isResolveExt(ext string) bool {
	for _, e := range resolveExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ExistsIn returns an existence check that consults known files first and
// falls back to the filesystem.
func ExistsIn(known map[string]bool) func(string) bool {
	return func(path string) bool {
		if known[path] {
			return true
		}
		return fileExists(path)
	}
}
