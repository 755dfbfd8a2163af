package confkit

import (
	"os"
	"path/filepath"
)

const maxWalkDepth = 8

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}

// walkUp visits start and its ancestors, stopping when visit returns true
// or the filesystem root is reached.
func walkUp(start string, visit func(dir string) bool) {
	dir := start
	for i := 0; i < maxWalkDepth; i++ {
		if visit(dir) {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func isRepoRoot(dir string) bool {
	return fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git"))
}
