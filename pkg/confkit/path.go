package confkit

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ProjectRoot locates the repository root by walking upwards from this
// source file until a directory with go.mod or .git is found. When the
// walk fails it falls back to the current working directory.
func ProjectRoot() (string, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		var root string
		walkUp(filepath.Dir(file), func(dir string) bool {
			if isRepoRoot(dir) {
				root = dir
				return true
			}
			return false
		})
		if root != "" {
			return root, nil
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	return wd, nil
}

// ProjectPath joins the repository root with the provided relative path.
func ProjectPath(rel string) (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// MustProjectPath returns ProjectPath(rel) and panics on failure.
func MustProjectPath(rel string) string {
	p, err := ProjectPath(rel)
	if err != nil {
		panic(err)
	}
	return p
}
