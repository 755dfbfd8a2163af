// Package confkit holds small helpers shared by the configuration layer:
// path resolution relative to the main config file, dotenv loading, and
// hydration of sub-config sections stored in their own files.
package confkit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeromicro/go-zero/core/conf"
)

// ResolvePath expands environment variables in file and resolves it against
// base. Absolute paths are returned as-is after expansion.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir returns the directory of the main config file path.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}

// LoadFile loads a configuration file into a value of type T using go-zero's
// conf loader, optionally expanding ${VAR} references from the environment.
func LoadFile[T any](path string, useEnv bool) (*T, error) {
	var cfg T
	var opts []conf.Option
	if useEnv {
		opts = append(opts, conf.UseEnv())
	}
	if err := conf.Load(path, &cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// Section is a piece of configuration kept in its own file. The main config
// names the file; Hydrate loads it lazily with a caller-supplied loader.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate resolves the File field against base, loads it with loader, and
// records both the resolved path and the parsed value. A Section with no
// File is left empty.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return err
	}
	s.File, s.Value = p, v
	return nil
}
