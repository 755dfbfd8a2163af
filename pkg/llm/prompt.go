package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

// PromptTemplate is a text/template loaded from disk. It tracks a sha256
// digest of the file contents so callers can record which prompt revision
// produced a given decision.
type PromptTemplate struct {
	path  string
	funcs template.FuncMap

	mu   sync.RWMutex
	tmpl *template.Template
	hash string
}

// NewPromptTemplate parses the template at path with the given function map.
func NewPromptTemplate(path string, funcs template.FuncMap) (*PromptTemplate, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("prompt template path is empty")
	}
	t := &PromptTemplate{
		path:  path,
		funcs: funcs,
	}
	if err := t.reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Render executes the template against data. Missing keys are errors.
func (t *PromptTemplate) Render(data any) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.tmpl == nil {
		return "", fmt.Errorf("prompt template %q not parsed", t.path)
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", t.path, err)
	}
	return buf.String(), nil
}

// Reload reparses the template from disk, picking up edits made since load.
func (t *PromptTemplate) Reload() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reload()
}

func (t *PromptTemplate) reload() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("read prompt template %q: %w", t.path, err)
	}

	name := filepath.Base(t.path)
	tmpl := template.New(name).Option("missingkey=error")
	if len(t.funcs) > 0 {
		tmpl = tmpl.Funcs(t.funcs)
	}
	if _, err := tmpl.Parse(string(data)); err != nil {
		return fmt.Errorf("parse prompt template %q: %w", t.path, err)
	}

	t.tmpl = tmpl
	t.hash = computeDigest(data)
	return nil
}

// Digest returns the sha256 hash of the template content.
func (t *PromptTemplate) Digest() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hash
}

func computeDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
