// Package catalog loads YAML catalog files, validates them, and provides a
// fast-lookup registry with atomic pointer swap. The catalog is read-only
// for the life of the process; the engine never mutates it.
package catalog

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

// Loader scans directories for YAML catalog files, parses them, and computes
// SHA-256 checksums.
type Loader struct{}

// NewLoader creates a new catalog Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadAll recursively scans directories for *.yaml and *.yml files and
// parses each into a CatalogDocument.
func (l *Loader) LoadAll(directories []string) ([]model.CatalogDocument, error) {
	var docs []model.CatalogDocument

	for _, dir := range directories {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".yaml" && ext != ".yml" {
				return nil
			}

			doc, err := l.LoadFile(path)
			if err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
			docs = append(docs, doc)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning directory %s: %w", dir, err)
		}
	}

	return docs, nil
}

// LoadFile loads and parses a single YAML catalog file. It computes the
// SHA-256 checksum and records the source file path.
func (l *Loader) LoadFile(path string) (model.CatalogDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.CatalogDocument{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc model.CatalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.CatalogDocument{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	doc.Checksum = fmt.Sprintf("%x", sha256.Sum256(data))
	doc.SourceFile = path

	return doc, nil
}
