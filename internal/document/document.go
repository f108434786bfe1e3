// Package document is the load/save boundary for the tracker's
// persisted JSON documents.
package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Validator is implemented by documents that can check and repair
// themselves. Validate returns false when the document had to change
// during repair; the caller should then write it back out.
type Validator interface {
	Validate() bool
}

// Read loads the JSON document at path into doc and validates it. The
// returned flag is Validate's verdict: false means the repaired
// document differs from what is on disk.
func Read(path string, doc Validator) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read document: %w", err)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return false, fmt.Errorf("parse document %s: %w", filepath.Base(path), err)
	}
	return doc.Validate(), nil
}

// Write validates doc and stores it at path as indented JSON,
// creating the parent directory if needed. The document lands in a
// temporary file first and is renamed into place, so a crash mid-write
// never truncates an existing save.
func Write(path string, doc Validator) error {
	doc.Validate()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create document directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary document: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temporary document: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("set document permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
