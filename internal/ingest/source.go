// Package ingest turns the raw wiki-markup sources and user addenda
// into catalog records. The scanners are deliberately heuristic: they
// pull the handful of fields the tracker needs out of hand-edited
// table markup, skip what they cannot read and report it, and never
// fail a whole source over one bad line.
package ingest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

// Source is one named block of raw lines for the scanners.
type Source struct {
	Name  string
	Lines []string
}

// ReadSource loads the file at path into a Source named after its
// base name.
func ReadSource(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	src := &Source{Name: filepath.Base(path)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		src.Lines = append(src.Lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read source %s: %w", src.Name, err)
	}
	return src, nil
}

// ParsedRecord pairs a sanitized catalog key with the record a
// scanner produced for it.
type ParsedRecord struct {
	Key    string
	Record *spirit.Record
}

// Warning describes one non-fatal problem found while ingesting a
// source.
type Warning struct {
	Source string
	Line   int // 1-based, 0 when not tied to a line
	Msg    string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", w.Source, w.Line, w.Msg)
	}
	return fmt.Sprintf("%s: %s", w.Source, w.Msg)
}
