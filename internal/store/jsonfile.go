// Package store provides storage backends for GiftRoulette.
//
// This file implements the JSON file store for the concealed assignment set.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mroldan/giftroulette/internal/models"
)

// RequiredExtension is the only accepted assignment file extension.
const RequiredExtension = ".json"

// assignmentDocument is the on-disk shape: one field holding an ordered
// sequence of [giver, hashed_recipient] rows.
type assignmentDocument struct {
	Pairings [][]string `json:"pairings"`
}

// JSONFileStore writes the concealed assignment set as pretty-printed
// JSON to a fixed path. The path is validated at construction so a bad
// output location fails before any pairing work happens.
type JSONFileStore struct {
	path string
}

// Compile-time check that JSONFileStore implements AssignmentStore.
var _ AssignmentStore = (*JSONFileStore)(nil)

// NewJSONFileStore creates a store targeting path. The path must end in
// ".json"; anything else is a configuration error.
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no extension", models.ErrBadStorePath, path)
	}
	if !strings.EqualFold(ext, RequiredExtension) {
		return nil, fmt.Errorf("%w: got %q", models.ErrBadStorePath, ext)
	}
	slog.Debug("JSONFileStore created", "path", path)
	return &JSONFileStore{path: path}, nil
}

// Path returns the target file path.
func (s *JSONFileStore) Path() string {
	return s.path
}

// Save writes the assignment set, truncating any existing file. Writes go
// through a buffered writer and are fully flushed before Save returns, so
// a partial write is never observable as success.
func (s *JSONFileStore) Save(set models.AssignmentSet) error {
	doc := assignmentDocument{Pairings: set.Rows()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		slog.Error("JSONFileStore.Save: encoding failed", "error", err)
		return fmt.Errorf("encode assignment set: %w", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		slog.Error("JSONFileStore.Save: create failed", "error", err, "path", s.path)
		return fmt.Errorf("create assignment file %s: %w", s.path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write assignment file %s: %w", s.path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush assignment file %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync assignment file %s: %w", s.path, err)
	}

	slog.Debug("JSONFileStore.Save succeeded", "path", s.path, "pairs", len(doc.Pairings))
	return nil
}

// Load reads the assignment file back into an AssignmentSet. Rows that do
// not have exactly two columns are rejected.
func (s *JSONFileStore) Load() (models.AssignmentSet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.AssignmentSet{}, fmt.Errorf("read assignment file %s: %w", s.path, err)
	}

	var doc assignmentDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.AssignmentSet{}, fmt.Errorf("decode assignment file %s: %w", s.path, err)
	}

	pairings := make([]models.Pairing, 0, len(doc.Pairings))
	for i, row := range doc.Pairings {
		if len(row) != 2 {
			return models.AssignmentSet{}, fmt.Errorf("decode assignment file %s: row %d has %d columns, want 2", s.path, i, len(row))
		}
		pairings = append(pairings, models.Pairing{Giver: row[0], Recipient: row[1]})
	}
	return models.AssignmentSet{Pairings: pairings}, nil
}
