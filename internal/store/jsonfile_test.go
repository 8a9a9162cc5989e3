package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mroldan/giftroulette/internal/models"
)

func TestNewJSONFileStoreExtensionValidation(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"json extension", "out/assignments.json", false},
		{"uppercase json", "assignments.JSON", false},
		{"txt extension", "assignments.txt", true},
		{"db extension", "assignments.db", true},
		{"no extension", "assignments", true},
		{"trailing dot only", "assignments.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJSONFileStore(tt.path)
			if tt.wantErr {
				if !errors.Is(err, models.ErrBadStorePath) {
					t.Errorf("NewJSONFileStore(%q) error = %v, want %v", tt.path, err, models.ErrBadStorePath)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBadExtensionFailsBeforeTouchingFilesystem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assignments.txt")

	if _, err := NewJSONFileStore(path); err == nil {
		t.Fatal("expected construction error for .txt path")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("construction touched the filesystem")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignments.json")
	st, err := NewJSONFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set := models.AssignmentSet{Pairings: []models.Pairing{
		{Giver: "Alice", Recipient: "$2a$10$fakehashA"},
		{Giver: "Bob", Recipient: "$2a$10$fakehashB"},
		{Giver: "Carol", Recipient: "$2a$10$fakehashC"},
	}}
	if err := st.Save(set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := st.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Len() != set.Len() {
		t.Fatalf("loaded %d pairs, want %d", loaded.Len(), set.Len())
	}
	for i, p := range loaded.Pairings {
		if p != set.Pairings[i] {
			t.Errorf("pair %d = %+v, want %+v", i, p, set.Pairings[i])
		}
	}
}

func TestSaveWritesPrettyPrintedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignments.json")
	st, err := NewJSONFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set := models.AssignmentSet{Pairings: []models.Pairing{
		{Giver: "Alice", Recipient: "hashed"},
	}}
	if err := st.Save(set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "\"pairings\"") {
		t.Error("document missing top-level pairings field")
	}
	if !strings.Contains(content, "\n  ") {
		t.Error("document is not pretty-printed")
	}
}

func TestSaveOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignments.json")
	if err := os.WriteFile(path, []byte("stale content"), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st, err := NewJSONFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set := models.AssignmentSet{Pairings: []models.Pairing{{Giver: "Alice", Recipient: "hashed"}}}
	if err := st.Save(set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := st.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Len() != 1 || loaded.Pairings[0].Giver != "Alice" {
		t.Errorf("overwrite produced unexpected content: %+v", loaded)
	}
}

func TestSaveFailsOnUnwritablePath(t *testing.T) {
	st, err := NewJSONFileStore(filepath.Join(t.TempDir(), "missing", "assignments.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set := models.AssignmentSet{Pairings: []models.Pairing{{Giver: "Alice", Recipient: "hashed"}}}
	if err := st.Save(set); err == nil {
		t.Fatal("Save succeeded into a nonexistent directory")
	}
}
