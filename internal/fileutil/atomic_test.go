package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Games int    `json:"games"`
	Name  string `json:"name"`
}

func readSample(t *testing.T, path string) sample {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	var got sample
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("File is not valid JSON: %v\n%s", err, data)
	}
	return got
}

func TestWriteJSONAtomic(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "results.json")

	if err := WriteJSONAtomic(testFile, sample{Games: 10, Name: "pig"}, 0644); err != nil {
		t.Fatalf("WriteJSONAtomic failed: %v", err)
	}

	if got := readSample(t, testFile); got != (sample{Games: 10, Name: "pig"}) {
		t.Errorf("File content mismatch: got %+v", got)
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("File permissions mismatch: got %o, want %o", info.Mode().Perm(), 0644)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != "results.json" {
			t.Errorf("Unexpected file in directory: %s", entry.Name())
		}
	}
}

func TestWriteJSONAtomicOverwrite(t *testing.T) {
	t.Parallel()

	testFile := filepath.Join(t.TempDir(), "results.json")

	if err := WriteJSONAtomic(testFile, sample{Games: 1}, 0644); err != nil {
		t.Fatalf("Initial write failed: %v", err)
	}
	if err := WriteJSONAtomic(testFile, sample{Games: 2, Name: "again"}, 0644); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	if got := readSample(t, testFile); got != (sample{Games: 2, Name: "again"}) {
		t.Errorf("File content mismatch: got %+v", got)
	}
}

func TestWriteJSONAtomicUnencodable(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	err := WriteJSONAtomic(filepath.Join(tmpDir, "bad.json"), map[string]any{"f": func() {}}, 0644)
	if err == nil {
		t.Fatal("Expected an encoding error")
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected temp file to be removed, found %d entries", len(entries))
	}
}

func TestWriteJSONAtomicInvalidDir(t *testing.T) {
	t.Parallel()

	if err := WriteJSONAtomic("/nonexistent/dir/results.json", sample{}, 0644); err == nil {
		t.Error("Expected error when writing to non-existent directory")
	}
}
