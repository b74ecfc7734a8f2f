package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Repository persists the relay state as two flat JSON files: the
// pending link queue ({"links": [...]}) and the set of already-sent
// offer ids ({"ids": [...]}). A mutex serializes every
// read-modify-write cycle and saves go through a temp-file rename, so
// concurrent triggers cannot lose updates or leave a torn file behind.
type Repository struct {
	log       *slog.Logger
	queuePath string
	sentPath  string
	mu        sync.Mutex
}

type queueFile struct {
	Links []string `json:"links"`
}

type sentFile struct {
	IDs []string `json:"ids"`
}

// NewRepository creates a Repository over the given file paths. The
// files are created lazily on first save.
func NewRepository(log *slog.Logger, queuePath, sentPath string) *Repository {
	return &Repository{log: log, queuePath: queuePath, sentPath: sentPath}
}

// readJSON loads the file into dst. Absence and corruption both read as
// an empty state: the store must never fail a caller on load.
func (r *Repository) readJSON(path string, dst any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.log.Warn("State file is unreadable, treating as empty", "path", path, "error", err)
		}
		return
	}

	if err = json.Unmarshal(data, dst); err != nil {
		r.log.Warn("State file is malformed, treating as empty", "path", path, "error", err)
	}
}

// writeJSON marshals v and renames it into place atomically.
func (r *Repository) writeJSON(path string, v any) error {
	const opn = "repository.jsonfile.writeJSON"

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal state: %w", opn, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%s: failed to create temp file: %w", opn, err)
	}

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%s: failed to write temp file: %w", opn, err)
	}

	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%s: failed to close temp file: %w", opn, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%s: failed to replace %s: %w", opn, path, err)
	}

	return nil
}
