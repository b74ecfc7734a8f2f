package jsonfile

import (
	"context"
	"fmt"
)

// LoadSentIDs returns the set of previously dispatched offer ids.
func (r *Repository) LoadSentIDs(_ context.Context) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.loadSentLocked()
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set, nil
}

// MarkSent records the given offer ids as dispatched. Ids already in
// the set are kept once; the stored order is first-sent.
func (r *Repository) MarkSent(_ context.Context, ids []string) error {
	const opn = "repository.jsonfile.MarkSent"

	if len(ids) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.loadSentLocked()
	existing := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		existing[id] = struct{}{}
	}

	changed := false
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			continue
		}
		stored = append(stored, id)
		existing[id] = struct{}{}
		changed = true
	}

	if !changed {
		return nil
	}

	if err := r.writeJSON(r.sentPath, sentFile{IDs: stored}); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// loadSentLocked reads the sent-id file. Callers must hold r.mu.
func (r *Repository) loadSentLocked() []string {
	var stored sentFile
	r.readJSON(r.sentPath, &stored)

	return stored.IDs
}
