package jsonfile

import (
	"context"
	"fmt"
)

// LoadQueue returns the pending links in first-seen order.
func (r *Repository) LoadQueue(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadQueueLocked(), nil
}

// SaveQueue overwrites the stored queue with the given links.
func (r *Repository) SaveQueue(_ context.Context, links []string) error {
	const opn = "repository.jsonfile.SaveQueue"

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writeJSON(r.queuePath, queueFile{Links: links}); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// Enqueue appends the links that are not yet queued and returns how many
// were added. The whole load-append-save cycle runs under the store
// lock, so concurrent enqueues cannot drop each other's links.
func (r *Repository) Enqueue(_ context.Context, links []string) (int, error) {
	const opn = "repository.jsonfile.Enqueue"

	if len(links) == 0 {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	queue := r.loadQueueLocked()
	existing := make(map[string]struct{}, len(queue))
	for _, link := range queue {
		existing[link] = struct{}{}
	}

	added := 0
	for _, link := range links {
		if _, ok := existing[link]; ok {
			continue
		}
		queue = append(queue, link)
		existing[link] = struct{}{}
		added++
	}

	if added == 0 {
		return 0, nil
	}

	if err := r.writeJSON(r.queuePath, queueFile{Links: queue}); err != nil {
		return added, fmt.Errorf("%s: %w", opn, err)
	}

	return added, nil
}

// loadQueueLocked reads the queue file. Callers must hold r.mu.
func (r *Repository) loadQueueLocked() []string {
	var stored queueFile
	r.readJSON(r.queuePath, &stored)

	return stored.Links
}
