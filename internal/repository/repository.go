package repository

import "context"

// QueueRepository persists the ordered queue of pending links.
type QueueRepository interface {
	// LoadQueue returns the pending links in first-seen order. An absent
	// or unreadable store reads as an empty queue.
	LoadQueue(ctx context.Context) ([]string, error)
	// SaveQueue overwrites the stored queue with the given links.
	SaveQueue(ctx context.Context, links []string) error
	// Enqueue appends the links that are not yet queued, preserving
	// first-seen order, and returns how many were added.
	Enqueue(ctx context.Context, links []string) (int, error)
}

// SentRepository tracks offer ids that were already posted to the
// channel. The set grows monotonically; ids are never evicted.
type SentRepository interface {
	// LoadSentIDs returns the set of previously dispatched offer ids.
	LoadSentIDs(ctx context.Context) (map[string]struct{}, error)
	// MarkSent records the given offer ids as dispatched.
	MarkSent(ctx context.Context, ids []string) error
}
