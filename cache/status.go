package cache

// Status is the outcome of a cache operation, as reported in diagnostics and metrics.
type Status string

const (
	// The key was present.
	StatusHit Status = "hit"

	// The key was absent and compute was called.
	StatusMiss Status = "miss"

	// A computed value was inserted.
	StatusStored Status = "stored"

	// Compute failed so nothing was inserted.
	StatusNotStored Status = "not-stored"

	// The least recently used entry was dropped to make room.
	StatusEvicted Status = "evicted"

	// An explicit delete removed the key.
	StatusDeleted Status = "deleted"

	// An explicit delete found nothing to remove.
	StatusDeleteMiss Status = "delete-miss"

	// Every entry was dropped.
	StatusCleared Status = "cleared"
)
