package docsearch

import "context"

// Acquisition is the outcome of acquiring or previewing a page.
type Acquisition struct {
	Document *Document `json:"doc"`

	// Warnings lists non-fatal problems, such as a stale index entry after a
	// successful store write.
	Warnings []string `json:"warnings,omitempty"`
}

// AcquisitionService runs the fetch, sanitize, extract, persist and index
// pipeline. Operations on the same document name are serialized.
type AcquisitionService interface {
	// Acquire downloads, sanitizes and stores the page, then indexes it.
	Acquire(ctx context.Context, req *AcquireRequest) (*Acquisition, error)

	// Preview downloads and sanitizes the page into the preview slot and
	// returns the extracted record without storing or indexing it.
	Preview(ctx context.Context, req *AcquireRequest) (*Acquisition, error)

	// Delete removes the stored record and files for name, then regenerates
	// the index. Each step reports its own outcome; Delete only fails on
	// invalid input.
	Delete(ctx context.Context, name string) ([]string, error)
}
