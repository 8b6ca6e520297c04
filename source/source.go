// Package source defines video descriptors and the providers that look them up.
package source

import "context"

// Source looks up video descriptors.
type Source interface {
	// Name is the human readable provider name.
	Name() string

	// ID is a stable identifier derived from the name.
	ID() string

	// Search returns descriptors whose title or course matches query.
	Search(ctx context.Context, query string) ([]*Video, error)

	// VideoOf returns the descriptor for a single video id.
	VideoOf(ctx context.Context, id string) (*Video, error)
}
