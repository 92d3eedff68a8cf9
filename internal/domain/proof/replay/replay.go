// Package replay tracks consumed proof identifiers so a proof cannot
// authorize more than one reading within its TTL. Entries expire with
// the proof they guard, which keeps the set bounded.
package replay

import (
	"context"
	"time"
)

// Store records proof consumption. Implementations must be safe for
// concurrent use.
type Store interface {
	// Consume marks proofID as used. It reports true when the proof
	// was already consumed. expiresAt bounds how long the marker must
	// survive; afterwards the proof is dead anyway.
	Consume(ctx context.Context, proofID string, expiresAt time.Time) (bool, error)
	Stats(ctx context.Context) (map[string]any, error)
	Close(ctx context.Context) error
}
