package eventbus

import "time"

// Event topics published by the vision pipeline.
const (
	// EventProofIssued fires after a proof is signed and returned.
	EventProofIssued = "vision:proof_issued"
	// EventProofConsumed fires after a proof passes verification.
	EventProofConsumed = "vision:proof_consumed"
	// EventProofRejected fires when verification fails terminally.
	EventProofRejected = "vision:proof_rejected"
)

// ProofEvent is the payload carried on every vision proof topic. It
// never contains image bytes or the signing secret.
type ProofEvent struct {
	ProofID   string    `json:"proof_id"`
	DeckStyle string    `json:"deck_style"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	// Reason is set on rejected events only, carrying the stable
	// error code.
	Reason string `json:"reason,omitempty"`
}
