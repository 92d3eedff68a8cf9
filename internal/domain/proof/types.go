// Package proof issues and verifies the signed attestation a reading
// request must carry: evidence that the server itself matched the
// uploaded cards, bound to a short TTL so stale or tampered claims
// never reach the generator.
package proof

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tarotvision-server-go/internal/domain/match"
)

// DeclaredSpread is the spread shape a caller claims to be reading.
// Verification fails unless the proof was issued for the same shape.
type DeclaredSpread struct {
	DeckStyle string `json:"deck_style"`
	Spread    string `json:"spread"`
	Positions int    `json:"positions"`
}

// Claims is the signed payload inside a proof token. The digest pins
// the sanitized insight sequence; deck, spread and positions pin the
// scope the proof was issued for.
type Claims struct {
	jwt.RegisteredClaims
	Digest    string `json:"digest"`
	DeckStyle string `json:"deck"`
	Spread    string `json:"spread"`
	Positions int    `json:"positions"`
	Nonce     string `json:"nonce"`
}

// Proof is the issued attestation as returned to the client. Token is
// the self-contained signed form; the other fields are surfaced for
// display and are not trusted on the way back in.
type Proof struct {
	ProofID   string    `json:"proof_id"`
	Token     string    `json:"token"`
	Digest    string    `json:"digest"`
	DeckStyle string    `json:"deck_style"`
	Spread    string    `json:"spread"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issued bundles a fresh proof with the insight sequence it attests
// to. Insights are already sanitized: a mismatched position never
// carries the predicted card name. Candidate rankings stay on the
// preview channel and are deliberately absent here.
type Issued struct {
	Proof    Proof           `json:"proof"`
	Insights []match.Insight `json:"insights"`
}
