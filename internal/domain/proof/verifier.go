package proof

import (
	"context"
	"crypto/subtle"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tarotvision-server-go/internal/domain/eventbus"
	"tarotvision-server-go/internal/domain/match"
	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/errors"
	"tarotvision-server-go/internal/platform/logging"

	"tarotvision-server-go/internal/domain/proof/replay"
)

// Verifier checks proofs at consumption time. Verification is pure
// apart from the optional replay store; it holds no locks and shares
// no mutable state across requests.
type Verifier struct {
	secret []byte
	replay replay.Store
	bus    *eventbus.Bus
	logger *logging.Logger
	now    func() time.Time
}

func NewVerifier(cfg config.ProofConfig, store replay.Store, bus *eventbus.Bus, logger *logging.Logger) *Verifier {
	return &Verifier{
		secret: []byte(cfg.Secret),
		replay: store,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// Verify validates the token against the insights and spread the
// caller presents. On success it returns the verified claims; any
// failure is terminal for the request.
func (v *Verifier) Verify(ctx context.Context, token string, insights []match.Insight, declared DeclaredSpread) (*Claims, error) {
	if token == "" {
		return nil, errors.Coded(errors.CodeProofMissing, "proof.verify",
			"a vision proof is required for this operation")
	}

	// Expiry is decided from the unverified claims first, so an expired
	// proof reports expiry even when its signature is also broken.
	if stale, ok := peekExpired(token, v.now()); ok {
		return nil, v.reject(stale, errors.Coded(errors.CodeProofExpired, "proof.verify",
			"proof has expired"))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return v.now() }))
	if err != nil {
		return nil, v.reject(claims, mapParseError(err))
	}
	if !parsed.Valid {
		return nil, v.reject(claims, errors.Coded(errors.CodeProofMalformed, "proof.verify",
			"proof failed validation"))
	}
	if claims.ID == "" || claims.Digest == "" || claims.Nonce == "" ||
		claims.DeckStyle == "" || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, v.reject(claims, errors.Coded(errors.CodeProofMalformed, "proof.verify",
			"proof is missing required fields"))
	}

	digest, err := InsightsDigest(insights)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(digest), []byte(claims.Digest)) != 1 {
		return nil, v.reject(claims, errors.Coded(errors.CodeProofTampered, "proof.verify",
			"insight sequence does not match the signed digest"))
	}

	if claims.DeckStyle != declared.DeckStyle ||
		(declared.Spread != "" && claims.Spread != declared.Spread) ||
		claims.Positions != declared.Positions || len(insights) != declared.Positions {
		return nil, v.reject(claims, errors.Coded(errors.CodeProofScopeMismatch, "proof.verify",
			fmt.Sprintf("proof was issued for deck %q with %d positions, request declares deck %q with %d",
				claims.DeckStyle, claims.Positions, declared.DeckStyle, declared.Positions)))
	}

	if v.replay != nil {
		replayed, err := v.replay.Consume(ctx, claims.ID, claims.ExpiresAt.Time)
		if err != nil {
			return nil, errors.Wrap(errors.KindVision, "proof.verify",
				"check replay store", err)
		}
		if replayed {
			return nil, v.reject(claims, errors.Coded(errors.CodeProofReplayed, "proof.verify",
				fmt.Sprintf("proof %s was already consumed", claims.ID)))
		}
	}

	if v.bus != nil {
		v.bus.Publish(eventbus.EventProofConsumed, eventbus.ProofEvent{
			ProofID:   claims.ID,
			DeckStyle: claims.DeckStyle,
			IssuedAt:  claims.IssuedAt.Time,
			ExpiresAt: claims.ExpiresAt.Time,
		})
	}
	return claims, nil
}

// reject publishes the rejection before returning its cause.
func (v *Verifier) reject(claims *Claims, cause error) error {
	code := errors.CodeOf(cause)
	v.logger.WarnTag("PROOF", "rejected proof %q: %s", claims.ID, code)
	if v.bus != nil {
		v.bus.Publish(eventbus.EventProofRejected, eventbus.ProofEvent{
			ProofID:   claims.ID,
			DeckStyle: claims.DeckStyle,
			Reason:    string(code),
		})
	}
	return cause
}

// peekExpired decodes the claims without verifying the signature and
// reports whether the token is past its exp. Undecodable tokens fall
// through to the signed parse for a proper error.
func peekExpired(token string, now time.Time) (*Claims, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	if claims.ExpiresAt == nil || !now.After(claims.ExpiresAt.Time) {
		return nil, false
	}
	return claims, true
}

// mapParseError translates token parsing failures onto the stable
// error codes clients branch on. Expiry is reported ahead of other
// claim failures so "session expired" wins over a generic rejection.
func mapParseError(err error) error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return errors.CodedWrap(errors.CodeProofExpired, "proof.verify",
			"proof has expired", err)
	case stderrors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.CodedWrap(errors.CodeProofSignatureInvalid, "proof.verify",
			"proof signature does not verify", err)
	default:
		return errors.CodedWrap(errors.CodeProofMalformed, "proof.verify",
			"proof could not be parsed", err)
	}
}
