package proof

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tarotvision-server-go/internal/domain/eventbus"
	"tarotvision-server-go/internal/domain/match"
	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/errors"
	"tarotvision-server-go/internal/platform/logging"
)

// Issuer signs fresh attestations. It always re-runs the matcher over
// the submitted images; client-supplied match claims are never
// trusted.
type Issuer struct {
	matcher   *match.Matcher
	secret    []byte
	ttl       time.Duration
	maxImages int
	bus       *eventbus.Bus
	logger    *logging.Logger
	now       func() time.Time
}

func NewIssuer(matcher *match.Matcher, cfg config.ProofConfig, maxImages int, bus *eventbus.Bus, logger *logging.Logger) *Issuer {
	if maxImages <= 0 {
		maxImages = 5
	}
	return &Issuer{
		matcher:   matcher,
		secret:    []byte(cfg.Secret),
		ttl:       cfg.TTL.Std(),
		maxImages: maxImages,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// Issue matches the images within scope and returns a signed proof
// over the sanitized insights. The proof is returned complete and
// signed or not at all; nothing is persisted on the way.
func (i *Issuer) Issue(ctx context.Context, images []match.UploadedImage, spread DeclaredSpread, scope match.Scope) (*Issued, error) {
	if len(images) == 0 {
		return nil, errors.Coded(errors.CodeInsufficientImages, "proof.issue",
			"at least one image is required")
	}
	if len(images) > i.maxImages {
		return nil, errors.Coded(errors.CodeTooManyImages, "proof.issue",
			fmt.Sprintf("%d images exceed the cap of %d", len(images), i.maxImages))
	}

	results, err := i.matcher.Match(ctx, images, scope)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.KindVision, "proof.issue", "request aborted", err)
	}

	insights := match.Insights(results)
	digest, err := InsightsDigest(insights)
	if err != nil {
		return nil, err
	}

	nonce, err := randomHex(16)
	if err != nil {
		return nil, errors.Wrap(errors.KindVision, "proof.issue", "generate nonce", err)
	}

	proofID := uuid.NewString()
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        proofID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Digest:    digest,
		DeckStyle: scope.DeckStyle,
		Spread:    spread.Spread,
		Positions: len(insights),
		Nonce:     nonce,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, errors.Wrap(errors.KindVision, "proof.issue", "sign proof", err)
	}

	i.logger.InfoTag("PROOF", "issued %s for deck %s (%d images, expires %s)",
		proofID, scope.DeckStyle, len(images), expiresAt.Format(time.RFC3339))
	if i.bus != nil {
		i.bus.Publish(eventbus.EventProofIssued, eventbus.ProofEvent{
			ProofID:   proofID,
			DeckStyle: scope.DeckStyle,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		})
	}

	return &Issued{
		Proof: Proof{
			ProofID:   proofID,
			Token:     token,
			Digest:    digest,
			DeckStyle: scope.DeckStyle,
			Spread:    spread.Spread,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
		Insights: insights,
	}, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
