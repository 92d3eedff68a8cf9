package proof

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/bytedance/sonic"

	"tarotvision-server-go/internal/domain/match"
	"tarotvision-server-go/internal/platform/errors"
)

// InsightsDigest computes the deterministic digest the proof signs:
// SHA-256 over the JSON encoding of the sanitized insight sequence.
// Struct field order fixes the encoding, so identical insights always
// digest identically.
func InsightsDigest(insights []match.Insight) (string, error) {
	data, err := sonic.Marshal(insights)
	if err != nil {
		return "", errors.Wrap(errors.KindVision, "proof.digest",
			"marshal insight sequence", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
