package vision

import (
	"tarotvision-server-go/internal/domain/image"
	"tarotvision-server-go/internal/domain/match"
	"tarotvision-server-go/internal/domain/proof"
)

// ImageUpload is one photographed card in an issue request. Expected
// is optional: when the client declares which card a position should
// hold, disagreement surfaces as a mismatch flag.
type ImageUpload struct {
	Position int    `json:"position"`
	Data     string `json:"data" binding:"required"`
	Format   string `json:"format,omitempty"`
	Expected string `json:"expected_card,omitempty"`
}

// IssueRequest asks for a fresh proof over a set of card photos.
type IssueRequest struct {
	DeckStyle    string        `json:"deck_style"`
	Spread       string        `json:"spread"`
	IncludeMinor bool          `json:"include_minor"`
	Images       []ImageUpload `json:"images" binding:"required"`
}

// ReadingRequest consumes a proof to authorize reading generation.
// The insight sequence the client presents must digest to what the
// proof signed.
type ReadingRequest struct {
	ProofToken string          `json:"proof_token"`
	DeckStyle  string          `json:"deck_style"`
	Spread     string          `json:"spread"`
	Insights   []match.Insight `json:"insights"`
}

// ReadingData confirms a verified proof. The narrative generator
// itself is a separate service; this payload is what it trusts.
type ReadingData struct {
	ProofID   string          `json:"proof_id"`
	DeckStyle string          `json:"deck_style"`
	Spread    string          `json:"spread,omitempty"`
	Insights  []match.Insight `json:"insights"`
}

// StatusData reports the vision service state.
type StatusData struct {
	ModelVersion string   `json:"model_version"`
	Dimensions   int      `json:"dimensions"`
	DeckStyles   []string `json:"deck_styles"`
	ProofTTL     string   `json:"proof_ttl"`
	MaxImages    int      `json:"max_images"`
}

// previewFrame is one frame on the live preview socket.
type previewFrame struct {
	Position int    `json:"position"`
	Data     string `json:"data"`
	Format   string `json:"format,omitempty"`
	Expected string `json:"expected_card,omitempty"`
}

// previewReply answers one frame with the same ranking the proof path
// would produce.
type previewReply struct {
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
	Result   *match.Result `json:"result,omitempty"`
}

func (r IssueRequest) payloads() []image.Payload {
	payloads := make([]image.Payload, len(r.Images))
	for i, img := range r.Images {
		payloads[i] = image.Payload{Data: img.Data, Format: img.Format}
	}
	return payloads
}

func (r IssueRequest) scope() match.Scope {
	scope := match.Scope{
		DeckStyle:    r.DeckStyle,
		IncludeMinor: r.IncludeMinor,
	}
	for _, img := range r.Images {
		if img.Expected != "" {
			if scope.Expected == nil {
				scope.Expected = make(map[int]string)
			}
			scope.Expected[img.Position] = img.Expected
		}
	}
	return scope
}

func (r ReadingRequest) declaredSpread() proof.DeclaredSpread {
	return proof.DeclaredSpread{
		DeckStyle: r.DeckStyle,
		Spread:    r.Spread,
		Positions: len(r.Insights),
	}
}
