// Package match ranks uploaded card photographs against the prototype
// library. The same ranking path serves live preview, proof issuance
// and offline evaluation, so preview and authoritative results never
// diverge.
package match

// UploadedImage is one photograph within a request, addressed by its
// spread position. Bytes are transient and never persisted.
type UploadedImage struct {
	PositionIndex int
	Bytes         []byte
}

// Scope narrows ranking to one deck style and optionally declares
// which card the caller expects at each position.
type Scope struct {
	DeckStyle    string
	IncludeMinor bool
	// Expected maps positionIndex to the declared card name. Positions
	// absent from the map are never flagged as expectation mismatches.
	Expected map[int]string
}

// Candidate is one ranked card identity for an image.
type Candidate struct {
	CardName   string  `json:"card_name"`
	Similarity float32 `json:"similarity"`
}

// Result is the full ranking for one image. Confidence is the top
// similarity score, not a calibrated probability.
type Result struct {
	PositionIndex int         `json:"position_index"`
	TopCandidate  string      `json:"top_candidate"`
	Candidates    []Candidate `json:"candidates"`
	Confidence    float32     `json:"confidence"`
	Mismatch      bool        `json:"mismatch"`
}

// Insight is the sanitized per-position summary safe to hand to the
// reading generator. On mismatch the predicted card name is withheld
// so an unverified guess can never prime a downstream prompt.
type Insight struct {
	PositionIndex int     `json:"position_index"`
	MatchedCard   string  `json:"matched_card,omitempty"`
	Confidence    float32 `json:"confidence"`
	Mismatch      bool    `json:"mismatch"`
}

// Insights redacts a result sequence into the sanitized form.
func Insights(results []Result) []Insight {
	insights := make([]Insight, len(results))
	for i, res := range results {
		insights[i] = Insight{
			PositionIndex: res.PositionIndex,
			Confidence:    res.Confidence,
			Mismatch:      res.Mismatch,
		}
		if !res.Mismatch {
			insights[i].MatchedCard = res.TopCandidate
		}
	}
	return insights
}
