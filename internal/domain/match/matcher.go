package match

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"tarotvision-server-go/internal/domain/embedding"
	"tarotvision-server-go/internal/domain/prototype"
	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/errors"
	"tarotvision-server-go/internal/platform/logging"
)

// Matcher ranks images against one shared prototype library. It is
// safe for concurrent use; the library is read-only after load.
type Matcher struct {
	engine  embedding.Engine
	library *prototype.Library
	cfg     config.MatchConfig
	logger  *logging.Logger
}

func NewMatcher(engine embedding.Engine, library *prototype.Library, cfg config.MatchConfig, logger *logging.Logger) *Matcher {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.EmbedWorkers <= 0 {
		cfg.EmbedWorkers = 1
	}
	return &Matcher{
		engine:  engine,
		library: library,
		cfg:     cfg,
		logger:  logger,
	}
}

// Match embeds every image and ranks card candidates within the scope.
// Images embed in parallel on a bounded pool; results come back in the
// input order regardless of completion order.
func (m *Matcher) Match(ctx context.Context, images []UploadedImage, scope Scope) ([]Result, error) {
	if !m.library.HasDeckStyle(scope.DeckStyle) {
		return nil, errors.New(errors.KindVision, "match.match",
			fmt.Sprintf("no prototypes for deck style %q", scope.DeckStyle))
	}
	protos := m.library.Prototypes(scope.DeckStyle, scope.IncludeMinor)
	if len(protos) == 0 {
		return nil, errors.New(errors.KindVision, "match.match",
			fmt.Sprintf("no prototypes for deck style %q", scope.DeckStyle))
	}

	results := make([]Result, len(images))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(m.cfg.EmbedWorkers)
	for i, img := range images {
		i, img := i, img
		group.Go(func() error {
			vec, err := m.engine.EmbedImage(gctx, img.Bytes)
			if err != nil {
				return errors.CodedWrap(errors.CodeOf(err), "match.match",
					fmt.Sprintf("embed image at position %d", img.PositionIndex), err)
			}
			if len(vec) != m.library.Dimensions() {
				return errors.Coded(errors.CodeDimensionMismatch, "match.match",
					fmt.Sprintf("image embedding has %d dimensions, prototypes have %d",
						len(vec), m.library.Dimensions()))
			}
			results[i] = m.rank(img.PositionIndex, vec, protos, scope)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// rank scores one embedded image against the scoped prototypes.
func (m *Matcher) rank(position int, vec []float32, protos []prototype.CardPrototype, scope Scope) Result {
	candidates := make([]Candidate, len(protos))
	for i, proto := range protos {
		candidates[i] = Candidate{
			CardName:   proto.CardName,
			Similarity: float32(embedding.Dot(vec, proto.Embedding)),
		}
	}
	// Stable sort keeps prototype insertion order as the tie-break.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Similarity > candidates[b].Similarity
	})
	if len(candidates) > m.cfg.TopK {
		candidates = candidates[:m.cfg.TopK]
	}

	res := Result{
		PositionIndex: position,
		TopCandidate:  candidates[0].CardName,
		Candidates:    candidates,
		Confidence:    candidates[0].Similarity,
	}
	if expected, ok := scope.Expected[position]; ok && expected != res.TopCandidate {
		res.Mismatch = true
	}
	if float64(res.Confidence) < m.cfg.MinConfidence {
		res.Mismatch = true
	}
	if res.Mismatch {
		m.logger.DebugTag("MATCH", "position %d flagged mismatch (top %q at %.3f)",
			position, res.TopCandidate, res.Confidence)
	}
	return res
}

// MinConfidence exposes the active threshold for evaluation reports.
func (m *Matcher) MinConfidence() float64 {
	return m.cfg.MinConfidence
}
