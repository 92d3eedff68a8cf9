package prototype

import (
	"context"
	"fmt"

	"tarotvision-server-go/internal/domain/embedding"
	"tarotvision-server-go/internal/platform/errors"
	"tarotvision-server-go/internal/platform/logging"
)

// Builder computes text prototypes offline by embedding each card's
// description once per deck style.
type Builder struct {
	engine embedding.Engine
	logger *logging.Logger
}

func NewBuilder(engine embedding.Engine, logger *logging.Logger) *Builder {
	return &Builder{
		engine: engine,
		logger: logger,
	}
}

// Build embeds the full card vocabulary for each deck style and
// returns the assembled library.
func (b *Builder) Build(ctx context.Context, deckStyles []string, includeMinor bool) (*Library, error) {
	if len(deckStyles) == 0 {
		deckStyles = KnownDeckStyles
	}

	lib := NewLibrary(b.engine.ModelVersion(), b.engine.Dimensions())
	cards := Vocabulary(includeMinor)

	for _, style := range deckStyles {
		b.logger.InfoTag("PROTO", "building %d prototypes for deck style %s", len(cards), style)
		for _, card := range cards {
			vec, err := b.engine.EmbedText(ctx, PromptFor(style, card))
			if err != nil {
				return nil, errors.Wrap(errors.KindDomain, "prototype.build",
					fmt.Sprintf("embed prototype for %q (%s)", card.Name, style), err)
			}
			if err := lib.Add(style, CardPrototype{
				CardName:    card.Name,
				Description: card.Description,
				Embedding:   vec,
				Minor:       card.Minor,
			}); err != nil {
				return nil, err
			}
		}
	}
	return lib, nil
}
