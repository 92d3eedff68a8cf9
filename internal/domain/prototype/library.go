// Package prototype holds the precomputed card prototype embeddings
// the matcher ranks against. A library is immutable once loaded and is
// shared read-only across concurrent requests.
package prototype

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bytedance/sonic"

	"tarotvision-server-go/internal/platform/errors"
	"tarotvision-server-go/internal/domain/embedding"
)

// CardPrototype is one card's unit-length text embedding within a
// deck style.
type CardPrototype struct {
	CardName    string    `json:"card_name"`
	Description string    `json:"description,omitempty"`
	Embedding   []float32 `json:"embedding"`
	Minor       bool      `json:"minor,omitempty"`
}

type deckEntry struct {
	// Cards is an ordered array, not a map: ranking ties resolve by
	// prototype order, so the file format has to preserve it.
	Cards []CardPrototype `json:"cards"`
}

type libraryFile struct {
	ModelVersion string               `json:"model_version"`
	Dimensions   int                  `json:"dimensions"`
	DeckStyles   map[string]deckEntry `json:"deck_styles"`
}

// Library is the in-memory prototype set, keyed by deck style.
type Library struct {
	modelVersion string
	dims         int
	decks        map[string][]CardPrototype
}

// NewLibrary creates an empty library; used by the builder and tests.
func NewLibrary(modelVersion string, dims int) *Library {
	return &Library{
		modelVersion: modelVersion,
		dims:         dims,
		decks:        make(map[string][]CardPrototype),
	}
}

// Add appends a prototype to a deck style, preserving insertion order.
// The vector is normalized defensively; prototypes must already match
// the library dimensionality.
func (l *Library) Add(deckStyle string, proto CardPrototype) error {
	if len(proto.Embedding) != l.dims {
		return errors.Coded(errors.CodeDimensionMismatch, "prototype.add",
			fmt.Sprintf("prototype %q has %d dimensions, library expects %d",
				proto.CardName, len(proto.Embedding), l.dims))
	}
	embedding.Normalize(proto.Embedding)
	l.decks[deckStyle] = append(l.decks[deckStyle], proto)
	return nil
}

// Load reads a prototype library file written by the builder.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "prototype.load",
			fmt.Sprintf("read prototype library %s", path), err)
	}

	var file libraryFile
	if err := sonic.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.KindStorage, "prototype.load",
			"parse prototype library", err)
	}
	if file.Dimensions <= 0 {
		return nil, errors.New(errors.KindStorage, "prototype.load",
			"prototype library missing dimensions")
	}

	lib := NewLibrary(file.ModelVersion, file.Dimensions)
	for style, entry := range file.DeckStyles {
		for _, proto := range entry.Cards {
			if err := lib.Add(style, proto); err != nil {
				return nil, err
			}
		}
	}
	return lib, nil
}

// Save writes the library next to the serving process, creating parent
// directories as needed.
func (l *Library) Save(path string) error {
	file := libraryFile{
		ModelVersion: l.modelVersion,
		Dimensions:   l.dims,
		DeckStyles:   make(map[string]deckEntry, len(l.decks)),
	}
	for style, cards := range l.decks {
		file.DeckStyles[style] = deckEntry{Cards: cards}
	}

	data, err := sonic.Marshal(file)
	if err != nil {
		return errors.Wrap(errors.KindStorage, "prototype.save",
			"marshal prototype library", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.KindStorage, "prototype.save",
			"create prototype directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.KindStorage, "prototype.save",
			fmt.Sprintf("write prototype library %s", path), err)
	}
	return nil
}

// Prototypes returns the ordered prototype slice for a deck style,
// majors only unless includeMinor is set. Callers must not mutate the
// returned prototypes.
func (l *Library) Prototypes(deckStyle string, includeMinor bool) []CardPrototype {
	all := l.decks[deckStyle]
	if includeMinor {
		return all
	}
	majors := make([]CardPrototype, 0, len(all))
	for _, proto := range all {
		if !proto.Minor {
			majors = append(majors, proto)
		}
	}
	return majors
}

// HasDeckStyle reports whether prototypes exist for the style.
func (l *Library) HasDeckStyle(deckStyle string) bool {
	return len(l.decks[deckStyle]) > 0
}

// DeckStyles lists the available deck styles, sorted.
func (l *Library) DeckStyles() []string {
	styles := make([]string, 0, len(l.decks))
	for style := range l.decks {
		styles = append(styles, style)
	}
	sort.Strings(styles)
	return styles
}

func (l *Library) Dimensions() int {
	return l.dims
}

func (l *Library) ModelVersion() string {
	return l.modelVersion
}
