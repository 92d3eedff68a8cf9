package prototype

import (
	"path/filepath"
	"testing"

	"tarotvision-server-go/internal/platform/errors"
)

func TestLibraryRoundTrip(t *testing.T) {
	lib := NewLibrary("clip-test", 3)
	for i, card := range []string{"The Fool", "The Magician", "The High Priestess"} {
		vec := make([]float32, 3)
		vec[i] = 1
		if err := lib.Add(DeckRWS, CardPrototype{CardName: card, Embedding: vec}); err != nil {
			t.Fatalf("add %s: %v", card, err)
		}
	}

	path := filepath.Join(t.TempDir(), "nested", "prototypes.json")
	if err := lib.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ModelVersion() != "clip-test" || loaded.Dimensions() != 3 {
		t.Fatalf("metadata lost: %s/%d", loaded.ModelVersion(), loaded.Dimensions())
	}

	protos := loaded.Prototypes(DeckRWS, true)
	if len(protos) != 3 {
		t.Fatalf("expected 3 prototypes, got %d", len(protos))
	}
	// Insertion order must survive the file round trip.
	for i, want := range []string{"The Fool", "The Magician", "The High Priestess"} {
		if protos[i].CardName != want {
			t.Fatalf("position %d: got %s, want %s", i, protos[i].CardName, want)
		}
	}
}

func TestLibraryAddRejectsWrongDimensions(t *testing.T) {
	lib := NewLibrary("clip-test", 4)
	err := lib.Add(DeckRWS, CardPrototype{CardName: "The Fool", Embedding: []float32{1, 0}})
	if !errors.IsCode(err, errors.CodeDimensionMismatch) {
		t.Fatalf("expected dimension_mismatch, got %v", err)
	}
}

func TestLibraryPrototypesFiltersMinors(t *testing.T) {
	lib := NewLibrary("clip-test", 2)
	lib.Add(DeckRWS, CardPrototype{CardName: "The Fool", Embedding: []float32{1, 0}})
	lib.Add(DeckRWS, CardPrototype{CardName: "Ace of Cups", Embedding: []float32{0, 1}, Minor: true})

	if got := len(lib.Prototypes(DeckRWS, false)); got != 1 {
		t.Fatalf("majors only: expected 1, got %d", got)
	}
	if got := len(lib.Prototypes(DeckRWS, true)); got != 2 {
		t.Fatalf("with minors: expected 2, got %d", got)
	}
}

func TestLibraryDeckStyles(t *testing.T) {
	lib := NewLibrary("clip-test", 2)
	lib.Add(DeckThoth, CardPrototype{CardName: "The Fool", Embedding: []float32{1, 0}})
	lib.Add(DeckRWS, CardPrototype{CardName: "The Fool", Embedding: []float32{1, 0}})

	styles := lib.DeckStyles()
	if len(styles) != 2 || styles[0] != DeckRWS || styles[1] != DeckThoth {
		t.Fatalf("unexpected styles %v", styles)
	}
	if !lib.HasDeckStyle(DeckRWS) || lib.HasDeckStyle(DeckMarseille) {
		t.Fatalf("HasDeckStyle mismatch")
	}
}

func TestLoadMissingDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	writeFile(t, path, `{"model_version":"x","deck_styles":{}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing dimensions")
	}
}

func TestVocabularySizes(t *testing.T) {
	if got := len(Vocabulary(false)); got != 22 {
		t.Fatalf("majors: expected 22, got %d", got)
	}
	if got := len(Vocabulary(true)); got != 78 {
		t.Fatalf("full deck: expected 78, got %d", got)
	}
	if Vocabulary(true)[0].Name != "The Fool" {
		t.Fatal("trump order broken")
	}
}
