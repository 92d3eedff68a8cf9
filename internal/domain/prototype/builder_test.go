package prototype

import (
	"context"
	"os"
	"testing"

	"tarotvision-server-go/internal/domain/embedding/embeddingtest"
	"tarotvision-server-go/internal/platform/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestBuilderBuildsAllStyles(t *testing.T) {
	engine := embeddingtest.NewStubEngine(8)
	builder := NewBuilder(engine, logging.NewConsole("error"))

	lib, err := builder.Build(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if lib.Dimensions() != 8 || lib.ModelVersion() != "stub" {
		t.Fatalf("metadata mismatch: %d/%s", lib.Dimensions(), lib.ModelVersion())
	}
	for _, style := range KnownDeckStyles {
		if got := len(lib.Prototypes(style, false)); got != 22 {
			t.Fatalf("%s: expected 22 prototypes, got %d", style, got)
		}
	}
}

func TestBuilderDeckStylePromptsDiffer(t *testing.T) {
	engine := embeddingtest.NewStubEngine(8)
	builder := NewBuilder(engine, logging.NewConsole("error"))

	lib, err := builder.Build(context.Background(), []string{DeckRWS, DeckThoth}, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	rws := lib.Prototypes(DeckRWS, false)[0]
	thoth := lib.Prototypes(DeckThoth, false)[0]
	same := true
	for i := range rws.Embedding {
		if rws.Embedding[i] != thoth.Embedding[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("deck styles should embed distinct prompts")
	}
}

func TestBuilderIncludesMinors(t *testing.T) {
	engine := embeddingtest.NewStubEngine(8)
	builder := NewBuilder(engine, logging.NewConsole("error"))

	lib, err := builder.Build(context.Background(), []string{DeckRWS}, true)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := len(lib.Prototypes(DeckRWS, true)); got != 78 {
		t.Fatalf("expected 78 prototypes, got %d", got)
	}
}
