// Package embeddingtest provides a deterministic in-memory Engine for
// tests that need controlled similarity geometry.
package embeddingtest

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"tarotvision-server-go/internal/domain/embedding"
)

// StubEngine satisfies embedding.Engine without a model. Fixed vectors
// can be registered per input; anything unregistered gets a
// deterministic hash-derived unit vector, so repeated calls always
// agree.
type StubEngine struct {
	Dims    int
	Version string

	texts  map[string][]float32
	images map[string][]float32
}

func NewStubEngine(dims int) *StubEngine {
	return &StubEngine{
		Dims:    dims,
		Version: "stub",
		texts:   make(map[string][]float32),
		images:  make(map[string][]float32),
	}
}

// SetText pins the vector returned for a text input.
func (e *StubEngine) SetText(text string, vec []float32) *StubEngine {
	e.texts[text] = vec
	return e
}

// SetImage pins the vector returned for exact image bytes.
func (e *StubEngine) SetImage(data []byte, vec []float32) *StubEngine {
	e.images[string(data)] = vec
	return e
}

func (e *StubEngine) EmbedImage(_ context.Context, data []byte) ([]float32, error) {
	if vec, ok := e.images[string(data)]; ok {
		return vec, nil
	}
	return HashVector(e.Dims, "image:"+string(data)), nil
}

func (e *StubEngine) EmbedText(_ context.Context, text string) ([]float32, error) {
	if vec, ok := e.texts[text]; ok {
		return vec, nil
	}
	return HashVector(e.Dims, "text:"+text), nil
}

func (e *StubEngine) Dimensions() int     { return e.Dims }
func (e *StubEngine) ModelVersion() string { return e.Version }
func (e *StubEngine) Close() error         { return nil }

var _ embedding.Engine = (*StubEngine)(nil)

// HashVector derives a unit vector deterministically from a seed.
func HashVector(dims int, seed string) []float32 {
	vec := make([]float32, dims)
	for i := 0; i < dims; i++ {
		sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", seed, i)))
		bits := binary.BigEndian.Uint32(sum[:4])
		vec[i] = float32(bits%2000)/1000 - 1
	}
	return embedding.Normalize(vec)
}

// Unit returns the unit vector along the given axis.
func Unit(dims, axis int) []float32 {
	vec := make([]float32, dims)
	vec[axis] = 1
	return vec
}
