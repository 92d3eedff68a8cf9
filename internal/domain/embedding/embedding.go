// Package embedding wraps the pretrained multimodal embedding model
// behind a small engine interface. Images and card descriptions embed
// into one shared vector space; every vector leaving this package is
// L2-normalized.
package embedding

import "context"

// Engine produces unit-length embedding vectors for images and text.
//
// Implementations must be deterministic for a given model version:
// identical input bytes or text yield the same vector within floating
// point epsilon. Safe for concurrent use.
type Engine interface {
	// EmbedImage embeds raw image bytes. Malformed or unsupported
	// bytes fail with an image_decode_failed coded error.
	EmbedImage(ctx context.Context, data []byte) ([]float32, error)

	// EmbedText embeds a textual card description.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector dimensionality (512 for the
	// CLIP ViT-B/32 deployment).
	Dimensions() int

	// ModelVersion identifies the loaded model; prototype libraries
	// built against a different version must not be mixed in.
	ModelVersion() string

	// Close releases resources held by the engine.
	Close() error
}
