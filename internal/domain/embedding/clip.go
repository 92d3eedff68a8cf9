package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/errors"
	"tarotvision-server-go/internal/platform/logging"
)

// ClipService is an Engine backed by the CLIP embedding sidecar.
//
// The sidecar hosts the pretrained model; this client validates
// inputs, ships them over HTTP, and normalizes the returned vectors.
// Model warmup happens exactly once per process: the first caller
// blocks for it, concurrent callers wait on the same initialization,
// and a warmup failure is terminal for every subsequent call.
type ClipService struct {
	cfg    config.ModelConfig
	logger *logging.Logger
	client *http.Client

	warmupOnce sync.Once
	warmupErr  error
}

// NewClipService builds the sidecar client. No network traffic happens
// until the first embed call triggers warmup.
func NewClipService(cfg config.ModelConfig, logger *logging.Logger) (*ClipService, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.KindConfig, "clip.new", "model base_url is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, errors.New(errors.KindConfig, "clip.new", "model dimensions must be positive")
	}
	timeout := cfg.Timeout.Std()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &ClipService{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type embedImageRequest struct {
	Image        string `json:"image"`
	ModelVersion string `json:"model_version,omitempty"`
}

type embedTextRequest struct {
	Text         string `json:"text"`
	ModelVersion string `json:"model_version,omitempty"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// warmup pings the sidecar until the model reports ready. Runs at most
// once; the outcome is shared by all callers.
func (s *ClipService) warmup() {
	deadline := s.cfg.WarmupTimeout.Std()
	if deadline <= 0 {
		deadline = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	s.logger.InfoTag("CLIP", "warming up embedding model %s at %s", s.cfg.ModelVersion, s.cfg.BaseURL)
	started := time.Now()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/healthz", nil)
		if err != nil {
			s.warmupErr = err
			return
		}
		resp, err := s.client.Do(req)
		if err == nil {
			ready := resp.StatusCode == http.StatusOK
			resp.Body.Close()
			if ready {
				s.logger.InfoTag("CLIP", "model ready after %s", time.Since(started).Round(time.Millisecond))
				return
			}
		}

		select {
		case <-ctx.Done():
			s.warmupErr = fmt.Errorf("model did not become ready within %s", deadline)
			return
		case <-time.After(time.Second):
		}
	}
}

func (s *ClipService) ensureReady(op string) error {
	s.warmupOnce.Do(s.warmup)
	if s.warmupErr != nil {
		return errors.CodedWrap(errors.CodeModelUnavailable, op,
			"embedding model unavailable", s.warmupErr)
	}
	return nil
}

// EmbedImage validates the bytes decode as an image, then embeds them.
func (s *ClipService) EmbedImage(ctx context.Context, data []byte) ([]float32, error) {
	const op = "clip.embed_image"

	if len(data) == 0 {
		return nil, errors.Coded(errors.CodeImageDecode, op, "empty image payload")
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.CodedWrap(errors.CodeImageDecode, op,
			"image bytes do not decode", err)
	}

	if err := s.ensureReady(op); err != nil {
		return nil, err
	}

	body := embedImageRequest{
		Image:        base64.StdEncoding.EncodeToString(data),
		ModelVersion: s.cfg.ModelVersion,
	}
	return s.post(ctx, op, "/embed/image", body)
}

// EmbedText embeds a card description.
func (s *ClipService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	const op = "clip.embed_text"

	if text == "" {
		return nil, errors.New(errors.KindDomain, op, "empty text")
	}
	if err := s.ensureReady(op); err != nil {
		return nil, err
	}

	body := embedTextRequest{
		Text:         text,
		ModelVersion: s.cfg.ModelVersion,
	}
	return s.post(ctx, op, "/embed/text", body)
}

func (s *ClipService) post(ctx context.Context, op, path string, payload any) ([]float32, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, op, "marshal embed request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, op, "build embed request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.CodedWrap(errors.CodeModelUnavailable, op, "embed call failed", err)
	}
	defer resp.Body.Close()

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(errors.KindDomain, op, "decode embed response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := decoded.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, errors.CodedWrap(errors.CodeModelUnavailable, op,
			"embed service error", fmt.Errorf("%s", msg))
	}

	vec := decoded.Embedding
	if len(vec) != s.cfg.Dimensions {
		return nil, errors.Coded(errors.CodeDimensionMismatch, op,
			fmt.Sprintf("model returned %d dimensions, expected %d", len(vec), s.cfg.Dimensions))
	}
	return Normalize(vec), nil
}

func (s *ClipService) Dimensions() int {
	return s.cfg.Dimensions
}

func (s *ClipService) ModelVersion() string {
	return s.cfg.ModelVersion
}

func (s *ClipService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

var _ Engine = (*ClipService)(nil)
