package image

import (
	"bytes"
	"encoding/base64"
	stdimage "image"
	"image/png"
	"testing"

	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/errors"
	"tarotvision-server-go/internal/platform/logging"
)

func testConfig() config.SecurityConfig {
	return config.SecurityConfig{
		MaxFileSize:    1 << 20,
		MaxPixels:      1 << 22,
		MaxWidth:       2048,
		MaxHeight:      2048,
		AllowedFormats: []string{"jpeg", "jpg", "png", "webp"},
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPipelineAcceptsValidPNG(t *testing.T) {
	pipe := NewPipeline(testConfig(), logging.NewConsole("error"))
	raw := pngBytes(t, 4, 4)

	got, err := pipe.Process(Payload{
		Data:   base64.StdEncoding.EncodeToString(raw),
		Format: "png",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatal("processed bytes differ from input")
	}
}

func TestPipelineRejectsBadBase64(t *testing.T) {
	pipe := NewPipeline(testConfig(), logging.NewConsole("error"))
	_, err := pipe.Process(Payload{Data: "not-base64!!"})
	if !errors.IsCode(err, errors.CodeImageDecode) {
		t.Fatalf("expected image_decode_failed, got %v", err)
	}
}

func TestPipelineRejectsEmptyPayload(t *testing.T) {
	pipe := NewPipeline(testConfig(), logging.NewConsole("error"))
	_, err := pipe.Process(Payload{})
	if !errors.IsCode(err, errors.CodeImageDecode) {
		t.Fatalf("expected image_decode_failed, got %v", err)
	}
}

func TestPipelineRejectsGarbageBytes(t *testing.T) {
	pipe := NewPipeline(testConfig(), logging.NewConsole("error"))
	_, err := pipe.Process(Payload{
		Data:   base64.StdEncoding.EncodeToString([]byte("definitely not an image")),
		Format: "png",
	})
	if !errors.IsCode(err, errors.CodeImageDecode) {
		t.Fatalf("expected image_decode_failed, got %v", err)
	}
}

func TestValidatorEnforcesDimensionCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxWidth = 8
	cfg.MaxHeight = 8
	validator := NewValidator(cfg, logging.NewConsole("error"))

	res := validator.ValidateBytes(pngBytes(t, 16, 16), "png")
	if res.IsValid {
		t.Fatal("16x16 image should exceed the 8x8 cap")
	}
	if res.SecurityRisk != "dimensions too large" {
		t.Fatalf("unexpected risk %q", res.SecurityRisk)
	}
}

func TestValidatorEnforcesFileSizeCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFileSize = 16
	validator := NewValidator(cfg, logging.NewConsole("error"))

	res := validator.ValidateBytes(pngBytes(t, 4, 4), "png")
	if res.IsValid {
		t.Fatal("payload above the byte cap should be rejected")
	}
}

func TestValidatorRejectsUnapprovedFormat(t *testing.T) {
	validator := NewValidator(testConfig(), logging.NewConsole("error"))
	res := validator.ValidateBytes(pngBytes(t, 4, 4), "tiff")
	if res.IsValid {
		t.Fatal("tiff is not on the allow list")
	}
}

func TestProcessAllFailsFast(t *testing.T) {
	pipe := NewPipeline(testConfig(), logging.NewConsole("error"))
	good := base64.StdEncoding.EncodeToString(pngBytes(t, 4, 4))

	_, err := pipe.ProcessAll([]Payload{
		{Data: good, Format: "png"},
		{Data: "broken"},
	})
	if !errors.IsCode(err, errors.CodeImageDecode) {
		t.Fatalf("expected image_decode_failed, got %v", err)
	}

	out, err := pipe.ProcessAll([]Payload{{Data: good, Format: "png"}})
	if err != nil || len(out) != 1 {
		t.Fatalf("valid batch failed: %v", err)
	}
}
