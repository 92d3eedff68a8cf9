package image

import (
	"encoding/base64"
	"fmt"

	"tarotvision-server-go/internal/platform/config"
	"tarotvision-server-go/internal/platform/errors"
	"tarotvision-server-go/internal/platform/logging"
)

// Pipeline turns client payloads into validated raw bytes ready for
// embedding. Any rejection carries the image_decode_failed code so the
// client knows a retake is the fix.
type Pipeline struct {
	validator *Validator
	logger    *logging.Logger
}

func NewPipeline(cfg config.SecurityConfig, logger *logging.Logger) *Pipeline {
	return &Pipeline{
		validator: NewValidator(cfg, logger),
		logger:    logger,
	}
}

// Process decodes and validates one payload, returning the raw bytes.
func (p *Pipeline) Process(payload Payload) ([]byte, error) {
	if payload.Data == "" {
		return nil, errors.Coded(errors.CodeImageDecode, "image.process",
			"missing image payload")
	}

	raw, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return nil, errors.CodedWrap(errors.CodeImageDecode, "image.process",
			"decode base64 payload", err)
	}

	validation := p.validator.ValidateBytes(raw, payload.Format)
	if !validation.IsValid {
		if validation.SecurityRisk != "" {
			p.logger.WarnTag("IMAGE", "payload rejected: %s", validation.SecurityRisk)
		}
		cause := validation.Error
		if cause == nil {
			cause = fmt.Errorf("image validation failed")
		}
		return nil, errors.CodedWrap(errors.CodeImageDecode, "image.process",
			"validate image payload", cause)
	}
	return raw, nil
}

// ProcessAll runs every payload through Process, failing fast on the
// first invalid one.
func (p *Pipeline) ProcessAll(payloads []Payload) ([][]byte, error) {
	out := make([][]byte, len(payloads))
	for i, payload := range payloads {
		raw, err := p.Process(payload)
		if err != nil {
			return nil, errors.CodedWrap(errors.CodeOf(err), "image.process",
				fmt.Sprintf("payload at index %d", i), err)
		}
		out[i] = raw
	}
	return out, nil
}
