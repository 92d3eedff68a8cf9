package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfig    Kind = "config"
	KindDomain    Kind = "domain"
	KindTransport Kind = "transport"
	KindPlatform  Kind = "platform"
	KindBootstrap Kind = "bootstrap"
	KindStorage   Kind = "storage"
	KindVision    Kind = "vision"
	KindUnknown   Kind = "unknown"
)

// Code is a stable, client-visible error identifier. Transport layers
// surface it unchanged so UIs can branch on it without string matching.
type Code string

const (
	CodeModelUnavailable      Code = "model_unavailable"
	CodeImageDecode           Code = "image_decode_failed"
	CodeDimensionMismatch     Code = "dimension_mismatch"
	CodeInsufficientImages    Code = "insufficient_images"
	CodeTooManyImages         Code = "too_many_images"
	CodeLowConfidenceMismatch Code = "low_confidence_mismatch"
	CodeProofMissing          Code = "proof_missing"
	CodeProofMalformed        Code = "proof_malformed"
	CodeProofExpired          Code = "proof_expired"
	CodeProofSignatureInvalid Code = "proof_signature_invalid"
	CodeProofTampered         Code = "proof_tampered"
	CodeProofScopeMismatch    Code = "proof_scope_mismatch"
	CodeProofReplayed         Code = "proof_replayed"
)

type Error struct {
	Kind    Kind
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// Coded builds a vision error carrying a stable client-visible code.
func Coded(code Code, op, message string) *Error {
	return &Error{
		Kind:    KindVision,
		Code:    code,
		Op:      op,
		Message: message,
	}
}

// CodedWrap attaches a code while preserving the underlying cause.
func CodedWrap(code Code, op, message string, err error) *Error {
	return &Error{
		Kind:    KindVision,
		Code:    code,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

// IsKind checks whether any error in the chain matches the provided kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	for err != nil {
		if errors.As(err, &target) {
			return target.Kind == kind
		}
		err = errors.Unwrap(err)
	}
	return false
}

// CodeOf extracts the stable code from an error chain, or "" when the
// error carries none.
func CodeOf(err error) Code {
	var target *Error
	for err != nil {
		if errors.As(err, &target) {
			if target.Code != "" {
				return target.Code
			}
			err = target.Cause
			continue
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// IsCode reports whether the error chain carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
