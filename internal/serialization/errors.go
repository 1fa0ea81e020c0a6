package serialization

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// Sentinel errors returned by readers and writers.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrChecksumMismatch   = errors.New("data checksum does not match header")
	ErrTensorNotFound     = errors.New("tensor not found")
	ErrClosed             = errors.New("use of closed model file")

	// ErrInvalidTensor is wrapped by every ValidationError.
	ErrInvalidTensor = errors.New("invalid tensor entry")
)

// ValidationError describes a malformed tensor entry in a header.
type ValidationError struct {
	Kind    string // "offset_overlap", "out_of_bounds", "invalid_dtype", ...
	Tensor  string
	Other   string // second tensor of an overlap
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch {
	case e.Other != "":
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Kind, e.Tensor, e.Other, e.Details)
	case e.Tensor != "":
		return fmt.Sprintf("%s: tensor %q: %s", e.Kind, e.Tensor, e.Details)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Details)
	}
}

// Unwrap returns ErrInvalidTensor.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidTensor
}

func dataChecksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

func verifyChecksum(data []byte, stored [ChecksumSize]byte) error {
	if got := dataChecksum(data); got != stored {
		return fmt.Errorf("%w: header has %x..., data hashes to %x...", ErrChecksumMismatch, stored[:4], got[:4])
	}
	return nil
}
