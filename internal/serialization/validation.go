package serialization

import (
	"fmt"
	"slices"
	"strings"

	"github.com/born-ml/sentiment/internal/tensor"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 16 * 1024 * 1024 // 16MB
	MaxTensorCount   = 10_000
	MaxTensorNameLen = 256
)

// ValidateTensorOffsets checks for overlapping tensor regions and
// regions that extend past the data section.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	sorted := slices.Clone(tensors)
	slices.SortFunc(sorted, func(a, b TensorMeta) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		default:
			return 0
		}
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Kind:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size),
			}
		}

		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Kind:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Kind:   "offset_overlap",
					Tensor: t.Name,
					Other:  next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// ValidateTensorName rejects empty, oversized, and path-like names.
func ValidateTensorName(name string) error {
	if name == "" {
		return &ValidationError{Kind: "invalid_name", Details: "empty tensor name"}
	}
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Kind:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return &ValidationError{
			Kind:    "invalid_name",
			Tensor:  name,
			Details: "contains a path separator, '..' or a null byte",
		}
	}
	return nil
}

// ValidateTensorMeta checks that a tensor's dtype and shape agree with its byte size.
func ValidateTensorMeta(meta TensorMeta) error {
	dtype, ok := tensor.ParseDataType(meta.DType)
	if !ok {
		return &ValidationError{Kind: "invalid_dtype", Tensor: meta.Name, Details: meta.DType}
	}
	shape := tensor.Shape(meta.Shape)
	if err := shape.Validate(); err != nil {
		return &ValidationError{Kind: "invalid_shape", Tensor: meta.Name, Details: err.Error()}
	}
	if want := int64(shape.NumElements() * dtype.Size()); want != meta.Size {
		return &ValidationError{
			Kind:    "size_mismatch",
			Tensor:  meta.Name,
			Details: fmt.Sprintf("shape %v of %s needs %d bytes, header says %d", shape, dtype, want, meta.Size),
		}
	}
	return nil
}

// ValidateHeader performs full header validation against the data section size.
func ValidateHeader(h *Header, dataSize int64) error {
	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Kind:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}

	seen := make(map[string]struct{}, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if _, dup := seen[t.Name]; dup {
			return &ValidationError{Kind: "duplicate_name", Tensor: t.Name, Details: "tensor listed twice"}
		}
		seen[t.Name] = struct{}{}
		if err := ValidateTensorMeta(t); err != nil {
			return err
		}
	}

	return ValidateTensorOffsets(h.Tensors, dataSize)
}
