package serialization

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/goccy/go-json"

	"github.com/born-ml/sentiment/internal/tensor"
)

// BornWriter writes models in .born format.
type BornWriter struct {
	w      io.Writer
	closed bool

	// File writers only: data goes to file and is renamed to path on Close.
	file    *os.File
	path    string
	written bool
	err     error
}

// NewBornWriter creates a .born writer for path. Nothing at path changes
// until Close succeeds after a complete write.
func NewBornWriter(path string) (*BornWriter, error) {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &BornWriter{w: file, file: file, path: path}, nil
}

// NewWriter wraps an arbitrary io.Writer. Close does not close w.
func NewWriter(w io.Writer) *BornWriter {
	return &BornWriter{w: w}
}

// WriteStateDict writes a state dictionary to the .born file.
//
// The state dictionary is a map from parameter names to tensors.
func (w *BornWriter) WriteStateDict(stateDict map[string]*tensor.RawTensor, modelType string, metadata map[string]string) error {
	return w.WriteStateDictWithHeader(stateDict, Header{
		ModelType: modelType,
		Metadata:  metadata,
	})
}

// WriteStateDictWithHeader writes a state dictionary with a caller-supplied header.
//
// FormatVersion, CreatedAt (when zero) and Tensors are filled in by the writer.
// This is how training checkpoints attach CheckpointMeta.
func (w *BornWriter) WriteStateDictWithHeader(stateDict map[string]*tensor.RawTensor, header Header) error {
	if w.closed {
		return ErrClosed
	}
	if err := w.writeStateDict(stateDict, header); err != nil {
		w.err = err
		return err
	}
	w.written = true
	return nil
}

func (w *BornWriter) writeStateDict(stateDict map[string]*tensor.RawTensor, header Header) error {

	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	slices.Sort(names)

	header.FormatVersion = FormatVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Calculate tensor offsets and collect tensor data
	var currentOffset int64
	var data []byte
	header.Tensors = make([]TensorMeta, 0, len(names))
	for _, name := range names {
		raw := stateDict[name]
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  raw.DType().String(),
			Shape:  []int(raw.Shape().Clone()),
			Offset: currentOffset,
			Size:   size,
		})
		data = append(data, raw.Data()...)
		currentOffset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.CheckpointMeta != nil {
		flags |= FlagHasCheckpoint
	}

	checksum := dataChecksum(data)

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	headerEnd := int64(FixedHeaderSize) + int64(len(headerJSON))
	if padding := alignedDataOffset(int64(len(headerJSON))) - headerEnd; padding > 0 {
		if _, err := w.w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// Close finishes the write. A file writer renames its temporary file over
// the target path; if no state dict was written, or a write failed, the
// temporary file is removed and the target is left as it was.
func (w *BornWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.file == nil {
		return nil
	}

	tmp := w.file.Name()
	if !w.written || w.err != nil {
		_ = w.file.Close()
		_ = os.Remove(tmp)
		return nil
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := w.file.Chmod(0o644); err != nil {
		_ = w.file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", w.path, err)
	}
	return nil
}
