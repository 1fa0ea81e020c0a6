package serialization

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/born-ml/sentiment/internal/tensor"
)

// BornReader reads models from .born format.
//
// The whole data section is loaded and verified against the stored
// checksum when the reader is created.
type BornReader struct {
	header   Header
	flags    uint32
	checksum [ChecksumSize]byte
	data     []byte
	closer   io.Closer
	closed   bool
}

// NewBornReader opens and verifies a .born file.
func NewBornReader(path string) (*BornReader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader, err := NewReader(file)
	if err != nil {
		_ = file.Close() // Best effort close on error
		return nil, err
	}
	reader.closer = file
	return reader, nil
}

// NewReader parses and verifies a .born stream.
func NewReader(r io.Reader) (*BornReader, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	reader := &BornReader{
		flags: binary.LittleEndian.Uint32(fixed[8:12]),
	}
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	copy(reader.checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerBytes, &reader.header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	padding := alignedDataOffset(int64(headerSize)) - int64(FixedHeaderSize) - int64(headerSize)
	if _, err := io.CopyN(io.Discard, r, padding); err != nil {
		return nil, fmt.Errorf("failed to skip padding: %w", err)
	}

	var data bytes.Buffer
	//nolint:gosec // G115: a corrupt size fails on read or checksum
	if _, err := io.CopyN(&data, r, int64(dataSize)); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	reader.data = data.Bytes()

	if err := verifyChecksum(reader.data, reader.checksum); err != nil {
		return nil, err
	}
	if err := ValidateHeader(&reader.header, int64(len(reader.data))); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return reader, nil
}

// Header returns the file header.
func (r *BornReader) Header() Header {
	return r.header
}

// Flags returns the raw flag bits from the fixed header.
func (r *BornReader) Flags() uint32 {
	return r.flags
}

// Checksum returns the stored SHA-256 of the data section.
func (r *BornReader) Checksum() [ChecksumSize]byte {
	return r.checksum
}

// Metadata returns the metadata map from the header.
func (r *BornReader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns a list of all tensor names in the file.
func (r *BornReader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *BornReader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			meta := r.header.Tensors[i]
			return &meta, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
}

// LoadTensor copies a single tensor out of the file.
func (r *BornReader) LoadTensor(name string) (*tensor.RawTensor, error) {
	if r.closed {
		return nil, ErrClosed
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	// ValidateHeader already checked dtype and shape.
	dtype, _ := tensor.ParseDataType(meta.DType)
	raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("failed to create tensor %s: %w", name, err)
	}
	copy(raw.Data(), r.data[meta.Offset:meta.Offset+meta.Size])
	return raw, nil
}

// ReadStateDict reads all tensors into a state dictionary.
func (r *BornReader) ReadStateDict() (map[string]*tensor.RawTensor, error) {
	if r.closed {
		return nil, ErrClosed
	}

	stateDict := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		raw, err := r.LoadTensor(meta.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load tensor %s: %w", meta.Name, err)
		}
		stateDict[meta.Name] = raw
	}
	return stateDict, nil
}

// Close releases the reader and closes the underlying file, if any.
func (r *BornReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.data = nil
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
