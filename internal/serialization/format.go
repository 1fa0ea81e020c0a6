package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes      = "BORN"
	FormatVersion   = 2    // With SHA-256 checksum in the fixed header
	HeaderAlignment = 64   // Align tensor data to 64 bytes
	FixedHeaderSize = 64   // Fixed binary header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Flags for the .born format.
const (
	FlagHasCheckpoint uint32 = 1 << 1 // bit 1: training checkpoint metadata included
	FlagHasMetadata   uint32 = 1 << 2 // bit 2: custom metadata included
)

// Header represents the JSON header in a .born file.
type Header struct {
	FormatVersion  int               `json:"format_version"`       // Version of the .born format
	ModelType      string            `json:"model_type"`           // Type of model (e.g., "RNNClassifier")
	CreatedAt      time.Time         `json:"created_at"`           // When the file was created
	Tensors        []TensorMeta      `json:"tensors"`              // Tensor metadata
	Metadata       map[string]string `json:"metadata"`             // Custom metadata
	CheckpointMeta *CheckpointMeta   `json:"checkpoint,omitempty"` // Checkpoint metadata (optional)
}

// CheckpointMeta contains training state information for checkpoints.
type CheckpointMeta struct {
	RunID         string  `json:"run_id"`         // Training run identifier
	Epoch         int     `json:"epoch"`          // Training epoch number
	Step          int64   `json:"step"`           // Training step number
	Loss          float64 `json:"loss"`           // Validation loss at checkpoint
	Accuracy      float64 `json:"accuracy"`       // Validation accuracy at checkpoint
	OptimizerType string  `json:"optimizer_type"` // Optimizer type ("sgd", "adam")
}

// TensorMeta describes a tensor in the .born file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "rnn.weight_ih_l0")
	DType  string `json:"dtype"`  // Data type (e.g., "float32")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section (bytes from start of tensor data)
	Size   int64  `json:"size"`   // Size in bytes
}

// alignedDataOffset returns where the data section starts for a JSON
// header of the given length.
func alignedDataOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	padding := (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
	return pos + padding
}
