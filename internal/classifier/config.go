package classifier

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate and New for unusable hyperparameters.
var ErrInvalidConfig = errors.New("invalid classifier config")

// Config holds the classifier hyperparameters.
//
// A Config is a plain value: the classifier keeps its own copy and exposes
// it read-only through RNNClassifier.Config.
type Config struct {
	NumEmbeddings int  `json:"num_embeddings" yaml:"num_embeddings"` // Vocabulary size, index 0 is padding
	EmbeddingDim  int  `json:"embedding_dim" yaml:"embedding_dim"`   // Width of each token vector
	HiddenSize    int  `json:"hidden_size" yaml:"hidden_size"`       // Recurrent state width
	UseLSTM       bool `json:"use_lstm" yaml:"use_lstm"`             // Gated-memory cell instead of tanh RNN
	NumLayers     int  `json:"num_layers" yaml:"num_layers"`         // Stacked recurrent layers (default: 1)
}

// DefaultConfig returns a small LSTM configuration. NumEmbeddings is left
// at zero and must be set from the tokenizer's vocabulary size.
func DefaultConfig() Config {
	return Config{
		EmbeddingDim: 64,
		HiddenSize:   128,
		UseLSTM:      true,
		NumLayers:    1,
	}
}

// WithDefaults returns a copy of c with zero-valued optional fields filled in.
func (c Config) WithDefaults() Config {
	if c.NumLayers == 0 {
		c.NumLayers = 1
	}
	return c
}

// Validate checks that every size is positive.
func (c Config) Validate() error {
	switch {
	case c.NumEmbeddings <= 0:
		return fmt.Errorf("%w: num_embeddings must be > 0, got %d", ErrInvalidConfig, c.NumEmbeddings)
	case c.EmbeddingDim <= 0:
		return fmt.Errorf("%w: embedding_dim must be > 0, got %d", ErrInvalidConfig, c.EmbeddingDim)
	case c.HiddenSize <= 0:
		return fmt.Errorf("%w: hidden_size must be > 0, got %d", ErrInvalidConfig, c.HiddenSize)
	case c.NumLayers <= 0:
		return fmt.Errorf("%w: num_layers must be > 0, got %d", ErrInvalidConfig, c.NumLayers)
	}
	return nil
}

// CellType names the recurrent cell, "lstm" or "rnn_tanh".
func (c Config) CellType() string {
	if c.UseLSTM {
		return "lstm"
	}
	return "rnn_tanh"
}
