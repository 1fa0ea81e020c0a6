// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/tensor"
)

// Packing errors.
var (
	ErrUnsortedLengths = nn.ErrUnsortedLengths
	ErrInvalidLength   = nn.ErrInvalidLength
)

// PackedSequence is a padded batch with the padding removed.
type PackedSequence[B tensor.Backend] = nn.PackedSequence[B]

// PackPaddedSequence packs a padded time-major [T, B, F] batch.
func PackPaddedSequence[B tensor.Backend](input *tensor.Tensor[float32, B], lengths []int, enforceSorted bool) (*PackedSequence[B], error) {
	return nn.PackPaddedSequence(input, lengths, enforceSorted)
}

// PadPackedSequence unpacks into a [T, B, F] tensor in the caller's batch
// order, filling positions past each sequence's end with paddingValue.
func PadPackedSequence[B tensor.Backend](packed *PackedSequence[B], paddingValue float32, totalLength int) (*tensor.Tensor[float32, B], []int) {
	return nn.PadPackedSequence(packed, paddingValue, totalLength)
}

// Mode selects the recurrent cell of an RNN.
type Mode = nn.Mode

// Supported recurrent cells.
const (
	ModeLSTM = nn.ModeLSTM
	ModeTanh = nn.ModeTanh
)

// RNNCell is a single tanh recurrent step.
type RNNCell[B tensor.Backend] = nn.RNNCell[B]

// NewRNNCell creates a tanh cell.
func NewRNNCell[B tensor.Backend](inputSize, hiddenSize int, backend B) *RNNCell[B] {
	return nn.NewRNNCell(inputSize, hiddenSize, backend)
}

// LSTMCell is a single LSTM step with gates ordered input, forget, cell, output.
type LSTMCell[B tensor.Backend] = nn.LSTMCell[B]

// NewLSTMCell creates an LSTM cell.
func NewLSTMCell[B tensor.Backend](inputSize, hiddenSize int, backend B) *LSTMCell[B] {
	return nn.NewLSTMCell(inputSize, hiddenSize, backend)
}

// RNNConfig configures a stacked recurrent network.
type RNNConfig = nn.RNNConfig

// State holds the final hidden (and, for LSTMs, cell) states.
type State[B tensor.Backend] = nn.State[B]

// RNN is a stack of recurrent layers running over packed sequences.
type RNN[B tensor.Backend] = nn.RNN[B]

// NewRNN creates a recurrent stack.
//
// Example:
//
//	rnn := nn.NewRNN(nn.RNNConfig{Mode: nn.ModeLSTM, InputSize: 64, HiddenSize: 128, NumLayers: 1}, backend)
func NewRNN[B tensor.Backend](cfg RNNConfig, backend B) *RNN[B] {
	return nn.NewRNN(cfg, backend)
}
