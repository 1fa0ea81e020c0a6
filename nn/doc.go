// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network modules behind the sentiment classifier.
//
// # Overview
//
// This package contains:
//   - Linear and Embedding layers
//   - Sigmoid and Tanh activations
//   - PackedSequence packing for variable-length, padded batches
//   - RNNCell, LSTMCell and the stacked RNN that runs over packed input
//   - BCELoss for binary targets
//   - Sequential for stacking float-to-float modules
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/sentiment/backend/cpu"
//	    "github.com/born-ml/sentiment/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    embed := nn.NewEmbedding(10, 4, 0, backend)
//	    rnn := nn.NewRNN(nn.RNNConfig{Mode: nn.ModeLSTM, InputSize: 4, HiddenSize: 8}, backend)
//
//	    packed, err := nn.PackPaddedSequence(embed.Forward(ids), []int{5, 3}, true)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    _, state, err := rnn.Forward(packed)
//	    // state.H: [1, 2, 8]
//	}
//
// # Packing
//
// PackPaddedSequence drops padded time steps so recurrent layers never read
// them. With enforceSorted the lengths must be non-increasing; otherwise the
// batch is sorted internally and final states come back in the caller's order.
//
// # Initialization
//
// Weights are drawn from a package-level generator. Call Seed before building
// a model to make initialization reproducible.
package nn
