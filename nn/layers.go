// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/tensor"
)

// Layers

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(128, 1, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// NoPadding disables the padding row of an Embedding.
const NoPadding = nn.NoPadding

// Embedding is a lookup table that maps token ids to dense vectors.
type Embedding[B tensor.Backend] = nn.Embedding[B]

// NewEmbedding creates an embedding table. The paddingIdx row starts at zero
// and never receives a gradient; pass NoPadding to disable it.
//
// Example:
//
//	embed := nn.NewEmbedding(20000, 64, 0, backend)
//	vectors := embed.Forward(ids) // [T, B] -> [T, B, 64]
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim, paddingIdx int, backend B) *Embedding[B] {
	return nn.NewEmbedding(numEmbeddings, embeddingDim, paddingIdx, backend)
}

// Sequential chains modules, feeding each output into the next.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a container running modules in order.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Activations

// Sigmoid applies the logistic function element-wise.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Tanh applies the hyperbolic tangent element-wise.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a Tanh activation.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// Loss functions

// BCELoss is the mean binary cross-entropy between probabilities and 0/1 targets.
type BCELoss[B tensor.Backend] = nn.BCELoss[B]

// NewBCELoss creates a binary cross-entropy loss.
func NewBCELoss[B tensor.Backend]() *BCELoss[B] {
	return nn.NewBCELoss[B]()
}
