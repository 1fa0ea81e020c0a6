// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/optim"
	"github.com/born-ml/sentiment/internal/tensor"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	model, _ := classifier.New(cfg, autodiff.New(cpu.New()))
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1, Momentum: 0.9})
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	return optim.NewSGD(params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam[B tensor.Backend] = optim.Adam[B]

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	return optim.NewAdam(params, config)
}

// ClipGradNorm rescales the gradients of params in place so their global L2
// norm is at most maxNorm, and returns the norm before clipping.
func ClipGradNorm[B tensor.Backend](params []*nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor, maxNorm float64) float64 {
	return optim.ClipGradNorm(params, grads, maxNorm)
}
