// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training the classifier.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - ClipGradNorm: global L2 gradient clipping
//
// Optimizers update parameter storage directly, so a Step never lands on the
// gradient tape.
//
// # Training Loop Pattern
//
//	backend := autodiff.New(cpu.New())
//	model, _ := classifier.New(cfg, backend)
//	criterion := nn.NewBCELoss[*autodiff.Backend[*cpu.Backend]]()
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
//
//	for _, batch := range batches {
//	    backend.Tape().Clear()
//	    backend.Tape().StartRecording()
//
//	    probs, err := model.Forward(batch.Tokens, batch.Lengths)
//	    if err != nil {
//	        return err
//	    }
//	    loss := criterion.Forward(probs, batch.Labels)
//	    grads := autodiff.Backward(loss, backend)
//
//	    optim.ClipGradNorm(model.Parameters(), grads, 5)
//	    optimizer.Step(grads)
//	    optimizer.ZeroGrad()
//	    backend.Tape().StopRecording()
//	}
package optim
