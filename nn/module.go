// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/serialization"
	"github.com/born-ml/sentiment/tensor"
)

// Module is the base interface for components mapping one float tensor to another.
//
// Modules can be composed to build the classifier head:
//
//	head := nn.NewSequential[B](
//	    nn.NewLinear(hidden, 1, backend),
//	    nn.NewSigmoid[B](),
//	)
type Module[B tensor.Backend] = nn.Module[B]

// Stateful is implemented by modules whose parameters can be exported and
// restored by name.
type Stateful = nn.Stateful

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Seed reseeds the generator used for weight initialization.
func Seed(seed int64) {
	nn.Seed(seed)
}

// Save writes a module's state dictionary to a .born file.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(8, 1, backend)
//	err := nn.Save(layer, "head.born", "Linear", nil)
func Save(module Stateful, path, modelType string, metadata map[string]string) error {
	writer, err := serialization.NewBornWriter(path)
	if err != nil {
		return err
	}
	if err := writer.WriteStateDict(module.StateDict(), modelType, metadata); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// Load reads a .born file into module and returns the file's model type and
// metadata.
//
// Example:
//
//	layer := nn.NewLinear(8, 1, backend)
//	modelType, metadata, err := nn.Load("head.born", layer)
func Load(path string, module Stateful) (modelType string, metadata map[string]string, err error) {
	reader, err := serialization.NewBornReader(path)
	if err != nil {
		return "", nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	stateDict, err := reader.ReadStateDict()
	if err != nil {
		return "", nil, err
	}
	if err := module.LoadStateDict(stateDict); err != nil {
		return "", nil, err
	}
	header := reader.Header()
	return header.ModelType, header.Metadata, nil
}
