// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package classifier provides the RNN sentiment classifier.
//
// The model embeds a time-major batch of token ids, runs an LSTM or tanh RNN
// over the packed sequences, and maps the top layer's final hidden state to
// one probability per sequence through Linear and Sigmoid.
//
// Example:
//
//	import (
//	    "github.com/born-ml/sentiment/backend/cpu"
//	    "github.com/born-ml/sentiment/classifier"
//	    "github.com/born-ml/sentiment/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    model, err := classifier.New(classifier.Config{
//	        NumEmbeddings: 10,
//	        EmbeddingDim:  4,
//	        HiddenSize:    8,
//	        UseLSTM:       true,
//	    }, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    ids, _ := tensor.FromSlice([]int32{1, 2, 3, 4, 5, 6, 7, 0, 9, 0}, tensor.Shape{5, 2}, backend)
//	    probs, err := model.Forward(ids, []int{5, 3}) // shape [2], values in (0, 1)
//	}
package classifier

import (
	"github.com/born-ml/sentiment/internal/classifier"
	"github.com/born-ml/sentiment/internal/serialization"
	"github.com/born-ml/sentiment/internal/server"
	"github.com/born-ml/sentiment/tensor"
)

// PaddingIdx is the token id that embeds to the zero vector.
const PaddingIdx = classifier.PaddingIdx

// ModelType is the model_type recorded in saved model files.
const ModelType = classifier.ModelType

// ErrInvalidConfig is returned for unusable hyperparameters.
var ErrInvalidConfig = classifier.ErrInvalidConfig

// Config holds the classifier hyperparameters.
type Config = classifier.Config

// DefaultConfig returns a small LSTM configuration with NumEmbeddings unset.
func DefaultConfig() Config {
	return classifier.DefaultConfig()
}

// RNNClassifier is the embedding, recurrent and sigmoid-head model.
type RNNClassifier[B tensor.Backend] = classifier.RNNClassifier[B]

// New creates a classifier with freshly initialized parameters.
func New[B tensor.Backend](cfg Config, backend B) (*RNNClassifier[B], error) {
	return classifier.New(cfg, backend)
}

// Header describes a saved model file.
type Header = serialization.Header

// Load reads a classifier saved with RNNClassifier.Save.
func Load[B tensor.Backend](path string, backend B) (*RNNClassifier[B], Header, error) {
	return classifier.Load(path, backend)
}

// Predictor classifies raw texts with a loaded model and its tokenizer.
// It is safe for concurrent use.
type Predictor = server.Server

// PredictOptions configures a Predictor.
type PredictOptions = server.Options

// Prediction is one classified text.
type Prediction = server.Prediction

// LoadPredictor opens a model file written by the training command, whose
// metadata records the tokenizer it was trained with.
//
// Example:
//
//	p, err := classifier.LoadPredictor("model.born", classifier.PredictOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	preds, err := p.Predict([]string{"a quiet, lovely film"})
func LoadPredictor(path string, opts PredictOptions) (*Predictor, error) {
	model, tok, header, err := server.LoadModel(path)
	if err != nil {
		return nil, err
	}
	return server.New(model, tok, header, opts, nil), nil
}
