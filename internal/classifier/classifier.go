// Package classifier implements the recurrent sentiment classifier.
//
// Architecture:
//
//	tokens [T, B] -> Embedding -> [T, B, E]
//	       -> pack by lengths -> RNN (LSTM or tanh) -> h_n [L, B, H]
//	       -> top layer [B, H] -> Linear(H, 1) -> Sigmoid -> [B]
//
// Example:
//
//	model, err := classifier.New(classifier.Config{
//	    NumEmbeddings: 10, EmbeddingDim: 4, HiddenSize: 8, UseLSTM: true,
//	}, autodiff.New(cpu.New()))
//	probs, err := model.Forward(tokens, []int{5, 3})
package classifier

import (
	"fmt"
	"strings"

	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/tensor"
)

// PaddingIdx is the token id whose embedding is the zero vector.
const PaddingIdx = 0

// State dict prefixes.
const (
	embeddingPrefix = "embedding."
	rnnPrefix       = "rnn."
	headPrefix      = "classifier."
)

// RNNClassifier maps batches of token sequences to positive-class probabilities.
//
// Forward is deterministic. The classifier holds no per-call state, but the
// backend it was built with may (an autodiff tape), so callers sharing one
// instance across goroutines must serialize Forward themselves.
type RNNClassifier[B tensor.Backend] struct {
	cfg       Config
	backend   B
	embedding *nn.Embedding[B]
	rnn       *nn.RNN[B]
	head      *nn.Sequential[B]
}

// New builds a classifier with freshly initialized parameters.
func New[B tensor.Backend](cfg Config, backend B) (*RNNClassifier[B], error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode := nn.ModeTanh
	if cfg.UseLSTM {
		mode = nn.ModeLSTM
	}

	return &RNNClassifier[B]{
		cfg:       cfg,
		backend:   backend,
		embedding: nn.NewEmbedding(cfg.NumEmbeddings, cfg.EmbeddingDim, PaddingIdx, backend),
		rnn: nn.NewRNN(nn.RNNConfig{
			Mode:       mode,
			InputSize:  cfg.EmbeddingDim,
			HiddenSize: cfg.HiddenSize,
			NumLayers:  cfg.NumLayers,
		}, backend),
		head: nn.NewSequential[B](
			nn.NewLinear(cfg.HiddenSize, 1, backend),
			nn.NewSigmoid[B](),
		),
	}, nil
}

// Config returns the classifier's hyperparameters.
func (m *RNNClassifier[B]) Config() Config {
	return m.cfg
}

// Backend returns the backend the parameters live on.
func (m *RNNClassifier[B]) Backend() B {
	return m.backend
}

// Forward returns one probability per sequence.
//
// sequence is a time-major [T, B] batch of token ids. lengths gives each
// sequence's true length in [1, T]; nil means every sequence spans all T
// steps. Lengths need not be sorted. The result has shape [B] in the
// caller's batch order.
func (m *RNNClassifier[B]) Forward(sequence *tensor.Tensor[int32, B], lengths []int) (*tensor.Tensor[float32, B], error) {
	if err := m.validate(sequence, lengths); err != nil {
		return nil, err
	}
	shape := sequence.Shape()
	steps, batch := shape[0], shape[1]

	if lengths == nil {
		lengths = make([]int, batch)
		for i := range lengths {
			lengths[i] = steps
		}
	}

	embedded := m.embedding.Forward(sequence)
	packed, err := nn.PackPaddedSequence(embedded, lengths, false)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	_, state, err := m.rnn.Forward(packed)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	top := state.H.Narrow(0, m.cfg.NumLayers-1, 1).Reshape(batch, m.cfg.HiddenSize)
	return m.head.Forward(top).Reshape(batch), nil
}

// Predict runs Forward and copies the probabilities out.
func (m *RNNClassifier[B]) Predict(sequence *tensor.Tensor[int32, B], lengths []int) ([]float32, error) {
	probs, err := m.Forward(sequence, lengths)
	if err != nil {
		return nil, err
	}
	out := make([]float32, probs.NumElements())
	copy(out, probs.Data())
	return out, nil
}

func (m *RNNClassifier[B]) validate(sequence *tensor.Tensor[int32, B], lengths []int) error {
	shape := sequence.Shape()
	if len(shape) != 2 {
		return fmt.Errorf("classifier: expected sequence [T, B], got shape %v", shape)
	}
	steps, batch := shape[0], shape[1]

	if lengths != nil {
		if len(lengths) != batch {
			return fmt.Errorf("classifier: %w: got %d lengths for batch size %d", nn.ErrInvalidLength, len(lengths), batch)
		}
		for b, l := range lengths {
			if l < 1 || l > steps {
				return fmt.Errorf("classifier: %w: lengths[%d] = %d, want 1..%d", nn.ErrInvalidLength, b, l, steps)
			}
		}
	}

	for i, id := range sequence.Data() {
		if id < 0 || int(id) >= m.cfg.NumEmbeddings {
			return fmt.Errorf("classifier: token %d at position (%d, %d) out of range [0, %d)",
				id, i/batch, i%batch, m.cfg.NumEmbeddings)
		}
	}
	return nil
}

// Parameters returns every trainable parameter: embedding, recurrent layers, head.
func (m *RNNClassifier[B]) Parameters() []*nn.Parameter[B] {
	params := append([]*nn.Parameter[B]{}, m.embedding.Parameters()...)
	params = append(params, m.rnn.Parameters()...)
	return append(params, m.head.Parameters()...)
}

// NumParameters returns the total number of trainable scalars.
func (m *RNNClassifier[B]) NumParameters() int {
	n := 0
	for _, p := range m.Parameters() {
		n += p.Tensor().NumElements()
	}
	return n
}

// StateDict returns every parameter keyed as embedding.*, rnn.* and classifier.*.
func (m *RNNClassifier[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for prefix, part := range m.parts() {
		for name, raw := range part.StateDict() {
			stateDict[prefix+name] = raw
		}
	}
	return stateDict
}

// LoadStateDict copies parameters from a state dict keyed like StateDict.
func (m *RNNClassifier[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for prefix, part := range m.parts() {
		sub := make(map[string]*tensor.RawTensor)
		for key, raw := range stateDict {
			if name, ok := strings.CutPrefix(key, prefix); ok {
				sub[name] = raw
			}
		}
		if err := part.LoadStateDict(sub); err != nil {
			return fmt.Errorf("classifier: load %s: %w", strings.TrimSuffix(prefix, "."), err)
		}
	}
	return nil
}

func (m *RNNClassifier[B]) parts() map[string]nn.Stateful {
	return map[string]nn.Stateful{
		embeddingPrefix: m.embedding,
		rnnPrefix:       m.rnn,
		headPrefix:      m.head,
	}
}
