package nn

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/tensor"
)

// NoPadding disables the padding row of an Embedding.
const NoPadding = -1

// Embedding is a lookup table that maps discrete indices to dense vectors.
//
// Architecture:
//   - Weight: [NumEmbed, EmbedDim] learnable parameter
//   - Forward: indices [...] -> embeddings [..., EmbedDim]
//   - Backward: gradients scatter-add to weight rows, except PaddingIdx
//
// The padding row starts at zero and never receives a gradient, so padded
// positions always embed to the zero vector.
//
// Example:
//
//	// Vocabulary of 10000 words, embedding dimension 128, index 0 is padding
//	embed := nn.NewEmbedding(10000, 128, 0, backend)
//	embeddings := embed.Forward(indices) // [T, B] -> [T, B, 128]
type Embedding[B tensor.Backend] struct {
	Weight     *Parameter[B] // Embedding weight matrix [NumEmbed, EmbedDim]
	NumEmbed   int           // Number of embeddings (vocabulary size)
	EmbedDim   int           // Embedding dimension (vector size)
	PaddingIdx int           // Row excluded from gradient updates, or NoPadding
}

// NewEmbedding creates a new Embedding layer with weights drawn from N(0, 1).
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim, paddingIdx int, backend B) *Embedding[B] {
	if paddingIdx >= numEmbeddings {
		panic(fmt.Sprintf("embedding: padding index %d out of range [0, %d)", paddingIdx, numEmbeddings))
	}

	weight := Normal(tensor.Shape{numEmbeddings, embeddingDim}, backend)
	if paddingIdx >= 0 {
		row := weight.Data()[paddingIdx*embeddingDim : (paddingIdx+1)*embeddingDim]
		for i := range row {
			row[i] = 0
		}
	}

	return &Embedding[B]{
		Weight:     NewParameter("weight", weight),
		NumEmbed:   numEmbeddings,
		EmbedDim:   embeddingDim,
		PaddingIdx: paddingIdx,
	}
}

// Forward performs embedding lookup.
//
// Panics if any index is out of bounds [0, NumEmbed).
func (e *Embedding[B]) Forward(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return e.Weight.Tensor().Embedding(indices, e.PaddingIdx)
}

// Parameters returns the list of trainable parameters.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.Weight}
}

// StateDict returns {"weight"}.
func (e *Embedding[B]) StateDict() map[string]*tensor.RawTensor {
	return stateDictOf(e.Parameters())
}

// LoadStateDict loads the weight from a state dictionary.
func (e *Embedding[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadParams(e.Parameters(), stateDict)
}
