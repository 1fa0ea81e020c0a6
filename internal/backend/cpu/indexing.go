package cpu

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/tensor"
)

// Embedding performs an embedding lookup.
//
// weight: [num_embeddings, embedding_dim]
// indices: int32 of any shape
// result: indices.Shape() + [embedding_dim]
//
// paddingIdx only affects the backward pass and is ignored here.
func (cpu *CPUBackend) Embedding(weight, indices *tensor.RawTensor, _ int) *tensor.RawTensor {
	wShape := weight.Shape()
	if len(wShape) != 2 {
		panic(fmt.Sprintf("embedding: weight must be 2D, got shape %v", wShape))
	}
	if indices.DType() != tensor.Int32 {
		panic(fmt.Sprintf("embedding: indices must be int32, got %s", indices.DType()))
	}

	numEmbeddings, dim := wShape[0], wShape[1]

	outShape := append(indices.Shape().Clone(), dim)
	result := cpu.alloc("embedding", outShape, weight.DType())

	rowBytes := dim * weight.DType().Size()
	src := weight.Data()
	dst := result.Data()

	for i, idx := range indices.AsInt32() {
		row := int(idx)
		if row < 0 || row >= numEmbeddings {
			panic(fmt.Sprintf("embedding: index %d out of range [0, %d)", row, numEmbeddings))
		}
		copy(dst[i*rowBytes:(i+1)*rowBytes], src[row*rowBytes:(row+1)*rowBytes])
	}

	return result
}
