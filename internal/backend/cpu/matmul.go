package cpu

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/parallel"
	"github.com/born-ml/sentiment/internal/tensor"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N)
// Rows of the result are computed in parallel once M is large enough.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]

	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result := cpu.alloc("matmul", tensor.Shape{m, n}, a.DType())

	switch a.DType() {
	case tensor.Float32:
		matmulTyped(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n, cpu.parallel)
	case tensor.Float64:
		matmulTyped(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n, cpu.parallel)
	case tensor.Int32:
		matmulTyped(result.AsInt32(), a.AsInt32(), b.AsInt32(), m, k, n, cpu.parallel)
	case tensor.Int64:
		matmulTyped(result.AsInt64(), a.AsInt64(), b.AsInt64(), m, k, n, cpu.parallel)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}

	return result
}

// matmulTyped computes C[i,j] = sum_k A[i,k] * B[k,j] with an i-k-j loop
// order so the inner loop walks B and C contiguously.
func matmulTyped[T number](c, a, b []T, m, k, n int, cfg parallel.Config) {
	parallel.Chunks(m, cfg, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			row := c[i*n : (i+1)*n]
			for p, av := range a[i*k : (i+1)*k] {
				for j, bv := range b[p*n : (p+1)*n] {
					row[j] += av * bv
				}
			}
		}
	})
}
