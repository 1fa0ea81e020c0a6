// Package cpu implements the pure Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/born-ml/sentiment/internal/parallel"
	"github.com/born-ml/sentiment/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// Every operation allocates its result; inputs are never written.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: parallel.DefaultConfig(),
	}
}

// WithParallel returns a copy of the backend using cfg for row-parallel kernels.
func (cpu *CPUBackend) WithParallel(cfg parallel.Config) *CPUBackend {
	c := *cpu
	c.parallel = cfg
	return &c
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

func (cpu *CPUBackend) alloc(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

// number is the set of element types the kernels are instantiated for.
type number interface {
	float32 | float64 | int32 | int64
}
