package nn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/sentiment/internal/tensor"
)

// Sequential feeds each module's output into the next.
//
//	head := nn.NewSequential[B](
//	    nn.NewLinear(hidden, 1, backend),
//	    nn.NewSigmoid[B](),
//	)
//	probs := head.Forward(h) // [batch, 1]
//
// State dict keys are prefixed with the module index, so the head above
// saves "0.weight" and "0.bias".
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential chains modules in the given order.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{modules: modules}
}

// Forward runs x through every module.
func (s *Sequential[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	for _, m := range s.modules {
		x = m.Forward(x)
	}
	return x
}

// Parameters concatenates the parameters of every module in order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// Add appends m to the chain.
func (s *Sequential[B]) Add(m Module[B]) { s.modules = append(s.modules, m) }

// Len is the number of modules.
func (s *Sequential[B]) Len() int { return len(s.modules) }

// Module returns the i-th module and panics when i is out of range.
func (s *Sequential[B]) Module(i int) Module[B] {
	if i < 0 || i >= len(s.modules) {
		panic(fmt.Sprintf("nn.Sequential: module %d of %d", i, len(s.modules)))
	}
	return s.modules[i]
}

// StateDict merges the state of every Stateful module under its index.
func (s *Sequential[B]) StateDict() map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	s.eachStateful(func(prefix string, m Stateful) error {
		for name, raw := range m.StateDict() {
			out[prefix+name] = raw
		}
		return nil
	})
	return out
}

// LoadStateDict hands each Stateful module the entries under its index.
func (s *Sequential[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return s.eachStateful(func(prefix string, m Stateful) error {
		sub := make(map[string]*tensor.RawTensor)
		for key, raw := range stateDict {
			if name, ok := strings.CutPrefix(key, prefix); ok {
				sub[name] = raw
			}
		}
		if err := m.LoadStateDict(sub); err != nil {
			return fmt.Errorf("module %s: %w", strings.TrimSuffix(prefix, "."), err)
		}
		return nil
	})
}

func (s *Sequential[B]) eachStateful(fn func(prefix string, m Stateful) error) error {
	for i, m := range s.modules {
		st, ok := m.(Stateful)
		if !ok {
			continue
		}
		if err := fn(strconv.Itoa(i)+".", st); err != nil {
			return err
		}
	}
	return nil
}
