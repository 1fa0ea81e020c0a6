package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/sentiment/internal/tensor"
)

// Mode selects the recurrent cell of an RNN.
type Mode int

// Supported recurrent cells.
const (
	// ModeLSTM uses gated-memory LSTM cells.
	ModeLSTM Mode = iota
	// ModeTanh uses plain Elman cells with a tanh nonlinearity.
	ModeTanh
)

// String returns the cell name.
func (m Mode) String() string {
	switch m {
	case ModeLSTM:
		return "lstm"
	case ModeTanh:
		return "rnn_tanh"
	default:
		return "unknown"
	}
}

// gates returns how many H-sized blocks a cell's weights stack.
func (m Mode) gates() int {
	if m == ModeLSTM {
		return 4
	}
	return 1
}

// cellParams holds the four parameters of one recurrent cell.
//
//	weight_ih [gates*H, in]
//	weight_hh [gates*H, H]
//	bias_ih   [gates*H]
//	bias_hh   [gates*H]
type cellParams[B tensor.Backend] struct {
	inputSize  int
	hiddenSize int
	weightIH   *Parameter[B]
	weightHH   *Parameter[B]
	biasIH     *Parameter[B]
	biasHH     *Parameter[B]
}

// newCellParams draws every parameter from U(-1/sqrt(H), 1/sqrt(H)).
func newCellParams[B tensor.Backend](mode Mode, inputSize, hiddenSize int, suffix string, backend B) cellParams[B] {
	bound := 1 / math.Sqrt(float64(hiddenSize))
	rows := mode.gates() * hiddenSize

	return cellParams[B]{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		weightIH:   NewParameter("weight_ih"+suffix, Uniform(-bound, bound, tensor.Shape{rows, inputSize}, backend)),
		weightHH:   NewParameter("weight_hh"+suffix, Uniform(-bound, bound, tensor.Shape{rows, hiddenSize}, backend)),
		biasIH:     NewParameter("bias_ih"+suffix, Uniform(-bound, bound, tensor.Shape{rows}, backend)),
		biasHH:     NewParameter("bias_hh"+suffix, Uniform(-bound, bound, tensor.Shape{rows}, backend)),
	}
}

func (c *cellParams[B]) parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weightIH, c.weightHH, c.biasIH, c.biasHH}
}

// stepWeights are the transposed weights used for one pass over a sequence.
type stepWeights[B tensor.Backend] struct {
	wIH, wHH, bIH, bHH *tensor.Tensor[float32, B]
}

func (c *cellParams[B]) stepWeights() stepWeights[B] {
	return stepWeights[B]{
		wIH: c.weightIH.Tensor().T(),
		wHH: c.weightHH.Tensor().T(),
		bIH: c.biasIH.Tensor(),
		bHH: c.biasHH.Tensor(),
	}
}

// preactivation computes x @ W_ih^T + b_ih + h @ W_hh^T + b_hh.
func (w stepWeights[B]) preactivation(x, h *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.MatMul(w.wIH).Add(w.bIH).Add(h.MatMul(w.wHH).Add(w.bHH))
}

func tanhStep[B tensor.Backend](w stepWeights[B], x, h *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return w.preactivation(x, h).Tanh()
}

// lstmStep applies one LSTM update. Gates are stacked in the order
// input, forget, cell, output.
func lstmStep[B tensor.Backend](
	w stepWeights[B],
	hiddenSize int,
	x, h, c *tensor.Tensor[float32, B],
) (hNext, cNext *tensor.Tensor[float32, B]) {
	gates := w.preactivation(x, h)

	i := gates.Narrow(1, 0, hiddenSize).Sigmoid()
	f := gates.Narrow(1, hiddenSize, hiddenSize).Sigmoid()
	g := gates.Narrow(1, 2*hiddenSize, hiddenSize).Tanh()
	o := gates.Narrow(1, 3*hiddenSize, hiddenSize).Sigmoid()

	cNext = f.Mul(c).Add(i.Mul(g))
	hNext = o.Mul(cNext.Tanh())
	return hNext, cNext
}

// RNNCell is an Elman recurrent cell: h' = tanh(x W_ih^T + b_ih + h W_hh^T + b_hh).
type RNNCell[B tensor.Backend] struct {
	cellParams[B]
}

// NewRNNCell creates a tanh cell.
func NewRNNCell[B tensor.Backend](inputSize, hiddenSize int, backend B) *RNNCell[B] {
	return &RNNCell[B]{newCellParams(ModeTanh, inputSize, hiddenSize, "", backend)}
}

// Forward computes the next hidden state from x [batch, in] and h [batch, H].
func (c *RNNCell[B]) Forward(x, h *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return tanhStep(c.stepWeights(), x, h)
}

// Parameters returns [weight_ih, weight_hh, bias_ih, bias_hh].
func (c *RNNCell[B]) Parameters() []*Parameter[B] {
	return c.parameters()
}

// LSTMCell is a long short-term memory cell.
//
//	i = σ(x W_ii + h W_hi + b_i)
//	f = σ(x W_if + h W_hf + b_f)
//	g = tanh(x W_ig + h W_hg + b_g)
//	o = σ(x W_io + h W_ho + b_o)
//	c' = f * c + i * g
//	h' = o * tanh(c')
type LSTMCell[B tensor.Backend] struct {
	cellParams[B]
}

// NewLSTMCell creates an LSTM cell.
func NewLSTMCell[B tensor.Backend](inputSize, hiddenSize int, backend B) *LSTMCell[B] {
	return &LSTMCell[B]{newCellParams(ModeLSTM, inputSize, hiddenSize, "", backend)}
}

// Forward computes the next (h, c) from x [batch, in], h and c [batch, H].
func (c *LSTMCell[B]) Forward(x, h, cell *tensor.Tensor[float32, B]) (hNext, cNext *tensor.Tensor[float32, B]) {
	return lstmStep(c.stepWeights(), c.hiddenSize, x, h, cell)
}

// Parameters returns [weight_ih, weight_hh, bias_ih, bias_hh].
func (c *LSTMCell[B]) Parameters() []*Parameter[B] {
	return c.parameters()
}

// RNNConfig configures a stacked recurrent network.
type RNNConfig struct {
	Mode       Mode
	InputSize  int
	HiddenSize int
	NumLayers  int
}

// State holds final recurrent states, each [NumLayers, batch, HiddenSize] in
// the caller's batch order. C is nil for ModeTanh.
type State[B tensor.Backend] struct {
	H *tensor.Tensor[float32, B]
	C *tensor.Tensor[float32, B]
}

// RNN is a stack of recurrent layers that runs over packed sequences.
//
// Layer k's parameters are named weight_ih_l{k}, weight_hh_l{k},
// bias_ih_l{k} and bias_hh_l{k}. Layer 0 reads InputSize features, every
// later layer reads the previous layer's hidden states.
//
// Example:
//
//	rnn := nn.NewRNN(nn.RNNConfig{Mode: nn.ModeLSTM, InputSize: 4, HiddenSize: 8, NumLayers: 1}, backend)
//	packed, _ := nn.PackPaddedSequence(embedded, lengths, false)
//	out, state, err := rnn.Forward(packed)
//	// state.H: [1, B, 8]
type RNN[B tensor.Backend] struct {
	cfg    RNNConfig
	layers []cellParams[B]
}

// NewRNN creates a recurrent stack. NumLayers of zero means one layer.
func NewRNN[B tensor.Backend](cfg RNNConfig, backend B) *RNN[B] {
	if cfg.NumLayers == 0 {
		cfg.NumLayers = 1
	}
	if cfg.InputSize <= 0 || cfg.HiddenSize <= 0 || cfg.NumLayers < 0 {
		panic(fmt.Sprintf("rnn: invalid config %+v", cfg))
	}

	layers := make([]cellParams[B], cfg.NumLayers)
	for k := range layers {
		in := cfg.InputSize
		if k > 0 {
			in = cfg.HiddenSize
		}
		layers[k] = newCellParams(cfg.Mode, in, cfg.HiddenSize, fmt.Sprintf("_l%d", k), backend)
	}

	return &RNN[B]{cfg: cfg, layers: layers}
}

// Config returns the network configuration.
func (r *RNN[B]) Config() RNNConfig {
	return r.cfg
}

// Forward runs every layer over packed.
//
// It returns the top layer's outputs as a PackedSequence laid out like the
// input, and the final states of every layer. A sequence's final state is
// taken at its own last time step, so padding never reaches it.
func (r *RNN[B]) Forward(packed *PackedSequence[B]) (*PackedSequence[B], State[B], error) {
	shape := packed.Data.Shape()
	if len(shape) != 2 || shape[1] != r.cfg.InputSize {
		return nil, State[B]{}, fmt.Errorf("rnn: expected packed data [N, %d], got %v", r.cfg.InputSize, shape)
	}
	total := 0
	for _, bt := range packed.BatchSizes {
		total += bt
	}
	if len(packed.BatchSizes) == 0 || total != shape[0] {
		return nil, State[B]{}, fmt.Errorf("rnn: batch sizes %v do not cover %d packed rows", packed.BatchSizes, shape[0])
	}

	data := packed.Data
	hs := make([]*tensor.Tensor[float32, B], len(r.layers))
	var cs []*tensor.Tensor[float32, B]
	if r.cfg.Mode == ModeLSTM {
		cs = make([]*tensor.Tensor[float32, B], len(r.layers))
	}

	for k := range r.layers {
		var hN, cN *tensor.Tensor[float32, B]
		data, hN, cN = r.runLayer(&r.layers[k], data, packed.BatchSizes)
		hs[k] = restoreOrder(hN, packed.UnsortedIndices)
		if cs != nil {
			cs[k] = restoreOrder(cN, packed.UnsortedIndices)
		}
	}

	state := State[B]{H: tensor.Stack(hs)}
	if cs != nil {
		state.C = tensor.Stack(cs)
	}

	out := &PackedSequence[B]{
		Data:            data,
		BatchSizes:      packed.BatchSizes,
		SortedIndices:   packed.SortedIndices,
		UnsortedIndices: packed.UnsortedIndices,
	}
	return out, state, nil
}

// runLayer runs one layer over packed rows and returns its packed outputs and
// final states in sorted batch order.
//
// When the batch size drops at step t, the rows that just finished are split
// off the running state. Rows finish from the end of the batch, so the final
// state is the remaining rows followed by the finished pieces, newest first.
func (r *RNN[B]) runLayer(
	layer *cellParams[B],
	data *tensor.Tensor[float32, B],
	batchSizes []int,
) (out, hN, cN *tensor.Tensor[float32, B]) {
	backend := data.Backend()
	hidden := r.cfg.HiddenSize
	w := layer.stepWeights()

	active := batchSizes[0]
	h := Zeros(tensor.Shape{active, hidden}, backend)
	var c *tensor.Tensor[float32, B]
	if r.cfg.Mode == ModeLSTM {
		c = Zeros(tensor.Shape{active, hidden}, backend)
	}

	var doneH, doneC []*tensor.Tensor[float32, B]
	outputs := make([]*tensor.Tensor[float32, B], 0, len(batchSizes))
	offset := 0

	for _, bt := range batchSizes {
		if bt < active {
			doneH = append(doneH, h.Narrow(0, bt, active-bt))
			h = h.Narrow(0, 0, bt)
			if c != nil {
				doneC = append(doneC, c.Narrow(0, bt, active-bt))
				c = c.Narrow(0, 0, bt)
			}
			active = bt
		}

		x := data.Narrow(0, offset, bt)
		if r.cfg.Mode == ModeLSTM {
			h, c = lstmStep(w, hidden, x, h, c)
		} else {
			h = tanhStep(w, x, h)
		}
		outputs = append(outputs, h)
		offset += bt
	}

	hN = joinFinal(h, doneH)
	if c != nil {
		cN = joinFinal(c, doneC)
	}
	return tensor.Cat(outputs, 0), hN, cN
}

func joinFinal[B tensor.Backend](last *tensor.Tensor[float32, B], done []*tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	parts := make([]*tensor.Tensor[float32, B], 0, len(done)+1)
	parts = append(parts, last)
	for i := len(done) - 1; i >= 0; i-- {
		parts = append(parts, done[i])
	}
	return tensor.Cat(parts, 0)
}

// restoreOrder reorders sorted rows back to the caller's batch order.
func restoreOrder[B tensor.Backend](t *tensor.Tensor[float32, B], unsorted []int) *tensor.Tensor[float32, B] {
	if unsorted == nil {
		return t
	}
	return t.SelectRows(unsorted)
}

// Parameters returns every layer's parameters, layer by layer.
func (r *RNN[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 4*len(r.layers))
	for k := range r.layers {
		params = append(params, r.layers[k].parameters()...)
	}
	return params
}

// StateDict returns the parameters keyed by their layer-qualified names.
func (r *RNN[B]) StateDict() map[string]*tensor.RawTensor {
	return stateDictOf(r.Parameters())
}

// LoadStateDict loads every layer's parameters.
func (r *RNN[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadParams(r.Parameters(), stateDict)
}
