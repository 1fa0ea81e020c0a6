package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// encodingCL100kBase is the encoding name for GPT-4 and GPT-3.5-turbo.
	encodingCL100kBase = "cl100k_base"
	// encodingP50kBase is the encoding name for GPT-3.
	encodingP50kBase = "p50k_base"
	// encodingR50kBase is the encoding name for older GPT-3 models.
	encodingR50kBase = "r50k_base"
)

// baseVocab is the number of ordinary (non-special) tokens per encoding.
var baseVocab = map[string]int{
	encodingCL100kBase: 100256,
	encodingP50kBase:   50281,
	encodingR50kBase:   50256,
}

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI tokenizers.
//
// Special tokens in the input are encoded as ordinary text. Every id is
// shifted up by one so that id 0 stays free for padding.
//
// Supported encodings:
//   - cl100k_base: GPT-4, GPT-3.5-turbo, text-embedding-ada-002
//   - p50k_base: GPT-3, Codex
//   - r50k_base: GPT-3, davinci-002, babbage-002
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
	vocab    int
}

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	vocab, ok := baseVocab[encodingName]
	if !ok {
		return nil, fmt.Errorf("unsupported tiktoken encoding %q", encodingName)
	}

	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
		vocab:    vocab,
	}, nil
}

// Encode converts text to token IDs.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.EncodeOrdinary(strings.ToValidUTF8(text, "�"))

	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		if tok < 0 || tok >= t.vocab {
			return nil, fmt.Errorf("tiktoken %s: token %d outside ordinary vocabulary", t.name, tok)
		}
		result[i] = int32(tok) + 1 //nolint:gosec // G115: Token ID fits in int32 - vocab size < 2^31.
	}

	return result, nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int32) (string, error) {
	intTokens := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if tok == PadID {
			continue
		}
		if tok < 0 || int(tok) > t.vocab {
			return "", fmt.Errorf("tiktoken %s: id %d out of range", t.name, tok)
		}
		intTokens = append(intTokens, int(tok)-1)
	}

	return t.encoding.Decode(intTokens), nil
}

// VocabSize returns the ordinary vocabulary plus the padding id.
func (t *TikToken) VocabSize() int {
	return t.vocab + 1
}

// PadToken returns the padding token ID.
func (t *TikToken) PadToken() int32 {
	return PadID
}

// UnkToken returns -1: byte-level BPE has no unknown token.
func (t *TikToken) UnkToken() int32 {
	return -1
}

// Name returns the encoding name.
func (t *TikToken) Name() string {
	return t.name
}
