package tokenizer

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Reserved ids shared by every tokenizer in this package.
const (
	PadID int32 = 0 // Padding; embeds to the zero vector
	UnkID int32 = 1 // Out-of-vocabulary word (WordVocab only)
)

// Tokenizer kinds as recorded in Spec.Kind.
const (
	KindWord     = "word"
	KindTikToken = "tiktoken"
)

// MetadataKey is the model file metadata entry holding the Marshal output.
const MetadataKey = "tokenizer"

// ErrUnknownKind is returned by FromSpec for an unrecognized tokenizer kind.
var ErrUnknownKind = errors.New("unknown tokenizer kind")

// Tokenizer is the core interface for text tokenization.
//
// Every implementation reserves id 0 for padding so encoded batches can be
// fed straight to the classifier's embedding.
type Tokenizer interface {
	// Encode converts text to token IDs. Ids are in [1, VocabSize).
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text. Padding ids are skipped.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the number of ids, padding included.
	VocabSize() int

	// PadToken returns the padding token ID.
	PadToken() int32

	// UnkToken returns the unknown token ID.
	// Returns -1 if not applicable.
	UnkToken() int32

	// Name returns the tokenizer name.
	Name() string
}

// Spec is the serializable description of a tokenizer. It travels in the
// model file's metadata so a saved classifier can rebuild its tokenizer.
type Spec struct {
	Kind     string   `json:"kind"`
	Encoding string   `json:"encoding,omitempty"` // tiktoken encoding name
	Words    []string `json:"words,omitempty"`    // WordVocab words from id 2 upwards
}

// SpecOf describes tok so FromSpec can rebuild it.
func SpecOf(tok Tokenizer) (Spec, error) {
	switch t := tok.(type) {
	case *WordVocab:
		return Spec{Kind: KindWord, Words: t.Words()}, nil
	case *TikToken:
		return Spec{Kind: KindTikToken, Encoding: t.Name()}, nil
	default:
		return Spec{}, fmt.Errorf("%w: %T", ErrUnknownKind, tok)
	}
}

// FromSpec rebuilds a tokenizer described by spec.
func FromSpec(spec Spec) (Tokenizer, error) {
	switch spec.Kind {
	case KindWord:
		return NewWordVocab(spec.Words), nil
	case KindTikToken:
		return NewTikToken(spec.Encoding)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}
}

// Marshal encodes tok's Spec as JSON.
func Marshal(tok Tokenizer) (string, error) {
	spec, err := SpecOf(tok)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("failed to encode tokenizer spec: %w", err)
	}
	return string(b), nil
}

// Unmarshal is the inverse of Marshal.
func Unmarshal(s string) (Tokenizer, error) {
	var spec Spec
	if err := json.Unmarshal([]byte(s), &spec); err != nil {
		return nil, fmt.Errorf("failed to decode tokenizer spec: %w", err)
	}
	return FromSpec(spec)
}
