// Package tokenizer turns review text into classifier token ids.
//
// Every tokenizer reserves id 0 for padding, so an encoded batch can be fed
// straight to the classifier's embedding.
//
// Supported tokenizers:
//   - WordVocab: lower-cased word vocabulary built from a corpus, unknown words map to id 1
//   - TikToken: OpenAI BPE encodings with ids shifted up by one
//
// Example usage:
//
//	import "github.com/born-ml/sentiment/tokenizer"
//
//	vocab := tokenizer.BuildWordVocab(texts, 2, 20000)
//	ids, err := vocab.Encode("A surprisingly good film")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store alongside a model and rebuild later.
//	spec, _ := tokenizer.Marshal(vocab)
//	tok, _ := tokenizer.Unmarshal(spec)
package tokenizer

import (
	"github.com/born-ml/sentiment/internal/tokenizer"
)

// Reserved ids.
const (
	PadID = tokenizer.PadID
	UnkID = tokenizer.UnkID
)

// MetadataKey is the model file metadata entry holding a marshalled tokenizer.
const MetadataKey = tokenizer.MetadataKey

// Tokenizer is the core interface for text tokenization.
//
// All tokenizer implementations must implement this interface.
type Tokenizer = tokenizer.Tokenizer

// WordVocab is a word-level tokenizer.
type WordVocab = tokenizer.WordVocab

// TikToken wraps an OpenAI BPE encoding.
type TikToken = tokenizer.TikToken

// Spec is the serializable description of a tokenizer.
type Spec = tokenizer.Spec

// NewWordVocab creates a vocabulary that assigns ids 2, 3, ... to words in order.
func NewWordVocab(words []string) *WordVocab {
	return tokenizer.NewWordVocab(words)
}

// BuildWordVocab builds a vocabulary from texts, keeping words seen at least
// minFreq times, most frequent first, capped at maxSize words (0 for no cap).
func BuildWordVocab(texts []string, minFreq, maxSize int) *WordVocab {
	return tokenizer.BuildWordVocab(texts, minFreq, maxSize)
}

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
//
// Supported encodings: "cl100k_base", "p50k_base", "r50k_base".
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}

// Marshal encodes a tokenizer description as JSON.
func Marshal(tok Tokenizer) (string, error) {
	return tokenizer.Marshal(tok)
}

// Unmarshal rebuilds a tokenizer from Marshal output.
func Unmarshal(s string) (Tokenizer, error) {
	return tokenizer.Unmarshal(s)
}
