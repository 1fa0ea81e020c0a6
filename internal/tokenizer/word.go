package tokenizer

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// WordVocab is a lower-cased word tokenizer over a fixed vocabulary.
//
// Id 0 is padding, id 1 is the unknown word, and the vocabulary words
// follow from id 2 in the order given to NewWordVocab.
type WordVocab struct {
	words []string
	ids   map[string]int32
}

// NewWordVocab creates a vocabulary from words. Duplicates keep their first id.
func NewWordVocab(words []string) *WordVocab {
	v := &WordVocab{
		words: make([]string, 0, len(words)),
		ids:   make(map[string]int32, len(words)),
	}
	for _, w := range words {
		if _, dup := v.ids[w]; dup || w == "" {
			continue
		}
		v.ids[w] = int32(len(v.words)) + 2 //nolint:gosec // G115: vocabulary is far below 2^31
		v.words = append(v.words, w)
	}
	return v
}

// BuildWordVocab counts words over texts and keeps those seen at least
// minFreq times, most frequent first, ties broken alphabetically. A
// positive maxSize caps the number of words (padding and unknown excluded).
func BuildWordVocab(texts []string, minFreq, maxSize int) *WordVocab {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, w := range SplitWords(text) {
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w, n := range counts {
		if n >= minFreq {
			words = append(words, w)
		}
	}
	slices.SortFunc(words, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	if maxSize > 0 && len(words) > maxSize {
		words = words[:maxSize]
	}

	return NewWordVocab(words)
}

// SplitWords lower-cases text and splits it into runs of letters, digits
// and apostrophes.
func SplitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// Encode converts text to token IDs. Unknown words map to UnkID.
func (v *WordVocab) Encode(text string) ([]int32, error) {
	words := SplitWords(text)
	ids := make([]int32, len(words))
	for i, w := range words {
		id, ok := v.ids[w]
		if !ok {
			id = UnkID
		}
		ids[i] = id
	}
	return ids, nil
}

// Decode joins the words for tokens with single spaces.
func (v *WordVocab) Decode(tokens []int32) (string, error) {
	words := make([]string, 0, len(tokens))
	for _, id := range tokens {
		switch {
		case id == PadID:
			continue
		case id == UnkID:
			words = append(words, "<unk>")
		case id > UnkID && int(id) < v.VocabSize():
			words = append(words, v.words[id-2])
		default:
			return "", fmt.Errorf("word vocab: id %d out of range [0, %d)", id, v.VocabSize())
		}
	}
	return strings.Join(words, " "), nil
}

// Words returns the vocabulary words in id order, starting at id 2.
func (v *WordVocab) Words() []string {
	return slices.Clone(v.words)
}

// ID returns the id of word, if present.
func (v *WordVocab) ID(word string) (int32, bool) {
	id, ok := v.ids[word]
	return id, ok
}

// VocabSize returns the number of ids including padding and unknown.
func (v *WordVocab) VocabSize() int {
	return len(v.words) + 2
}

// PadToken returns the padding token ID.
func (v *WordVocab) PadToken() int32 {
	return PadID
}

// UnkToken returns the unknown token ID.
func (v *WordVocab) UnkToken() int32 {
	return UnkID
}

// Name returns "word".
func (v *WordVocab) Name() string {
	return KindWord
}
