package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitWords(t *testing.T) {
	assert.Equal(t,
		[]string{"it's", "a", "10", "10", "film", "loved", "it"},
		SplitWords("It's a 10/10 film -- LOVED it!!"))
	assert.Empty(t, SplitWords("  ... "))
}

func TestBuildWordVocab(t *testing.T) {
	texts := []string{
		"good movie, good acting",
		"bad movie",
		"good plot",
	}
	vocab := BuildWordVocab(texts, 2, 0)

	// good (3) then movie (2); singletons fall below minFreq.
	assert.Equal(t, []string{"good", "movie"}, vocab.Words())
	assert.Equal(t, 4, vocab.VocabSize())

	id, ok := vocab.ID("good")
	require.True(t, ok)
	assert.Equal(t, int32(2), id)

	capped := BuildWordVocab(texts, 1, 3)
	assert.Equal(t, []string{"good", "movie", "acting"}, capped.Words())
}

func TestWordVocab_EncodeDecode(t *testing.T) {
	vocab := NewWordVocab([]string{"great", "film", "great"})
	assert.Equal(t, 4, vocab.VocabSize())

	ids, err := vocab.Encode("Great FILM, awful score")
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 3, UnkID, UnkID}, ids)

	text, err := vocab.Decode([]int32{2, 0, 3, UnkID})
	require.NoError(t, err)
	assert.Equal(t, "great film <unk>", text)

	_, err = vocab.Decode([]int32{9})
	assert.Error(t, err)

	assert.Equal(t, PadID, vocab.PadToken())
	assert.Equal(t, UnkID, vocab.UnkToken())
	assert.Equal(t, KindWord, vocab.Name())
}

func TestWordVocab_MarshalRoundTrip(t *testing.T) {
	vocab := BuildWordVocab([]string{"one two two three three three"}, 1, 0)

	s, err := Marshal(vocab)
	require.NoError(t, err)

	restored, err := Unmarshal(s)
	require.NoError(t, err)
	require.IsType(t, &WordVocab{}, restored)
	assert.Equal(t, vocab.Words(), restored.(*WordVocab).Words())

	want, _ := vocab.Encode("three two one four")
	got, _ := restored.Encode("three two one four")
	assert.Equal(t, want, got)
}

func TestFromSpec_UnknownKind(t *testing.T) {
	_, err := FromSpec(Spec{Kind: "sentencepiece"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Unmarshal("{not json")
	assert.Error(t, err)
}

func TestTikToken_UnsupportedEncoding(t *testing.T) {
	tok, err := NewTikToken("invalid_encoding_xyz")
	assert.Error(t, err)
	assert.Nil(t, tok)
}

// The BPE ranks are fetched on first use, so these are skipped in -short runs.
func TestTikToken_Roundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("tiktoken encodings are downloaded on first use")
	}

	tok, err := NewTikToken("cl100k_base")
	require.NoError(t, err)
	assert.Equal(t, 100257, tok.VocabSize())
	assert.Equal(t, PadID, tok.PadToken())
	assert.Equal(t, int32(-1), tok.UnkToken())

	tests := []struct {
		name string
		text string
	}{
		{name: "simple text", text: "Hello, world!"},
		{name: "unicode", text: "Hello 世界! 🌍"},
		{name: "special marker as text", text: "ends <|endoftext|> here"},
		{name: "empty string", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := tok.Encode(tt.text)
			require.NoError(t, err)
			for _, id := range tokens {
				assert.Greater(t, id, PadID)
				assert.Less(t, int(id), tok.VocabSize())
			}

			decoded, err := tok.Decode(tokens)
			require.NoError(t, err)
			assert.Equal(t, tt.text, decoded)
		})
	}

	s, err := Marshal(tok)
	require.NoError(t, err)
	restored, err := Unmarshal(s)
	require.NoError(t, err)
	assert.Equal(t, "cl100k_base", restored.Name())
}
