// Package tokenizer turns review text into token ids for the classifier.
//
// Two strategies are provided:
//   - WordVocab: lower-cased word splitting over a vocabulary built from
//     the training corpus, with an unknown-word id
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//     with every id shifted up by one
//
// Both keep id 0 free for padding.
//
// Example usage:
//
//	vocab := tokenizer.BuildWordVocab(texts, 2, 20000)
//	ids, err := vocab.Encode("A gripping, well-acted film")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Persist alongside a model
//	spec, err := tokenizer.Marshal(vocab)
//	restored, err := tokenizer.Unmarshal(spec)
package tokenizer
