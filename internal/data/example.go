// Package data loads labelled reviews and turns them into padded,
// time-major token batches for the classifier.
package data

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/goccy/go-json"
)

// ErrInvalidLabel is returned for a label other than 0 or 1.
var ErrInvalidLabel = errors.New("label must be 0 or 1")

// maxLineSize bounds a single JSONL record.
const maxLineSize = 4 * 1024 * 1024

// Example is one labelled text. Label 1 is positive.
type Example struct {
	Text  string  `json:"text"`
	Label float32 `json:"label"`
}

// LoadJSONL decodes one Example per non-blank line.
func LoadJSONL(r io.Reader) ([]Example, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var examples []Example
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var ex Example
		if err := json.Unmarshal(raw, &ex); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if ex.Label != 0 && ex.Label != 1 {
			return nil, fmt.Errorf("line %d: %w, got %v", line, ErrInvalidLabel, ex.Label)
		}
		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", line+1, err)
	}
	return examples, nil
}

// LoadFile reads a JSONL file with LoadJSONL.
func LoadFile(path string) ([]Example, error) {
	//nolint:gosec // G304: dataset path comes from the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	examples, err := LoadJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return examples, nil
}

// Split shuffles a copy of examples with seed and cuts it so that the
// first part holds trainRatio of them.
func Split(examples []Example, trainRatio float64, seed int64) (train, val []Example) {
	shuffled := make([]Example, len(examples))
	copy(shuffled, examples)
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: reproducible split, not security
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(float64(len(shuffled)) * trainRatio)
	cut = max(0, min(cut, len(shuffled)))
	return shuffled[:cut], shuffled[cut:]
}
