package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/sentiment/internal/backend/cpu"
	"github.com/born-ml/sentiment/internal/classifier"
	"github.com/born-ml/sentiment/internal/nn"
	"github.com/born-ml/sentiment/internal/serialization"
	"github.com/born-ml/sentiment/internal/tokenizer"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	vocab := tokenizer.NewWordVocab([]string{"good", "bad", "film"})

	nn.Seed(3)
	model, err := classifier.New(classifier.Config{
		NumEmbeddings: vocab.VocabSize(),
		EmbeddingDim:  4,
		HiddenSize:    6,
		UseLSTM:       true,
	}, cpu.New())
	require.NoError(t, err)

	header := serialization.Header{
		ModelType:      classifier.ModelType,
		CheckpointMeta: &serialization.CheckpointMeta{RunID: "run-1", Epoch: 2},
	}
	return New(model, vocab, header, opts, nil)
}

func newTestEcho(s *Server) *echo.Echo {
	e := echo.New()
	s.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPredictEndpoint(t *testing.T) {
	e := newTestEcho(newTestServer(t, Options{}))

	rec := doJSON(t, e, http.MethodPost, "/v1/predict", `{"texts":["good film","bad","", "unseen words here good"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Predictions, 4)

	wantTokens := []int{2, 1, 1, 4}
	for i, p := range resp.Predictions {
		assert.Equal(t, i, p.Index)
		assert.Greater(t, p.Probability, float32(0))
		assert.Less(t, p.Probability, float32(1))
		assert.Contains(t, []string{LabelPositive, LabelNegative}, p.Label)
		assert.Equal(t, wantTokens[i], p.Tokens)
	}
}

func TestPredict_MatchesSingleRequests(t *testing.T) {
	s := newTestServer(t, Options{})
	texts := []string{"good good film", "bad", "film bad good"}

	batched, err := s.Predict(texts)
	require.NoError(t, err)

	for i, text := range texts {
		single, err := s.Predict([]string{text})
		require.NoError(t, err)
		assert.InDelta(t, single[0].Probability, batched[i].Probability, 1e-5, text)
	}
}

func TestPredict_Threshold(t *testing.T) {
	low := newTestServer(t, Options{Threshold: 0.0001})
	high := newTestServer(t, Options{Threshold: 0.9999})

	p, err := low.Predict([]string{"good film"})
	require.NoError(t, err)
	assert.Equal(t, LabelPositive, p[0].Label)

	p, err = high.Predict([]string{"good film"})
	require.NoError(t, err)
	assert.Equal(t, LabelNegative, p[0].Label)
}

func TestPredict_MaxLenTruncates(t *testing.T) {
	s := newTestServer(t, Options{MaxLen: 2})
	p, err := s.Predict([]string{"good bad film good"})
	require.NoError(t, err)
	assert.Equal(t, 2, p[0].Tokens)
}

func TestPredictEndpoint_BadRequests(t *testing.T) {
	e := newTestEcho(newTestServer(t, Options{MaxBatch: 2}))

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"texts":`},
		{"missing texts", `{}`},
		{"empty texts", `{"texts":[]}`},
		{"too many texts", `{"texts":["a","b","c"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/v1/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body struct {
				Error ResponseError `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "invalid_request_error", body.Error.Type)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestModelEndpoint(t *testing.T) {
	e := newTestEcho(newTestServer(t, Options{}))

	rec := doJSON(t, e, http.MethodGet, "/v1/model", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ModelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, classifier.ModelType, resp.ModelType)
	assert.Equal(t, "lstm", resp.Cell)
	assert.Equal(t, 6, resp.Config.HiddenSize)
	assert.Equal(t, 5, resp.VocabSize)
	assert.Equal(t, "word", resp.Tokenizer)
	assert.Positive(t, resp.Parameters)
	assert.InDelta(t, 0.5, resp.Threshold, 1e-6)
	require.NotNil(t, resp.Checkpoint)
	assert.Equal(t, "run-1", resp.Checkpoint.RunID)
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestEcho(newTestServer(t, Options{}))

	rec := doJSON(t, e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestPredict_Concurrent(t *testing.T) {
	s := newTestServer(t, Options{})
	want, err := s.Predict([]string{"good film"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Predict([]string{"good film"})
			if err != nil {
				errs <- err
				return
			}
			if got[0].Probability != want[0].Probability {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestLoadModel(t *testing.T) {
	s := newTestServer(t, Options{})
	spec, err := tokenizer.Marshal(s.batcher.Tokenizer)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.born")
	require.NoError(t, s.model.Save(path, map[string]string{tokenizer.MetadataKey: spec}))

	model, tok, header, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, s.model.Config(), model.Config())
	assert.Equal(t, "word", tok.Name())
	assert.Equal(t, classifier.ModelType, header.ModelType)

	want, err := s.Predict([]string{"good film"})
	require.NoError(t, err)
	got, err := New(model, tok, header, Options{}, nil).Predict([]string{"good film"})
	require.NoError(t, err)
	assert.Equal(t, want[0].Probability, got[0].Probability)
}

func TestLoadModel_MissingTokenizer(t *testing.T) {
	s := newTestServer(t, Options{})
	path := filepath.Join(t.TempDir(), "model.born")
	require.NoError(t, s.model.Save(path, nil))

	_, _, _, err := LoadModel(path)
	assert.ErrorContains(t, err, tokenizer.MetadataKey)
}
