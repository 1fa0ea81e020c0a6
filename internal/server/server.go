// Package server exposes a trained classifier over a small REST API.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/sentiment/internal/backend/cpu"
	"github.com/born-ml/sentiment/internal/classifier"
	"github.com/born-ml/sentiment/internal/data"
	"github.com/born-ml/sentiment/internal/logger"
	"github.com/born-ml/sentiment/internal/serialization"
	"github.com/born-ml/sentiment/internal/tokenizer"
)

// Model is the inference-only classifier the server runs.
type Model = classifier.RNNClassifier[*cpu.CPUBackend]

// Options configures a Server.
type Options struct {
	Threshold float32 // Probability at or above which a text is positive (default: 0.5)
	MaxBatch  int     // Most texts accepted per request (default: 64)
	MaxLen    int     // Tokens kept per text; 0 keeps all
}

// Server answers prediction requests for one model.
type Server struct {
	model   *Model
	batcher data.Batcher
	header  serialization.Header
	opts    Options
	log     logrus.FieldLogger
	clock   func() time.Time
	started time.Time

	// mu serializes Forward calls on the shared model.
	mu sync.Mutex
}

// New creates a server. header is the loaded model file's header and may be zero.
func New(model *Model, tok tokenizer.Tokenizer, header serialization.Header, opts Options, log logrus.FieldLogger) *Server {
	if opts.Threshold <= 0 || opts.Threshold >= 1 {
		opts.Threshold = 0.5
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 64
	}
	if log == nil {
		log = logger.Discard()
	}

	return &Server{
		model:   model,
		batcher: data.Batcher{Tokenizer: tok, MaxLen: opts.MaxLen},
		header:  header,
		opts:    opts,
		log:     log,
		clock:   time.Now,
		started: time.Now(),
	}
}

// Register mounts the API routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/model", s.handleModel)
	e.POST("/v1/predict", s.handlePredict)
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string, timeout time.Duration) error {
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	s.Register(e)

	s.log.WithField("address", addr).Info("starting server")
	sc := echo.StartConfig{
		Address: addr,
		BeforeServeFunc: func(srv *http.Server) error {
			if timeout > 0 {
				srv.ReadHeaderTimeout = timeout
				srv.WriteTimeout = timeout
			}
			return nil
		},
	}
	return sc.Start(ctx, e)
}

// Predict classifies texts. It is the handler's core and safe for
// concurrent use.
func (s *Server) Predict(texts []string) ([]Prediction, error) {
	if len(texts) == 0 {
		return nil, newInvalidRequest("texts is required and must not be empty")
	}
	if len(texts) > s.opts.MaxBatch {
		return nil, newInvalidRequest(fmt.Sprintf("at most %d texts per request, got %d", s.opts.MaxBatch, len(texts)))
	}

	seqs := make([][]int32, len(texts))
	for i, text := range texts {
		ids, err := s.batcher.EncodeText(text)
		if err != nil {
			return nil, newInvalidRequest(fmt.Sprintf("texts[%d]: %v", i, err))
		}
		seqs[i] = ids
	}

	batch, err := data.NewBatch(seqs, nil)
	if err != nil {
		return nil, newInvalidRequest(err.Error())
	}
	tokens, _, err := data.Tensors(batch, s.model.Backend())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	probs, err := s.model.Predict(tokens, batch.Lengths)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]Prediction, len(probs))
	for i, p := range probs {
		label := LabelNegative
		if p >= s.opts.Threshold {
			label = LabelPositive
		}
		out[i] = Prediction{Index: i, Probability: p, Label: label, Tokens: batch.Lengths[i]}
	}
	return out, nil
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: s.clock().Sub(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleModel(c *echo.Context) error {
	cfg := s.model.Config()
	resp := ModelResponse{
		ModelType:  s.header.ModelType,
		Config:     cfg,
		Cell:       cfg.CellType(),
		Parameters: s.model.NumParameters(),
		Tokenizer:  s.batcher.Tokenizer.Name(),
		VocabSize:  s.batcher.Tokenizer.VocabSize(),
		Threshold:  s.opts.Threshold,
		Checkpoint: s.header.CheckpointMeta,
	}
	if !s.header.CreatedAt.IsZero() {
		resp.CreatedAt = s.header.CreatedAt.Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePredict(c *echo.Context) error {
	req, err := decodeJSON[PredictRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, fmt.Sprintf("invalid JSON body: %v", err))
	}

	start := s.clock()
	preds, err := s.Predict(req.Texts)
	if err != nil {
		if isInvalidRequest(err) {
			return writeBadRequest(c, err.Error())
		}
		s.log.WithError(err).Error("prediction failed")
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}

	s.log.WithFields(logrus.Fields{
		"texts": len(req.Texts),
		"took":  s.clock().Sub(start).Round(time.Microsecond),
	}).Debug("predict")

	return c.JSON(http.StatusOK, PredictResponse{Predictions: preds})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// LoadModel reads a classifier checkpoint for inference and rebuilds the
// tokenizer recorded in its metadata.
func LoadModel(path string) (*Model, tokenizer.Tokenizer, serialization.Header, error) {
	model, header, err := classifier.Load(path, cpu.New())
	if err != nil {
		return nil, nil, header, err
	}
	spec, ok := header.Metadata[tokenizer.MetadataKey]
	if !ok {
		return nil, nil, header, fmt.Errorf("%s: no %q entry in model metadata", path, tokenizer.MetadataKey)
	}
	tok, err := tokenizer.Unmarshal(spec)
	if err != nil {
		return nil, nil, header, fmt.Errorf("%s: %w", path, err)
	}
	if tok.VocabSize() != model.Config().NumEmbeddings {
		return nil, nil, header, fmt.Errorf("%s: tokenizer has %d ids, model embeds %d",
			path, tok.VocabSize(), model.Config().NumEmbeddings)
	}
	return model, tok, header, nil
}
