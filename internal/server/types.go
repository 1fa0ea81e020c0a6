package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/born-ml/sentiment/internal/classifier"
	"github.com/born-ml/sentiment/internal/serialization"
)

// Prediction labels.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
)

// ErrInvalidRequest marks client errors.
var ErrInvalidRequest = errors.New("invalid_request")

// PredictRequest is the body of POST /v1/predict.
type PredictRequest struct {
	Texts []string `json:"texts"`
}

// Prediction is one classified text.
type Prediction struct {
	Index       int     `json:"index"`
	Probability float32 `json:"probability"`
	Label       string  `json:"label"`
	Tokens      int     `json:"tokens"`
}

// PredictResponse is the body returned by POST /v1/predict.
type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// ModelResponse is the body returned by GET /v1/model.
type ModelResponse struct {
	ModelType  string                        `json:"model_type"`
	Config     classifier.Config             `json:"config"`
	Cell       string                        `json:"cell"`
	Parameters int                           `json:"parameters"`
	Tokenizer  string                        `json:"tokenizer"`
	VocabSize  int                           `json:"vocab_size"`
	Threshold  float32                       `json:"threshold"`
	CreatedAt  string                        `json:"created_at,omitempty"`
	Checkpoint *serialization.CheckpointMeta `json:"checkpoint,omitempty"`
}

// HealthResponse is the body returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// ResponseError is the error object in failed responses.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

func isInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
		},
	})
}
