// Package config loads the YAML configuration shared by the sentiment commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/sentiment/internal/classifier"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root of the YAML document.
type Config struct {
	Model    classifier.Config `yaml:"model"`
	Training Training          `yaml:"training"`
	Data     Data              `yaml:"data"`
	Server   Server            `yaml:"server"`
	Log      Log               `yaml:"log"`
}

// Training controls the optimization loop.
type Training struct {
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	Optimizer    string  `yaml:"optimizer"` // "adam" or "sgd"
	LearningRate float32 `yaml:"learning_rate"`
	Momentum     float32 `yaml:"momentum"`  // sgd only
	ClipNorm     float64 `yaml:"clip_norm"` // 0 disables clipping
	Seed         int64   `yaml:"seed"`
	OutputPath   string  `yaml:"output_path"` // best checkpoint
	LogEvery     int     `yaml:"log_every"`   // batches between progress lines
}

// Data controls dataset loading and tokenization.
type Data struct {
	TrainPath string  `yaml:"train_path"`
	ValPath   string  `yaml:"val_path"`   // optional; split from train when empty
	ValRatio  float64 `yaml:"val_ratio"`  // used when ValPath is empty
	Tokenizer string  `yaml:"tokenizer"`  // "word" or "tiktoken"
	Encoding  string  `yaml:"encoding"`   // tiktoken encoding
	MinFreq   int     `yaml:"min_freq"`   // word vocab
	VocabSize int     `yaml:"vocab_size"` // word vocab cap, 0 for none
	MaxLen    int     `yaml:"max_len"`    // truncate longer texts
}

// Server controls the REST API.
type Server struct {
	Addr           string        `yaml:"addr"`
	ModelPath      string        `yaml:"model_path"`
	Threshold      float32       `yaml:"threshold"`
	MaxBatch       int           `yaml:"max_batch"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Log controls the logger.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Model: classifier.DefaultConfig(),
		Training: Training{
			Epochs:       5,
			BatchSize:    32,
			Optimizer:    "adam",
			LearningRate: 0.001,
			ClipNorm:     5,
			Seed:         42,
			OutputPath:   "model.born",
			LogEvery:     50,
		},
		Data: Data{
			ValRatio:  0.1,
			Tokenizer: "word",
			Encoding:  "cl100k_base",
			MinFreq:   2,
			VocabSize: 20000,
			MaxLen:    256,
		},
		Server: Server{
			Addr:           ":8080",
			ModelPath:      "model.born",
			Threshold:      0.5,
			MaxBatch:       64,
			RequestTimeout: 10 * time.Second,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	//nolint:gosec // G304: config path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	// A file that only names the training output still predicts and
	// serves from that checkpoint.
	cfg.Server.ModelPath = ""
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Server.ModelPath == "" {
		cfg.Server.ModelPath = cfg.Training.OutputPath
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that do not depend on the dataset. The model
// vocabulary size is filled in from the tokenizer, so it is not checked here.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Model.EmbeddingDim <= 0 {
		add("model.embedding_dim must be > 0")
	}
	if c.Model.HiddenSize <= 0 {
		add("model.hidden_size must be > 0")
	}
	if c.Model.NumLayers < 0 {
		add("model.num_layers must be >= 0")
	}

	if c.Training.Epochs <= 0 {
		add("training.epochs must be > 0")
	}
	if c.Training.BatchSize <= 0 {
		add("training.batch_size must be > 0")
	}
	switch c.Training.Optimizer {
	case "adam", "sgd":
	default:
		add("training.optimizer must be adam or sgd, got %q", c.Training.Optimizer)
	}
	if c.Training.LearningRate <= 0 {
		add("training.learning_rate must be > 0")
	}
	if c.Training.ClipNorm < 0 {
		add("training.clip_norm must be >= 0")
	}

	switch c.Data.Tokenizer {
	case "word", "tiktoken":
	default:
		add("data.tokenizer must be word or tiktoken, got %q", c.Data.Tokenizer)
	}
	if c.Data.ValPath == "" && (c.Data.ValRatio <= 0 || c.Data.ValRatio >= 1) {
		add("data.val_ratio must be in (0, 1) when data.val_path is empty")
	}
	if c.Data.MaxLen < 0 {
		add("data.max_len must be >= 0")
	}

	if c.Server.Threshold <= 0 || c.Server.Threshold >= 1 {
		add("server.threshold must be in (0, 1)")
	}
	if c.Server.MaxBatch <= 0 {
		add("server.max_batch must be > 0")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
