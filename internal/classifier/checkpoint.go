package classifier

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/born-ml/sentiment/internal/serialization"
	"github.com/born-ml/sentiment/internal/tensor"
)

// ModelType is the model_type recorded in .born headers.
const ModelType = "RNNClassifier"

// MetaConfig is the metadata key holding the JSON-encoded Config.
const MetaConfig = "classifier.config"

// Save writes the parameters to path with the hyperparameters in the header.
// Extra metadata entries are stored alongside.
func (m *RNNClassifier[B]) Save(path string, metadata map[string]string) error {
	return m.SaveWithHeader(path, serialization.Header{Metadata: metadata})
}

// SaveWithHeader is Save with a caller-built header, used for training
// checkpoints. ModelType and the config entry are always overwritten.
func (m *RNNClassifier[B]) SaveWithHeader(path string, header serialization.Header) error {
	cfgJSON, err := json.Marshal(m.cfg)
	if err != nil {
		return fmt.Errorf("classifier: encode config: %w", err)
	}

	meta := make(map[string]string, len(header.Metadata)+1)
	for k, v := range header.Metadata {
		meta[k] = v
	}
	meta[MetaConfig] = string(cfgJSON)
	header.Metadata = meta
	header.ModelType = ModelType

	w, err := serialization.NewBornWriter(path)
	if err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := w.WriteStateDictWithHeader(m.StateDict(), header); err != nil {
		_ = w.Close()
		return fmt.Errorf("classifier: save %s: %w", path, err)
	}
	return w.Close()
}

// Load reads a classifier saved with Save. It returns the file header so
// callers can recover the remaining metadata.
func Load[B tensor.Backend](path string, backend B) (*RNNClassifier[B], serialization.Header, error) {
	r, err := serialization.NewBornReader(path)
	if err != nil {
		return nil, serialization.Header{}, fmt.Errorf("classifier: load %s: %w", path, err)
	}
	defer r.Close()

	header := r.Header()
	if header.ModelType != ModelType {
		return nil, header, fmt.Errorf("classifier: load %s: model type %q, want %q", path, header.ModelType, ModelType)
	}

	cfgJSON, ok := header.Metadata[MetaConfig]
	if !ok {
		return nil, header, fmt.Errorf("classifier: load %s: missing %s metadata", path, MetaConfig)
	}
	var cfg Config
	if err := json.Unmarshal([]byte(cfgJSON), &cfg); err != nil {
		return nil, header, fmt.Errorf("classifier: decode config: %w", err)
	}

	model, err := New(cfg, backend)
	if err != nil {
		return nil, header, err
	}

	stateDict, err := r.ReadStateDict()
	if err != nil {
		return nil, header, fmt.Errorf("classifier: load %s: %w", path, err)
	}
	if err := model.LoadStateDict(stateDict); err != nil {
		return nil, header, err
	}
	return model, header, nil
}
