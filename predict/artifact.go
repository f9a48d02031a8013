package predict

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/features"
)

// Metrics are the training-time evaluation scores persisted with the model.
type Metrics struct {
	MAE  float64 `json:"MAE"`
	RMSE float64 `json:"RMSE"`
	R2   float64 `json:"R2"`
}

// Artifact is the metadata persisted alongside the trained model binary:
// the exact feature column order the model was fitted on, the incident
// types seen in training, and the evaluation metrics. The column list is
// the schema contract; it is validated eagerly at load because a defective
// artifact corrupts every prediction silently.
type Artifact struct {
	FeatureColumns []string `json:"feature_columns"`
	IncidentTypes  []string `json:"incident_types,omitempty"`
	Metrics        Metrics  `json:"metrics"`
	TrainedAt      string   `json:"trained_at,omitempty"`
}

// LoadArtifact reads and validates a model artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()
	a, err := ReadArtifact(f)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return a, nil
}

// ReadArtifact decodes and validates an artifact.
func ReadArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the schema contract: a non-empty, duplicate-free feature
// column list.
func (a *Artifact) Validate() error {
	if _, err := features.NewSchema(a.FeatureColumns); err != nil {
		return fmt.Errorf("invalid feature columns: %w", err)
	}
	return nil
}

// Schema builds the feature schema the artifact's model expects.
func (a *Artifact) Schema() (*features.Schema, error) {
	return features.NewSchema(a.FeatureColumns)
}
