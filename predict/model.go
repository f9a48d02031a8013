package predict

import (
	"fmt"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/features"
)

// Model is the external inference collaborator: it consumes a feature row
// in schema order and returns a delay estimate in minutes.
type Model interface {
	NumFeatures() int
	Predict(values []float64) (float64, error)
}

// BaselineModel is a reference Model backed purely by the historical
// aggregate features already present in the vector. It stands in when no
// trained model binary is wired up, and anchors predictor tests.
type BaselineModel struct {
	numFeatures int
	avgDelayIdx int
	cellIdx     int
}

// NewBaselineModel binds the baseline to a schema. Construction fails when
// the schema lacks the aggregate columns the baseline averages.
func NewBaselineModel(schema *features.Schema) (*BaselineModel, error) {
	avgIdx, ok := schema.Index("incident_avg_delay")
	if !ok {
		return nil, fmt.Errorf("schema lacks incident_avg_delay column")
	}
	cellIdx, ok := schema.Index("spatial_cell_avg_delay")
	if !ok {
		return nil, fmt.Errorf("schema lacks spatial_cell_avg_delay column")
	}
	return &BaselineModel{
		numFeatures: schema.Len(),
		avgDelayIdx: avgIdx,
		cellIdx:     cellIdx,
	}, nil
}

// NumFeatures returns the schema width the model expects.
func (m *BaselineModel) NumFeatures() int {
	return m.numFeatures
}

// Predict averages the incident-type and spatial-cell historical delays.
func (m *BaselineModel) Predict(values []float64) (float64, error) {
	if len(values) != m.numFeatures {
		return 0, fmt.Errorf("got %d features, model expects %d", len(values), m.numFeatures)
	}
	return (values[m.avgDelayIdx] + values[m.cellIdx]) / 2, nil
}
