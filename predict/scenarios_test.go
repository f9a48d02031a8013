package predict

import (
	"fmt"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/features"
)

// stubModel returns a canned value regardless of input.
type stubModel struct {
	numFeatures int
	value       float64
	err         error
}

func (m stubModel) NumFeatures() int { return m.numFeatures }
func (m stubModel) Predict(values []float64) (float64, error) {
	return m.value, m.err
}

func predictorSchema(t *testing.T) *features.Schema {
	t.Helper()
	s, err := features.NewSchema([]string{
		"hour", "incident_avg_delay", "spatial_cell_avg_delay",
		"incident_Mechanical", "incident_Other",
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}

func predictorRequest() features.Request {
	return features.Request{
		Time:      time.Date(2024, time.March, 12, 17, 15, 0, 0, time.UTC),
		Latitude:  43.70,
		Longitude: -79.40,
		Route:     "36",
		Direction: "N",
	}
}

func newTestPredictor(t *testing.T, model Model, artifact *Artifact, opts ...ScenarioOption) *ScenarioPredictor {
	t.Helper()
	rec, err := features.NewReconstructor(predictorSchema(t), nil)
	if err != nil {
		t.Fatalf("NewReconstructor: %v", err)
	}
	p, err := NewScenarioPredictor(model, rec, artifact, opts...)
	if err != nil {
		t.Fatalf("NewScenarioPredictor: %v", err)
	}
	return p
}

func TestNewScenarioPredictorWidthMismatch(t *testing.T) {
	rec, err := features.NewReconstructor(predictorSchema(t), nil)
	if err != nil {
		t.Fatalf("NewReconstructor: %v", err)
	}
	if _, err := NewScenarioPredictor(stubModel{numFeatures: 3}, rec, nil); err == nil {
		t.Error("mismatched feature width accepted, want error")
	}
}

func TestPredictDelayClampsNegative(t *testing.T) {
	p := newTestPredictor(t, stubModel{numFeatures: 5, value: -4.2}, nil)

	delay, err := p.PredictDelay(predictorRequest())
	if err != nil {
		t.Fatalf("PredictDelay: %v", err)
	}
	if delay != 0 {
		t.Errorf("delay = %v, want 0 after clamping", delay)
	}
}

func TestPredictDelayBaseline(t *testing.T) {
	schema := predictorSchema(t)
	rec, err := features.NewReconstructor(schema, nil)
	if err != nil {
		t.Fatalf("NewReconstructor: %v", err)
	}
	model, err := NewBaselineModel(schema)
	if err != nil {
		t.Fatalf("NewBaselineModel: %v", err)
	}
	p, err := NewScenarioPredictor(model, rec, nil)
	if err != nil {
		t.Fatalf("NewScenarioPredictor: %v", err)
	}

	req := predictorRequest()
	req.Incident = "Mechanical"
	delay, err := p.PredictDelay(req)
	if err != nil {
		t.Fatalf("PredictDelay: %v", err)
	}
	// With no aggregates the Mechanical estimate is 20 and the cell default
	// 15; the baseline averages them.
	if delay != 17.5 {
		t.Errorf("delay = %v, want 17.5", delay)
	}
}

func TestNewBaselineModelRequiresAggregateColumns(t *testing.T) {
	schema, err := features.NewSchema([]string{"hour", "latitude"})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	if _, err := NewBaselineModel(schema); err == nil {
		t.Error("schema without aggregate columns accepted, want error")
	}
}

func TestPredictScenariosSortedDescending(t *testing.T) {
	schema := predictorSchema(t)
	rec, err := features.NewReconstructor(schema, nil)
	if err != nil {
		t.Fatalf("NewReconstructor: %v", err)
	}
	model, err := NewBaselineModel(schema)
	if err != nil {
		t.Fatalf("NewBaselineModel: %v", err)
	}
	artifact := &Artifact{
		FeatureColumns: schema.Columns(),
		IncidentTypes:  []string{"Emergency Services", "Collision - TTC", "Mechanical"},
	}
	p, err := NewScenarioPredictor(model, rec, artifact)
	if err != nil {
		t.Fatalf("NewScenarioPredictor: %v", err)
	}

	scenarios, err := p.PredictScenarios(predictorRequest())
	if err != nil {
		t.Fatalf("PredictScenarios: %v", err)
	}
	if len(scenarios) != 3 {
		t.Fatalf("got %d scenarios, want 3", len(scenarios))
	}
	for i := 1; i < len(scenarios); i++ {
		if scenarios[i].DelayMinutes > scenarios[i-1].DelayMinutes {
			t.Errorf("scenarios not sorted descending: %+v", scenarios)
		}
	}
	// Collision - TTC carries the largest fallback estimate (30), averaged
	// with the cell default 15 and rounded to one decimal.
	if scenarios[0].Incident != "Collision - TTC" || scenarios[0].DelayMinutes != 22.5 {
		t.Errorf("top scenario = %+v, want Collision - TTC at 22.5", scenarios[0])
	}
}

func TestPredictScenariosTypeListFallbacks(t *testing.T) {
	p := newTestPredictor(t, stubModel{numFeatures: 5, value: 5}, nil,
		WithIncidentTypes([]string{"Security"}))
	scenarios, err := p.PredictScenarios(predictorRequest())
	if err != nil {
		t.Fatalf("PredictScenarios: %v", err)
	}
	if len(scenarios) != 1 || scenarios[0].Incident != "Security" {
		t.Errorf("scenarios = %+v, want the historical fallback list", scenarios)
	}

	p = newTestPredictor(t, stubModel{numFeatures: 5, value: 5}, nil)
	scenarios, err = p.PredictScenarios(predictorRequest())
	if err != nil {
		t.Fatalf("PredictScenarios: %v", err)
	}
	if len(scenarios) != len(defaultIncidentTypes) {
		t.Errorf("got %d scenarios, want the %d defaults", len(scenarios), len(defaultIncidentTypes))
	}
}

func TestPredictScenariosAllFailuresIsError(t *testing.T) {
	p := newTestPredictor(t, stubModel{numFeatures: 5, err: fmt.Errorf("model offline")}, nil)
	if _, err := p.PredictScenarios(predictorRequest()); err == nil {
		t.Error("PredictScenarios with a failing model succeeded, want error")
	}
}
