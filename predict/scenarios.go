package predict

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/features"
)

// defaultIncidentTypes is the sweep list when neither the artifact nor the
// historical data names any.
var defaultIncidentTypes = []string{
	"Mechanical", "Collision - TTC", "Emergency Services",
	"Operations - Operator", "Diversion", "Investigation",
	"Security", "Cleaning - Unsanitary",
}

// Scenario is one what-if prediction: the delay expected if an incident of
// the given type happened at the queried place and time.
type Scenario struct {
	Incident     string  `json:"incident_type"`
	DelayMinutes float64 `json:"predicted_delay_minutes"`
}

// ScenarioOption configures a ScenarioPredictor.
type ScenarioOption func(*ScenarioPredictor)

// WithIncidentTypes supplies the sweep list used when the artifact does not
// carry one, typically the types observed in the historical data.
func WithIncidentTypes(types []string) ScenarioOption {
	return func(p *ScenarioPredictor) { p.fallbackTypes = types }
}

// ScenarioPredictor couples a model with the reconstructor that feeds it.
// Construction fails when the model and the schema disagree on width - the
// one mismatch that would otherwise corrupt predictions silently.
type ScenarioPredictor struct {
	model         Model
	rec           *features.Reconstructor
	artifactTypes []string
	fallbackTypes []string
}

// NewScenarioPredictor wires a model to a reconstructor and checks the
// feature-width contract eagerly.
func NewScenarioPredictor(model Model, rec *features.Reconstructor, artifact *Artifact, opts ...ScenarioOption) (*ScenarioPredictor, error) {
	if want, got := rec.Schema().Len(), model.NumFeatures(); want != got {
		return nil, fmt.Errorf("model expects %d features, schema has %d", got, want)
	}
	p := &ScenarioPredictor{model: model, rec: rec}
	if artifact != nil {
		p.artifactTypes = artifact.IncidentTypes
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// PredictDelay reconstructs the request's feature vector, runs the model
// and clamps the estimate at zero minutes.
func (p *ScenarioPredictor) PredictDelay(req features.Request) (float64, error) {
	v, err := p.rec.Reconstruct(req)
	if err != nil {
		return 0, err
	}
	delay, err := p.model.Predict(v.Values())
	if err != nil {
		return 0, err
	}
	return math.Max(0, delay), nil
}

// incidentTypes resolves the sweep list: the artifact's, else the fallback
// (historical) list, else the fixed defaults.
func (p *ScenarioPredictor) incidentTypes() []string {
	if len(p.artifactTypes) > 0 {
		return p.artifactTypes
	}
	if len(p.fallbackTypes) > 0 {
		return p.fallbackTypes
	}
	return defaultIncidentTypes
}

// PredictScenarios predicts the delay for every known incident type at the
// request's place and time, most severe first. The request's own incident
// type is ignored; a per-type prediction failure skips that type.
func (p *ScenarioPredictor) PredictScenarios(req features.Request) ([]Scenario, error) {
	types := p.incidentTypes()
	scenarios := make([]Scenario, 0, len(types))
	for _, incident := range types {
		r := req
		r.Incident = incident
		delay, err := p.PredictDelay(r)
		if err != nil {
			log.Printf("predict: skipping scenario %q: %v", incident, err)
			continue
		}
		scenarios = append(scenarios, Scenario{
			Incident:     incident,
			DelayMinutes: math.Round(delay*10) / 10,
		})
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenario produced a prediction")
	}
	sort.SliceStable(scenarios, func(i, j int) bool {
		return scenarios[i].DelayMinutes > scenarios[j].DelayMinutes
	})
	return scenarios, nil
}
