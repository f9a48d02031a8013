// Package delayengine wires the delay-prediction components into one
// engine: a stop-registry geocoder, historical aggregates, and a
// schema-exact feature reconstructor feeding a delay model.
package delayengine

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/config"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/features"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/geocoder"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/history"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/pipeline"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/predict"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/stops"
)

// Engine is the assembled prediction service core. All shared state is
// built once in New and read-only afterwards, so one Engine serves
// concurrent callers without locking.
type Engine struct {
	cfg        config.AppConfig
	resolver   *geocoder.Resolver
	runner     *pipeline.Runner
	store      *history.DB
	aggregates *history.Aggregates
	artifact   *predict.Artifact
	rec        *features.Reconstructor
	predictor  *predict.ScenarioPredictor
	validate   *validator.Validate
}

// New loads every configured data source and wires the engine. The stops
// registry is mandatory; history, store and model artifact are optional and
// their absence only disables the dependent operations.
func New(cfg config.AppConfig) (*Engine, error) {
	e := &Engine{cfg: cfg, validate: validator.New()}

	idx, err := loadIndex(cfg.Paths)
	if err != nil {
		return nil, err
	}
	exact, station, intersection := idx.Counts()
	log.Printf("engine: reference index ready (%d exact, %d station, %d intersection keys)",
		exact, station, intersection)
	e.resolver = geocoder.NewResolver(idx, geocoder.WithPartialThreshold(cfg.Engine.PartialThreshold))
	e.runner = pipeline.NewRunner(e.resolver, cfg.Engine.Workers)

	incidents, err := e.loadHistory()
	if err != nil {
		return nil, err
	}
	e.aggregates = history.BuildAggregates(incidents, cfg.Engine.CellToleranceDeg)
	if len(incidents) > 0 {
		log.Printf("engine: historical aggregates built from %d incidents", len(incidents))
	}

	if cfg.Paths.Artifact != "" {
		if err := e.loadModel(); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

// loadIndex builds the reference index from stops.txt, going through the
// gob cache when one is configured.
func loadIndex(paths config.PathsConfig) (*geocoder.ReferenceIndex, error) {
	if paths.IndexCache != "" {
		if idx, err := geocoder.LoadIndexCache(paths.IndexCache); err == nil {
			log.Printf("engine: reference index loaded from cache %s", paths.IndexCache)
			return idx, nil
		} else if !os.IsNotExist(err) {
			log.Printf("engine: ignoring unreadable index cache %s: %v", paths.IndexCache, err)
		}
	}

	if paths.Stops == "" {
		return nil, fmt.Errorf("no stops registry configured")
	}
	registry, err := stops.Load(paths.Stops)
	if err != nil {
		return nil, fmt.Errorf("load stop registry: %w", err)
	}
	idx := geocoder.BuildIndex(registry)
	if paths.IndexCache != "" {
		if err := geocoder.SaveIndexCache(paths.IndexCache, idx); err != nil {
			log.Printf("engine: could not write index cache %s: %v", paths.IndexCache, err)
		}
	}
	return idx, nil
}

// loadHistory opens the store when configured and returns the incidents the
// aggregates are built from: stored rows when present, else the CSV export.
func (e *Engine) loadHistory() ([]history.Incident, error) {
	if e.cfg.Paths.Database != "" {
		db, err := history.Open(e.cfg.Paths.Database)
		if err != nil {
			return nil, err
		}
		e.store = db
		incidents, err := db.Incidents()
		if err != nil {
			e.Close()
			return nil, err
		}
		if len(incidents) > 0 {
			return incidents, nil
		}
	}
	if e.cfg.Paths.History != "" {
		incidents, err := history.LoadCSV(e.cfg.Paths.History)
		if err != nil {
			e.Close()
			return nil, err
		}
		return incidents, nil
	}
	return nil, nil
}

func (e *Engine) loadModel() error {
	artifact, err := predict.LoadArtifact(e.cfg.Paths.Artifact)
	if err != nil {
		return err
	}
	schema, err := artifact.Schema()
	if err != nil {
		return err
	}
	rec, err := features.NewReconstructor(schema, e.aggregates,
		features.WithCityCenter(e.cfg.Engine.CityCenterLat, e.cfg.Engine.CityCenterLon))
	if err != nil {
		return err
	}
	model, err := predict.NewBaselineModel(schema)
	if err != nil {
		return fmt.Errorf("baseline model: %w", err)
	}
	predictor, err := predict.NewScenarioPredictor(model, rec, artifact,
		predict.WithIncidentTypes(e.aggregates.IncidentTypes()))
	if err != nil {
		return err
	}
	e.artifact = artifact
	e.rec = rec
	e.predictor = predictor
	log.Printf("engine: model artifact loaded (%d features, MAE %.2f min)",
		schema.Len(), artifact.Metrics.MAE)
	return nil
}

// Close releases the store handle, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Resolve geocodes one free-text location.
func (e *Engine) Resolve(raw string) geocoder.Resolution {
	return e.resolver.Resolve(raw)
}

// GeocodeBatch resolves a batch of incidents and reports the match rates.
func (e *Engine) GeocodeBatch(incidents []history.Incident) ([]history.Incident, pipeline.Report) {
	return e.runner.Run(incidents)
}

// Store exposes the incident store, nil when no database is configured.
func (e *Engine) Store() *history.DB {
	return e.store
}

// Artifact returns the loaded model artifact, nil when none is configured.
func (e *Engine) Artifact() *predict.Artifact {
	return e.artifact
}

// IncidentTypes returns the known incident types: the artifact's list when
// present, else the types observed in the historical data.
func (e *Engine) IncidentTypes() []string {
	if e.artifact != nil && len(e.artifact.IncidentTypes) > 0 {
		return e.artifact.IncidentTypes
	}
	return e.aggregates.IncidentTypes()
}

// checkRequest validates a prediction request before it reaches the
// reconstructor; malformed fields are the caller's defect, reported eagerly.
func (e *Engine) checkRequest(req features.Request) error {
	if err := e.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid prediction request: %w", err)
	}
	return nil
}

// Reconstruct builds the model-ready feature vector for one request.
func (e *Engine) Reconstruct(req features.Request) (*features.Vector, error) {
	if e.rec == nil {
		return nil, fmt.Errorf("no model artifact configured")
	}
	if err := e.checkRequest(req); err != nil {
		return nil, err
	}
	return e.rec.Reconstruct(req)
}

// PredictDelay predicts the delay for one request, clamped at zero.
func (e *Engine) PredictDelay(req features.Request) (float64, error) {
	if e.predictor == nil {
		return 0, fmt.Errorf("no model artifact configured")
	}
	if err := e.checkRequest(req); err != nil {
		return 0, err
	}
	return e.predictor.PredictDelay(req)
}

// PredictScenarios predicts the delay for every known incident type at the
// request's place and time, most severe first.
func (e *Engine) PredictScenarios(req features.Request) ([]predict.Scenario, error) {
	if e.predictor == nil {
		return nil, fmt.Errorf("no model artifact configured")
	}
	if err := e.checkRequest(req); err != nil {
		return nil, err
	}
	return e.predictor.PredictScenarios(req)
}

func (e *Engine) requireStore() error {
	if e.store == nil {
		return fmt.Errorf("no incident database configured")
	}
	return nil
}

// SearchLocations finds stored geocoded locations matching the query.
func (e *Engine) SearchLocations(query string, limit int) ([]history.LocationMatch, error) {
	if err := e.requireStore(); err != nil {
		return nil, err
	}
	return e.store.SearchLocations(query, limit)
}

// Heatmap aggregates stored incidents into a spatial grid.
func (e *Engine) Heatmap(start, end time.Time, gridSize int, minDelay float64) (*history.Heatmap, error) {
	if err := e.requireStore(); err != nil {
		return nil, err
	}
	return e.store.Heatmap(start, end, gridSize, minDelay)
}

// TimeRange reports the stored data coverage.
func (e *Engine) TimeRange() (history.TimeRange, error) {
	if err := e.requireStore(); err != nil {
		return history.TimeRange{}, err
	}
	return e.store.TimeRange()
}
