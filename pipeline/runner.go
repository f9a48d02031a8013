package pipeline

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/delay-prediction-engine/geocoder"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/history"
)

// unmatchedSampleCap bounds the distinct unmatched locations carried in a
// report.
const unmatchedSampleCap = 20

// Report summarizes one batch geocoding run. Producing it is a required
// output of the pipeline, not optional logging.
type Report struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Summary    geocoder.Summary `json:"summary"`
	Total      int              `json:"total"`
	MatchRate  float64          `json:"match_rate"`
	Skipped    int              `json:"skipped"`
	Unmatched  []string         `json:"unmatched_sample,omitempty"`
}

// Run converts a report into the store's run-bookkeeping row.
func (r Report) Run() history.GeocodeRun {
	return history.GeocodeRun{
		ID:           r.RunID,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		Total:        r.Summary.Total(),
		Exact:        r.Summary.Exact,
		Station:      r.Summary.Station,
		Intersection: r.Summary.Intersection,
		Partial:      r.Summary.Partial,
		Failed:       r.Summary.Failed,
	}
}

// Runner geocodes incident batches against one resolver.
type Runner struct {
	resolver *geocoder.Resolver
	workers  int
}

// NewRunner builds a Runner with the given worker count; zero or negative
// means one worker per CPU.
func NewRunner(resolver *geocoder.Resolver, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{resolver: resolver, workers: workers}
}

// Run resolves every incident's location text and returns the annotated
// rows with the run report. Rows that already carry coordinates are passed
// through untouched and counted as skipped, which keeps re-runs idempotent.
// Row order is preserved; workers write disjoint slots of the result, so no
// locking is needed beyond the index channel.
func (r *Runner) Run(incidents []history.Incident) ([]history.Incident, Report) {
	report := Report{RunID: uuid.NewString(), StartedAt: time.Now(), Total: len(incidents)}

	out := make([]history.Incident, len(incidents))
	copy(out, incidents)
	resolutions := make([]geocoder.Resolution, len(incidents))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				resolutions[i] = r.resolver.Resolve(out[i].Location)
			}
		}()
	}
	for i := range out {
		if out[i].Geocoded {
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Summary and unmatched sampling happen sequentially in row order, so
	// reports are deterministic regardless of worker scheduling.
	seen := make(map[string]struct{})
	for i := range out {
		if incidents[i].Geocoded {
			report.Skipped++
			continue
		}
		res := resolutions[i]
		report.Summary.Add(res.Method)
		if res.Matched {
			out[i].Latitude = res.Latitude
			out[i].Longitude = res.Longitude
			out[i].Geocoded = true
			continue
		}
		if len(report.Unmatched) < unmatchedSampleCap {
			if _, dup := seen[out[i].Location]; !dup {
				seen[out[i].Location] = struct{}{}
				report.Unmatched = append(report.Unmatched, out[i].Location)
			}
		}
	}

	report.FinishedAt = time.Now()
	report.MatchRate = report.Summary.MatchRate()
	return out, report
}
