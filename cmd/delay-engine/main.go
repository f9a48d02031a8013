package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	delayengine "github.com/theoremus-urban-solutions/delay-prediction-engine"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/config"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/features"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/history"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/pipeline"
	"github.com/theoremus-urban-solutions/delay-prediction-engine/utils"
)

func main() {
	mode := flag.String("mode", "geocode", "geocode|features|scenarios|search|heatmap|timerange")
	configPath := flag.String("config", "", "config file (default: config.yml search path)")

	stopsPath := flag.String("stops", "", "stops.txt or GTFS zip (overrides config)")
	historyPath := flag.String("history", "", "historical incident CSV (overrides config)")
	artifactPath := flag.String("artifact", "", "model artifact JSON (overrides config)")
	dbPath := flag.String("db", "", "incident database (overrides config)")
	outPath := flag.String("out", "", "geocoded CSV output (default: stdout report only)")
	persist := flag.Bool("persist", false, "store geocoded incidents and the run in the database")

	when := flag.String("time", "", "prediction timestamp (default: now)")
	lat := flag.Float64("lat", config.DefaultCityCenterLat, "prediction latitude")
	lon := flag.Float64("lon", config.DefaultCityCenterLon, "prediction longitude")
	route := flag.String("route", "36", "route identifier")
	incident := flag.String("incident", "Mechanical", "incident type")
	direction := flag.String("direction", "N", "direction code")

	query := flag.String("query", "", "location search text")
	limit := flag.Int("limit", 10, "max search results")
	start := flag.String("start", "", "heatmap window start")
	end := flag.String("end", "", "heatmap window end")
	grid := flag.Int("grid", 20, "heatmap grid size")
	minDelay := flag.Float64("minDelay", 0, "heatmap minimum delay minutes")
	flag.Parse()

	delayengine.InitLogging()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	override(&cfg.Paths.Stops, *stopsPath)
	override(&cfg.Paths.History, *historyPath)
	override(&cfg.Paths.Artifact, *artifactPath)
	override(&cfg.Paths.Database, *dbPath)

	engine, err := delayengine.New(cfg)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	defer engine.Close()

	switch *mode {
	case "geocode":
		runGeocode(engine, cfg, *outPath, *persist)
	case "features":
		v, err := engine.Reconstruct(request(*when, *lat, *lon, *route, *incident, *direction))
		if err != nil {
			log.Fatalf("features: %v", err)
		}
		printJSON(v)
	case "scenarios":
		scenarios, err := engine.PredictScenarios(request(*when, *lat, *lon, *route, *incident, *direction))
		if err != nil {
			log.Fatalf("scenarios: %v", err)
		}
		printJSON(scenarios)
	case "search":
		matches, err := engine.SearchLocations(*query, *limit)
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		printJSON(matches)
	case "heatmap":
		from, to, err := window(*start, *end)
		if err != nil {
			log.Fatalf("heatmap: %v", err)
		}
		hm, err := engine.Heatmap(from, to, *grid, *minDelay)
		if err != nil {
			log.Fatalf("heatmap: %v", err)
		}
		printJSON(hm)
	case "timerange":
		tr, err := engine.TimeRange()
		if err != nil {
			log.Fatalf("timerange: %v", err)
		}
		printJSON(tr)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func loadConfig(path string) (config.AppConfig, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func runGeocode(engine *delayengine.Engine, cfg config.AppConfig, outPath string, persist bool) {
	if cfg.Paths.History == "" {
		log.Fatal("geocode: no history file configured; pass -history")
	}
	incidents, err := history.LoadCSV(cfg.Paths.History)
	if err != nil {
		log.Fatalf("geocode: %v", err)
	}

	geocoded, report := engine.GeocodeBatch(incidents)
	log.Printf("geocode: %d rows, %.1f%% matched (%d skipped)",
		report.Total, report.MatchRate*100, report.Skipped)

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("geocode: %v", err)
		}
		defer f.Close()
		if err := pipeline.WriteGeocodedCSV(f, geocoded); err != nil {
			log.Fatalf("geocode: %v", err)
		}
	}
	if persist {
		if engine.Store() == nil {
			log.Fatal("geocode: -persist needs a database; pass -db or configure paths.database")
		}
		if err := engine.Store().InsertIncidents(geocoded); err != nil {
			log.Fatalf("geocode: %v", err)
		}
		if err := engine.Store().SaveRun(report.Run()); err != nil {
			log.Fatalf("geocode: %v", err)
		}
	}
	if err := pipeline.WriteReportJSON(os.Stdout, report); err != nil {
		log.Fatalf("geocode: %v", err)
	}
}

func request(when string, lat, lon float64, route, incident, direction string) features.Request {
	ts := time.Now()
	if when != "" {
		parsed, err := utils.ParseTimestamp(when)
		if err != nil {
			log.Fatalf("invalid -time: %v", err)
		}
		ts = parsed
	}
	return features.Request{
		Time:      ts,
		Latitude:  lat,
		Longitude: lon,
		Route:     route,
		Incident:  incident,
		Direction: direction,
	}
}

func window(start, end string) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("-start and -end are required")
	}
	from, err := utils.ParseTimestamp(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -start: %w", err)
	}
	to, err := utils.ParseTimestamp(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -end: %w", err)
	}
	return from, to, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("encode output: %v", err)
	}
}
