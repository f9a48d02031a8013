package predict

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const artifactJSON = `{
	"feature_columns": ["hour", "incident_avg_delay", "spatial_cell_avg_delay", "incident_Other"],
	"incident_types": ["Mechanical", "Security"],
	"metrics": {"MAE": 6.2, "RMSE": 11.4, "R2": 0.41},
	"trained_at": "2025-11-02T09:30:00Z"
}`

func TestReadArtifact(t *testing.T) {
	a, err := ReadArtifact(strings.NewReader(artifactJSON))
	if err != nil {
		t.Fatalf("ReadArtifact: %v", err)
	}

	wantCols := []string{"hour", "incident_avg_delay", "spatial_cell_avg_delay", "incident_Other"}
	if diff := cmp.Diff(wantCols, a.FeatureColumns); diff != "" {
		t.Errorf("feature columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Mechanical", "Security"}, a.IncidentTypes); diff != "" {
		t.Errorf("incident types mismatch (-want +got):\n%s", diff)
	}
	if a.Metrics.MAE != 6.2 || a.Metrics.RMSE != 11.4 || a.Metrics.R2 != 0.41 {
		t.Errorf("unexpected metrics %+v", a.Metrics)
	}

	schema, err := a.Schema()
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if got := schema.Len(); got != 4 {
		t.Errorf("schema.Len() = %d, want 4", got)
	}
}

// A defective artifact must fail at load, never at prediction time.
func TestReadArtifactRejectsDefects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "feature_columns: [hour]"},
		{"no columns", `{"feature_columns": []}`},
		{"duplicate column", `{"feature_columns": ["hour", "hour"]}`},
		{"blank column", `{"feature_columns": ["hour", ""]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadArtifact(strings.NewReader(tc.body)); err == nil {
				t.Error("ReadArtifact succeeded, want error")
			}
		})
	}
}

func TestLoadArtifactMissingFile(t *testing.T) {
	if _, err := LoadArtifact("testdata/does-not-exist.json"); err == nil {
		t.Error("LoadArtifact on missing file succeeded, want error")
	}
}
