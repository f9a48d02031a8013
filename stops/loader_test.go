package stops

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleStopsCSV = `stop_id,stop_name,stop_lat,stop_lon
1001,Kennedy Station,43.7325,-79.2631
1002,Bathurst St at Wilson Ave,43.7354,-79.4512
1003,Main St Station,43.6890,-79.3015
`

func TestFromReader(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		wantStops int
		wantErr   bool
	}{
		{"valid file", sampleStopsCSV, 3, false},
		{
			"skips rows with bad coordinates",
			"stop_id,stop_name,stop_lat,stop_lon\n1,Good Stop,43.7,-79.4\n2,Bad Stop,not-a-number,-79.4\n3,,43.7,-79.4\n",
			1,
			false,
		},
		{
			"bom on first header",
			"\ufeffstop_id,stop_name,stop_lat,stop_lon\n1,Kennedy Station,43.7325,-79.2631\n",
			1,
			false,
		},
		{
			"missing coordinate headers",
			"stop_id,stop_name\n1,Kennedy Station\n",
			0,
			true,
		},
		{"empty file", "", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromReader(strings.NewReader(tc.input))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("FromReader() expected error, got %d stops", len(got))
				}
				return
			}
			if err != nil {
				t.Fatalf("FromReader() unexpected error: %v", err)
			}
			if len(got) != tc.wantStops {
				t.Errorf("FromReader() returned %d stops, want %d", len(got), tc.wantStops)
			}
		})
	}
}

func TestFromReaderFields(t *testing.T) {
	got, err := FromReader(strings.NewReader(sampleStopsCSV))
	if err != nil {
		t.Fatalf("FromReader() error: %v", err)
	}
	first := got[0]
	if first.ID != "1001" || first.Name != "Kennedy Station" {
		t.Errorf("unexpected first stop: %+v", first)
	}
	if first.Latitude != 43.7325 || first.Longitude != -79.2631 {
		t.Errorf("unexpected coordinates: %+v", first)
	}
}

func TestLoadFromZip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "gtfs.zip")

	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"agency.txt": "agency_id,agency_name\nTTC,Toronto Transit Commission\n",
		"stops.txt":  sampleStopsCSV,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	got, err := Load(zipPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Load() returned %d stops, want 3", len(got))
	}
}

func TestLoadMissingStopsEntry(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "gtfs.zip")

	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("routes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("route_id\n36\n")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	if _, err := Load(zipPath); err == nil {
		t.Fatal("Load() expected error for zip without stops.txt")
	}
}
