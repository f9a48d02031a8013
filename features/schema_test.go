package features

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewSchema(t *testing.T) {
	s, err := NewSchema([]string{"hour", "latitude", "incident_Other"})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	if got := s.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	if i, ok := s.Index("latitude"); !ok || i != 1 {
		t.Errorf("Index(latitude) = %d, %v; want 1, true", i, ok)
	}
	if _, ok := s.Index("longitude"); ok {
		t.Error("Index(longitude) should miss")
	}
}

func TestNewSchemaRejectsDefects(t *testing.T) {
	cases := []struct {
		name    string
		columns []string
	}{
		{"empty", nil},
		{"blank column", []string{"hour", " "}},
		{"duplicate column", []string{"hour", "latitude", "hour"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSchema(tc.columns); err == nil {
				t.Errorf("NewSchema(%v) succeeded, want error", tc.columns)
			}
		})
	}
}

func TestColumnsWithPrefix(t *testing.T) {
	s, err := NewSchema([]string{
		"hour", "incident_Mechanical", "dir_N", "incident_Other", "day_Monday",
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	want := []string{"incident_Mechanical", "incident_Other"}
	if diff := cmp.Diff(want, s.ColumnsWithPrefix("incident_")); diff != "" {
		t.Errorf("ColumnsWithPrefix(incident_) mismatch (-want +got):\n%s", diff)
	}
	if got := s.ColumnsWithPrefix("weather_"); got != nil {
		t.Errorf("ColumnsWithPrefix(weather_) = %v, want nil", got)
	}
}

func TestVectorMarshalJSONKeepsSchemaOrder(t *testing.T) {
	s, err := NewSchema([]string{"zulu", "alpha", "mike"})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	v := newVector(s)
	v.set("zulu", 1)
	v.set("alpha", 2.5)

	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"zulu":1,"alpha":2.5,"mike":0}`
	if string(data) != want {
		t.Errorf("MarshalJSON = %s, want %s", data, want)
	}
}
