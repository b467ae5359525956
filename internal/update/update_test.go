package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		current       string
		m             Manifest
		wantOutdated  bool
		wantAvailable bool
	}{
		{"up to date", "1.4.0", Manifest{Latest: "1.4.0", Minimum: "1.0.0"}, false, false},
		{"newer available", "1.3.2", Manifest{Latest: "v1.4.0", Minimum: "1.0.0"}, false, true},
		{"below minimum", "0.9.0", Manifest{Latest: "1.4.0", Minimum: "1.0.0"}, true, true},
		{"dev build", "dev", Manifest{Latest: "1.4.0", Minimum: "9.0.0"}, false, false},
		{"garbage manifest", "1.0.0", Manifest{Latest: "soon", Minimum: ""}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Evaluate(tt.current, tt.m)
			if st.Outdated != tt.wantOutdated || st.Available != tt.wantAvailable {
				t.Errorf("Evaluate(%q, %+v) = outdated %v available %v", tt.current, tt.m, st.Outdated, st.Available)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"latest":"2.0.0","minimum":"1.5.0"}`))
	}))
	defer srv.Close()

	st, err := NewChecker(srv.URL, "1.2.0").Check(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !st.Outdated || st.Minimum != "1.5.0" {
		t.Errorf("status = %+v", st)
	}
}

func TestCheckSkipped(t *testing.T) {
	t.Setenv(envNoUpdateCheck, "1")
	st, err := NewChecker("http://127.0.0.1:1/unreachable", "1.0.0").Check(context.Background())
	if err != nil {
		t.Fatalf("skipped check should not hit the network: %v", err)
	}
	if st.Outdated {
		t.Error("skipped check must not report outdated")
	}
}

func TestCheckServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewChecker(srv.URL, "1.0.0").Check(context.Background()); err == nil {
		t.Error("expected error")
	}
}
