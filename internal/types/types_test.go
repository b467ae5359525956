package types

import (
	"errors"
	"io/fs"
	"testing"
)

func TestParseChangeType(t *testing.T) {
	tests := []struct {
		raw     string
		want    ChangeType
		wantErr bool
	}{
		{"ADD", ChangeAdd, false},
		{"add", ChangeAdd, false},
		{"Update", ChangeUpdate, false},
		{" REMOVE ", ChangeRemove, false},
		{"rename", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseChangeType(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseChangeType(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseChangeType(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestChangeSummaryTotal(t *testing.T) {
	s := ChangeSummary{Add: 2, Update: 1, Remove: 3}
	if s.Total() != 6 {
		t.Errorf("Total() = %d, want 6", s.Total())
	}
}

func TestSettingConstructors(t *testing.T) {
	if s := Explicit("staging"); !s.Set || s.Value != "staging" {
		t.Errorf("Explicit = %+v", s)
	}
	if s := Default("default"); s.Set || s.Value != "default" {
		t.Errorf("Default = %+v", s)
	}
}

func TestErrorMessages(t *testing.T) {
	err := &MigrationError{Environment: "default", NotDeployed: true, Messages: []string{"bundle missing"}}
	if got := err.Error(); got != `migrating environment "default": version was not deployed: bundle missing` {
		t.Errorf("unexpected message %q", got)
	}

	err = &MigrationError{Environment: "default", Messages: []string{"a", "b"}}
	if got := err.Error(); got != `migrating environment "default": a; b` {
		t.Errorf("unexpected message %q", got)
	}

	cl := &ClusterListError{Err: fs.ErrNotExist}
	if !errors.Is(cl, fs.ErrNotExist) {
		t.Error("ClusterListError should unwrap its cause")
	}

	refresh := &IoRefreshError{Op: "extract", Path: "/tmp/x", Err: fs.ErrPermission}
	var target *IoRefreshError
	if !errors.As(error(refresh), &target) || !errors.Is(refresh, fs.ErrPermission) {
		t.Error("IoRefreshError should support errors.As and errors.Is")
	}
}
