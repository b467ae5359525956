package ui

import (
	"bytes"
	"testing"
)

func TestContentHeight(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"one", 1},
		{"one\ntwo", 2},
		{"one\ntwo\n", 3},
	}
	for _, tt := range tests {
		if got := contentHeight(tt.content); got != tt.want {
			t.Errorf("contentHeight(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestPagerCommand(t *testing.T) {
	t.Setenv("GQLD_PAGER", "")
	t.Setenv("PAGER", "")
	if got := pagerCommand(); got != "less" {
		t.Errorf("default pager = %q", got)
	}
	t.Setenv("PAGER", "more")
	if got := pagerCommand(); got != "more" {
		t.Errorf("PAGER = %q", got)
	}
	t.Setenv("GQLD_PAGER", "bat -p")
	if got := pagerCommand(); got != "bat -p" {
		t.Errorf("GQLD_PAGER = %q", got)
	}
}

func TestToPagerWithoutTerminalPrintsDirectly(t *testing.T) {
	var buf bytes.Buffer
	if err := ToPager("+ Type Post\n", PagerOptions{Out: &buf}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "+ Type Post\n" {
		t.Errorf("got %q", buf.String())
	}
}
