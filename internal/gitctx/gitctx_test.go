package gitctx

import (
	"testing"

	"github.com/mergevet/mergevet/internal/diff"
)

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{"exact", "main.go", []string{"main.go"}, true},
		{"simple glob", "main_test.go", []string{"*_test.go"}, true},
		{"recursive basename", "pkg/sub/gen.pb.go", []string{"**/*.pb.go"}, true},
		{"directory subtree", "vendor/lib/a.go", []string{"vendor/**"}, true},
		{"directory itself", "vendor", []string{"vendor/**"}, true},
		{"no match", "internal/app.go", []string{"vendor/**", "*.md"}, false},
		{"empty patterns", "anything.go", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesAny(tt.path, tt.patterns); got != tt.want {
				t.Errorf("MatchesAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	entries := []diff.Entry{
		{Filename: "internal/app.go"},
		{Filename: "vendor/dep/lib.go"},
		{Filename: "api.gen.go"},
	}

	got := Filter(entries, []string{"vendor/**", "**/*.gen.go"})
	if len(got) != 1 || got[0].Filename != "internal/app.go" {
		t.Errorf("Filter kept %v, want only internal/app.go", got)
	}
}

func TestFilter_NoPatternsKeepsAll(t *testing.T) {
	entries := []diff.Entry{{Filename: "a.go"}, {Filename: "b.go"}}
	if got := Filter(entries, nil); len(got) != 2 {
		t.Errorf("Filter dropped entries without patterns: %v", got)
	}
}
