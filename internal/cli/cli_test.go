package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mergevet/mergevet/internal/config"
)

// resetFlags resets all package-level flag variables to their zero
// values.
func resetFlags() {
	flagConfigPath = ""
	flagVerbose = false
	flagFormat = ""
	flagOut = ""
	flagRefresh = false
	flagMaxFull = 0
	flagExclude = ""
	flagNoRedact = false
	flagUnified = false
	flagRepo = ""
	flagPost = false
	flagMergeBase = false
	exitCode = ExitSuccess
}

func TestSplitComma(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"single value", "foo", []string{"foo"}},
		{"multiple values", "a,b,c", []string{"a", "b", "c"}},
		{"whitespace trimmed", " a , b ", []string{"a", "b"}},
		{"empty parts skipped", "a,,b", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitComma(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitComma(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitComma(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	resetFlags()
	flagFormat = "json"
	flagMaxFull = 7
	flagRefresh = true
	flagExclude = "vendor/**,*.md"
	defer resetFlags()

	cfg := config.Default()
	before := len(cfg.ExcludePatterns)
	applyFlags(&cfg)

	if cfg.Output.Format != "json" {
		t.Errorf("format = %q, want json", cfg.Output.Format)
	}
	if cfg.Review.MaxFullFiles != 7 {
		t.Errorf("max full = %d, want 7", cfg.Review.MaxFullFiles)
	}
	if !cfg.Cache.ForceRefresh {
		t.Error("refresh flag not applied")
	}
	if len(cfg.ExcludePatterns) != before+2 {
		t.Errorf("excludes = %v, want 2 appended", cfg.ExcludePatterns)
	}
}

func TestResolveRepo_Flag(t *testing.T) {
	resetFlags()
	flagRepo = "acme/widgets"
	defer resetFlags()

	owner, repo, err := resolveRepo()
	if err != nil {
		t.Fatalf("resolveRepo: %v", err)
	}
	if owner != "acme" || repo != "widgets" {
		t.Errorf("got %s/%s, want acme/widgets", owner, repo)
	}
}

func TestResolveRepo_BadFlag(t *testing.T) {
	resetFlags()
	flagRepo = "just-a-name"
	defer resetFlags()

	if _, _, err := resolveRepo(); err == nil {
		t.Fatal("want error for malformed --repo")
	}
}

func TestReadEntries_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.json")
	content := `[{"filename": "a.go", "status": "modified", "additions": 3, "deletions": 1, "patch": "@@ -1,1 +1,3 @@\n+x\n"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := readEntries(path, false)
	if err != nil {
		t.Fatalf("readEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Filename != "a.go" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestReadEntries_Unified(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.diff")
	content := "diff --git a/b.go b/b.go\n" +
		"--- a/b.go\n" +
		"+++ b/b.go\n" +
		"@@ -1,1 +1,2 @@\n" +
		" package b\n" +
		"+var x = 1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := readEntries(path, true)
	if err != nil {
		t.Fatalf("readEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Filename != "b.go" {
		t.Errorf("entries = %+v", entries)
	}
	if entries[0].Additions != 1 {
		t.Errorf("additions = %d, want 1", entries[0].Additions)
	}
}

func TestLoadProjectContext_FailureDoesNotAbort(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	root := filepath.Join(t.TempDir(), "missing")

	project, info := loadProjectContext(context.Background(), cfg, root)
	if project.Fingerprint != "" || len(project.CriticalDirectories) != 0 {
		t.Errorf("project = %+v, want zero context on synthesis failure", project)
	}
	if info.UsedCache {
		t.Errorf("cache info = %+v, want unused", info)
	}
}

func TestCacheDir(t *testing.T) {
	cfg := config.Default()
	if got := cacheDir(cfg, "/repo"); got != filepath.Join("/repo", ".mergevet/cache") {
		t.Errorf("default cache dir = %q", got)
	}

	cfg.Cache.Dir = "/tmp/custom"
	if got := cacheDir(cfg, "/repo"); got != "/tmp/custom" {
		t.Errorf("configured cache dir = %q", got)
	}
}
