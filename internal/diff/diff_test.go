package diff

import (
	"errors"
	"strings"
	"testing"
)

func TestParseJSON_BareArray(t *testing.T) {
	input := `[
		{"filename": "main.go", "status": "modified", "additions": 10, "deletions": 2, "patch": "@@ -1 +1 @@"},
		{"filename": "util.go", "status": "added", "additions": 40, "deletions": 0}
	]`

	entries, err := ParseJSON([]byte(input))
	if err != nil {
		t.Fatalf("ParseJSON error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Filename != "main.go" {
		t.Errorf("entries[0].Filename = %q", entries[0].Filename)
	}
	if entries[0].Status != StatusModified {
		t.Errorf("entries[0].Status = %q, want modified", entries[0].Status)
	}
	if entries[1].Additions != 40 {
		t.Errorf("entries[1].Additions = %d, want 40", entries[1].Additions)
	}
}

func TestParseJSON_FilesWrapper(t *testing.T) {
	input := `{"files": [{"filename": "a.go", "status": "deleted", "additions": 0, "deletions": 12}]}`

	entries, err := ParseJSON([]byte(input))
	if err != nil {
		t.Fatalf("ParseJSON error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Status != StatusDeleted {
		t.Errorf("Status = %q, want deleted", entries[0].Status)
	}
}

func TestParseJSON_Empty(t *testing.T) {
	entries, err := ParseJSON([]byte("  \n"))
	if err != nil {
		t.Fatalf("ParseJSON error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	if _, err := ParseJSON([]byte(`[{"filename":`)); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestParseUnified(t *testing.T) {
	raw := `diff --git a/hello.go b/hello.go
index e69de29..4b825dc 100644
--- a/hello.go
+++ b/hello.go
@@ -1,3 +1,4 @@
 package main
+import "fmt"
 func main() {
-	println("hi")
+	fmt.Println("hi")
 }
`
	entries, err := ParseUnified(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseUnified error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Filename != "hello.go" {
		t.Errorf("Filename = %q, want hello.go", e.Filename)
	}
	if e.Status != StatusModified {
		t.Errorf("Status = %q, want modified", e.Status)
	}
	if e.Additions != 2 || e.Deletions != 1 {
		t.Errorf("counts = +%d/-%d, want +2/-1", e.Additions, e.Deletions)
	}
	if e.Patch == "" {
		t.Error("Patch is empty")
	}
}

func TestValidate(t *testing.T) {
	ok := []Entry{{Filename: "a.go", Status: StatusModified}}
	if err := Validate(ok); err != nil {
		t.Fatalf("Validate returned error for valid entries: %v", err)
	}

	bad := []Entry{{Filename: "a.go"}, {Filename: ""}}
	err := Validate(bad)
	if err == nil {
		t.Fatal("expected error for missing filename")
	}
	if !errors.Is(err, ErrMalformedEntry) {
		t.Errorf("error = %v, want ErrMalformedEntry", err)
	}
}

func TestEntryChanges(t *testing.T) {
	e := Entry{Additions: 45, Deletions: 12}
	if got := e.Changes(); got != "+45, -12" {
		t.Errorf("Changes() = %q, want %q", got, "+45, -12")
	}
	if got := e.TotalLines(); got != 57 {
		t.Errorf("TotalLines() = %d, want 57", got)
	}
}
