package diff

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Status describes what happened to a file in a change.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
	StatusRenamed  Status = "renamed"
)

// Entry is one changed file in a review, with its patch text and
// change statistics. Entries are immutable inputs; filenames are
// unique within a single review.
type Entry struct {
	Filename  string `json:"filename"`
	Status    Status `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// Changes returns a human-readable size description like "+45, -12".
func (e Entry) Changes() string {
	return fmt.Sprintf("+%d, -%d", e.Additions, e.Deletions)
}

// TotalLines returns the combined line churn used for triage ranking.
func (e Entry) TotalLines() int {
	return e.Additions + e.Deletions
}

// Validate checks a set of entries for the one fatal input condition:
// an entry without a filename. There is no safe partial result to
// build from an unnamed file, so the whole review must be rejected.
func Validate(entries []Entry) error {
	for i, e := range entries {
		if e.Filename == "" {
			return fmt.Errorf("%w: entry %d has no filename", ErrMalformedEntry, i)
		}
	}
	return nil
}

// jsonPayload matches the two accepted JSON input shapes: a bare array
// of entries, or an object with a "files" key.
type jsonPayload struct {
	Files []Entry `json:"files"`
}

// ParseJSON decodes diff entries from JSON. Both a bare array and a
// {"files": [...]} wrapper are accepted.
func ParseJSON(data []byte) ([]Entry, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var entries []Entry
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
			return nil, fmt.Errorf("parsing diff entries: %w", err)
		}
		return entries, nil
	}

	var payload jsonPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, fmt.Errorf("parsing diff payload: %w", err)
	}
	return payload.Files, nil
}

// ParseUnified parses unified diff text (git diff output) into
// entries, one per changed file.
func ParseUnified(r io.Reader) ([]Entry, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing unified diff: %w", err)
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		e := Entry{
			Filename: fileName(f),
			Status:   fileStatus(f),
		}

		var patch strings.Builder
		for _, frag := range f.TextFragments {
			patch.WriteString(frag.Header())
			patch.WriteString("\n")
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					e.Additions++
				case gitdiff.OpDelete:
					e.Deletions++
				}
				patch.WriteString(line.String())
			}
		}
		if !f.IsBinary {
			e.Patch = patch.String()
		}

		entries = append(entries, e)
	}
	return entries, nil
}

func fileName(f *gitdiff.File) string {
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}

func fileStatus(f *gitdiff.File) Status {
	switch {
	case f.IsNew:
		return StatusAdded
	case f.IsDelete:
		return StatusDeleted
	case f.IsRename:
		return StatusRenamed
	default:
		return StatusModified
	}
}
