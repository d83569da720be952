package triage

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/mergevet/mergevet/internal/diff"
)

func makeEntries(n int) []diff.Entry {
	entries := make([]diff.Entry, n)
	for i := range entries {
		entries[i] = diff.Entry{
			Filename:  fmt.Sprintf("file%03d.go", i),
			Status:    diff.StatusModified,
			Additions: i + 1,
			Patch:     "@@ -1 +1 @@",
		}
	}
	return entries
}

func TestAssign_SmallDiffAllFull(t *testing.T) {
	for _, n := range []int{1, 5, 6, 20} {
		tiers := Assign(makeEntries(n), DefaultMaxFull)
		full, summarized, skipped := CountByTier(tiers)
		if full != n || summarized != 0 || skipped != 0 {
			t.Errorf("n=%d: got full=%d summarized=%d skipped=%d, want all full", n, full, summarized, skipped)
		}
	}
}

func TestAssign_MediumDiffSummarizesOverflow(t *testing.T) {
	tiers := Assign(makeEntries(30), 10)
	full, summarized, skipped := CountByTier(tiers)
	if full != 10 {
		t.Errorf("full = %d, want 10", full)
	}
	if summarized != 20 {
		t.Errorf("summarized = %d, want 20", summarized)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
}

func TestAssign_LargeDiffSkipsOverflow(t *testing.T) {
	tiers := Assign(makeEntries(60), 20)
	full, summarized, skipped := CountByTier(tiers)
	if full != 20 {
		t.Errorf("full = %d, want 20", full)
	}
	if skipped != 40 {
		t.Errorf("skipped = %d, want 40", skipped)
	}
	if summarized != 0 {
		t.Errorf("summarized = %d, want 0", summarized)
	}

	// The 20 largest changes are the ones reviewed in full.
	for i := 40; i < 60; i++ {
		name := fmt.Sprintf("file%03d.go", i)
		if tiers[name] != TierFull {
			t.Errorf("tiers[%s] = %s, want full", name, tiers[name])
		}
	}
}

func TestAssign_FullCountNeverExceedsCap(t *testing.T) {
	for _, n := range []int{21, 35, 50, 51, 100, 500} {
		tiers := Assign(makeEntries(n), DefaultMaxFull)
		full, _, _ := CountByTier(tiers)
		want := DefaultMaxFull
		if n < want {
			want = n
		}
		if full != want {
			t.Errorf("n=%d: full = %d, want %d", n, full, want)
		}
	}
}

func TestAssign_TiesBreakByFilename(t *testing.T) {
	entries := []diff.Entry{}
	for i := 0; i < 25; i++ {
		entries = append(entries, diff.Entry{
			Filename:  fmt.Sprintf("f%02d.go", i),
			Status:    diff.StatusModified,
			Additions: 10,
			Patch:     "x",
		})
	}
	tiers := Assign(entries, 5)
	// All have identical churn; the five lexically smallest names win.
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("f%02d.go", i)
		if tiers[name] != TierFull {
			t.Errorf("tiers[%s] = %s, want full", name, tiers[name])
		}
	}
	if tiers["f05.go"] != TierSummarized {
		t.Errorf("tiers[f05.go] = %s, want summarized", tiers["f05.go"])
	}
}

func TestAssign_Deterministic(t *testing.T) {
	entries := makeEntries(42)
	a := Assign(entries, 15)
	b := Assign(entries, 15)
	if !reflect.DeepEqual(a, b) {
		t.Error("Assign is not deterministic for identical input")
	}
}

func TestAssign_DeletedWithoutPatchAlwaysSummarized(t *testing.T) {
	entries := makeEntries(3)
	entries = append(entries, diff.Entry{
		Filename:  "gone.go",
		Status:    diff.StatusDeleted,
		Deletions: 5000,
	})
	tiers := Assign(entries, DefaultMaxFull)
	if tiers["gone.go"] != TierSummarized {
		t.Errorf("deleted file tier = %s, want summarized", tiers["gone.go"])
	}
}

func TestCompactRendering(t *testing.T) {
	if CompactRendering(5) {
		t.Error("CompactRendering(5) = true, want false")
	}
	if !CompactRendering(6) {
		t.Error("CompactRendering(6) = false, want true")
	}
}
