package triage

import (
	"sort"

	"github.com/mergevet/mergevet/internal/diff"
)

// Tier is the depth of review assigned to one file.
type Tier string

const (
	// TierFull files get pattern scanning plus a dedicated model call.
	TierFull Tier = "full"
	// TierSummarized files get pattern scanning plus a shared batch
	// model call with no per-line detail guarantee.
	TierSummarized Tier = "summarized"
	// TierSkipped files get pattern scanning and size heuristics only.
	TierSkipped Tier = "skipped"
)

// DefaultMaxFull caps how many files receive full-detail review in
// large diffs.
const DefaultMaxFull = 20

// Thresholds where the budget policy switches behavior, by total file
// count.
const (
	smallDiffLimit = 5
	largeDiffLimit = 50
)

// Assign partitions entries into tiers under the review budget. The
// policy is a pure function of the input: identical entries always
// yield identical tiers.
//
// At most maxFull files are reviewed in full: the largest changes by
// additions+deletions, with filename ascending breaking ties. Up to 50
// files, the remainder is summarized; beyond 50 files it is skipped
// instead. Deleted files with no patch content are summarized
// regardless of size; there is nothing to analyze in depth.
func Assign(entries []diff.Entry, maxFull int) map[string]Tier {
	if maxFull <= 0 {
		maxFull = DefaultMaxFull
	}

	tiers := make(map[string]Tier, len(entries))
	n := len(entries)

	// Files past the cap are summarized in moderate diffs and skipped
	// outright in very large ones. With the default cap, diffs of up to
	// twenty files are always reviewed in full.
	overflow := TierSummarized
	if n > largeDiffLimit {
		overflow = TierSkipped
	}

	ranked := make([]diff.Entry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalLines() != ranked[j].TotalLines() {
			return ranked[i].TotalLines() > ranked[j].TotalLines()
		}
		return ranked[i].Filename < ranked[j].Filename
	})

	full := 0
	for _, e := range ranked {
		if emptyDeletion(e) {
			tiers[e.Filename] = TierSummarized
			continue
		}
		if full < maxFull {
			tiers[e.Filename] = TierFull
			full++
			continue
		}
		tiers[e.Filename] = overflow
	}

	return tiers
}

// emptyDeletion reports whether the entry is a deleted file with no
// patch content.
func emptyDeletion(e diff.Entry) bool {
	return e.Status == diff.StatusDeleted && e.Patch == ""
}

// CompactRendering reports whether a diff of n files should be
// rendered in compact form. Small diffs get per-file detail in reports;
// anything larger is condensed even though every file may still have
// been reviewed in full.
func CompactRendering(n int) bool {
	return n > smallDiffLimit
}

// CountByTier tallies tier assignments, for summaries and tests.
func CountByTier(tiers map[string]Tier) (full, summarized, skipped int) {
	for _, t := range tiers {
		switch t {
		case TierFull:
			full++
		case TierSummarized:
			summarized++
		case TierSkipped:
			skipped++
		}
	}
	return
}
