package savings

import (
	"sort"

	"github.com/google/uuid"
)

// DefaultBoardSize is the number of entries shown on leaderboards.
const DefaultBoardSize = 10

// Amount is a single (key, amount) record fed into the ranking. The key is
// usually a user id but may be any entity being ranked.
type Amount struct {
	Key    uuid.UUID
	Amount int64
}

// RankedEntry is one row of a ranking.
type RankedEntry struct {
	Rank        int       `json:"rank"`
	Key         uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Total       int64     `json:"total"`
}

// RankOptions controls name resolution and truncation.
type RankOptions struct {
	// Names maps keys to display names. Missing or empty names fall back
	// to Fallback.
	Names    map[uuid.UUID]string
	Fallback string
	// Limit truncates the ranking after sorting. Zero means no limit.
	Limit int
}

// Rank groups records by key, sums their amounts and orders the result by
// total descending. Equal totals are ordered by key so the output does not
// depend on input order. Ranks are 1-based positions assigned after
// truncation; equal totals still receive distinct ranks.
func Rank(records []Amount, opts RankOptions) []RankedEntry {
	totals := make(map[uuid.UUID]int64, len(records))
	for _, r := range records {
		totals[r.Key] += r.Amount
	}

	entries := make([]RankedEntry, 0, len(totals))
	for key, total := range totals {
		name := opts.Names[key]
		if name == "" {
			name = opts.Fallback
		}
		entries = append(entries, RankedEntry{Key: key, DisplayName: name, Total: total})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Key.String() < entries[j].Key.String()
	})

	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}

// Find returns the entry for key, if present.
func Find(entries []RankedEntry, key uuid.UUID) (RankedEntry, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e, true
		}
	}
	return RankedEntry{}, false
}
