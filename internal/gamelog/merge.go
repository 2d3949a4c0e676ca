package gamelog

import (
	"sort"
	"strings"

	"github.com/stitts-dev/nba-props/internal/props"
)

// MergeSeasons combines per-season log sets into one series ordered by game
// date, most recent first. ok is false when every set is empty.
// The input slices are never modified.
func MergeSeasons(sets ...[]props.GameLog) ([]props.GameLog, bool) {
	total := 0
	for _, set := range sets {
		total += len(set)
	}
	if total == 0 {
		return nil, false
	}

	merged := make([]props.GameLog, 0, total)
	for _, set := range sets {
		merged = append(merged, set...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].GameDate.After(merged[j].GameDate)
	})

	return merged, true
}

// FilterHeadToHead keeps the games whose matchup mentions the opponent code.
// Matching is a plain substring test, so a code contained in another
// team's code would also match.
func FilterHeadToHead(logs []props.GameLog, opponent string) []props.GameLog {
	h2h := make([]props.GameLog, 0)
	if opponent == "" {
		return h2h
	}
	for _, row := range logs {
		if strings.Contains(row.Matchup, opponent) {
			h2h = append(h2h, row)
		}
	}
	return h2h
}

// Window returns the first min(n, len(logs)) rows
func Window(logs []props.GameLog, n int) []props.GameLog {
	if n < 0 {
		n = 0
	}
	if n > len(logs) {
		n = len(logs)
	}
	return logs[:n]
}
