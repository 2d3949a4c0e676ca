package props

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SeasonFor returns the season label ("2025-26") that t falls in.
// Seasons roll over in October.
func SeasonFor(t time.Time) string {
	start := t.Year()
	if t.Month() < time.October {
		start--
	}
	return seasonLabel(start)
}

// PriorSeason returns the label of the season before the given one
func PriorSeason(season string) (string, error) {
	start, err := seasonStartYear(season)
	if err != nil {
		return "", err
	}
	return seasonLabel(start - 1), nil
}

func seasonLabel(start int) string {
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

func seasonStartYear(season string) (int, error) {
	parts := strings.SplitN(season, "-", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid season label %q", season)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid season label %q: %w", season, err)
	}
	return start, nil
}
