package projection

import (
	"github.com/stitts-dev/nba-props/internal/gamelog"
	"github.com/stitts-dev/nba-props/internal/props"
)

// HitRates returns the percentage of games in each window whose category value
// was strictly over the line. The season window is the whole series.
// A nil line or empty series gives zeros.
func HitRates(logs []props.GameLog, c props.Category, line *props.ReferenceLine) props.HitRate {
	if line == nil || len(logs) == 0 || !c.Valid() {
		return props.HitRate{}
	}
	return props.HitRate{
		L5:     overPercent(gamelog.Window(logs, 5), c, line.Line),
		L10:    overPercent(gamelog.Window(logs, 10), c, line.Line),
		Season: overPercent(logs, c, line.Line),
	}
}

func overPercent(rows []props.GameLog, c props.Category, line float64) int {
	if len(rows) == 0 {
		return 0
	}
	over := 0
	for _, row := range rows {
		if row.Value(c) > line {
			over++
		}
	}
	return over * 100 / len(rows)
}
