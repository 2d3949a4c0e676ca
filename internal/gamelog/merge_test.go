package gamelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/nba-props/internal/props"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMergeSeasonsOrdersMostRecentFirst(t *testing.T) {
	current := []props.GameLog{
		{GameDate: day(2025, time.January, 5), Matchup: "BOS vs. NYK", Points: 30},
		{GameDate: day(2025, time.January, 12), Matchup: "BOS @ MIA", Points: 22},
	}
	prior := []props.GameLog{
		{GameDate: day(2024, time.March, 1), Matchup: "BOS vs. PHI", Points: 18},
		{GameDate: day(2024, time.April, 10), Matchup: "BOS @ NYK", Points: 25},
	}

	merged, ok := MergeSeasons(current, prior)

	require.True(t, ok)
	require.Len(t, merged, len(current)+len(prior))
	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].GameDate.After(merged[i-1].GameDate), "row %d out of order", i)
	}
	assert.Equal(t, day(2025, time.January, 12), merged[0].GameDate)
	assert.Equal(t, day(2024, time.March, 1), merged[3].GameDate)

	assert.Equal(t, day(2025, time.January, 5), current[0].GameDate, "inputs are untouched")
}

func TestMergeSeasonsSkipsEmptySets(t *testing.T) {
	prior := []props.GameLog{{GameDate: day(2024, time.April, 10), Matchup: "BOS @ NYK"}}

	merged, ok := MergeSeasons(nil, prior)

	require.True(t, ok)
	assert.Equal(t, prior, merged)
}

func TestMergeSeasonsNoData(t *testing.T) {
	merged, ok := MergeSeasons(nil, []props.GameLog{})

	assert.False(t, ok)
	assert.Empty(t, merged)

	_, ok = MergeSeasons()
	assert.False(t, ok)
}

func TestMergeSeasonsKeepsOrderOfSameDayRows(t *testing.T) {
	a := []props.GameLog{{GameDate: day(2025, time.February, 1), Matchup: "first"}}
	b := []props.GameLog{{GameDate: day(2025, time.February, 1), Matchup: "second"}}

	merged, ok := MergeSeasons(a, b)

	require.True(t, ok)
	assert.Equal(t, "first", merged[0].Matchup)
	assert.Equal(t, "second", merged[1].Matchup)
}

func TestFilterHeadToHead(t *testing.T) {
	logs := []props.GameLog{
		{Matchup: "BOS vs. NYK", Points: 30},
		{Matchup: "BOS @ MIA", Points: 22},
		{Matchup: "BOS @ NYK", Points: 25},
	}

	h2h := FilterHeadToHead(logs, "NYK")

	require.Len(t, h2h, 2)
	for _, row := range h2h {
		assert.Contains(t, row.Matchup, "NYK")
	}
	assert.Equal(t, 30.0, h2h[0].Points)
	assert.Equal(t, 25.0, h2h[1].Points)
}

func TestFilterHeadToHeadNoMatches(t *testing.T) {
	logs := []props.GameLog{{Matchup: "BOS vs. NYK"}}

	assert.Empty(t, FilterHeadToHead(logs, "LAL"))
	assert.NotNil(t, FilterHeadToHead(nil, "LAL"))
	assert.Empty(t, FilterHeadToHead(logs, ""))
}

func TestFilterHeadToHeadIsCaseSensitiveSubstring(t *testing.T) {
	logs := []props.GameLog{
		{Matchup: "LAL vs. NOP"},
		{Matchup: "LAL vs. nop"},
	}

	h2h := FilterHeadToHead(logs, "NO")

	require.Len(t, h2h, 1, "substring match on the code")
	assert.Equal(t, "LAL vs. NOP", h2h[0].Matchup)
}

func TestWindow(t *testing.T) {
	logs := make([]props.GameLog, 7)

	assert.Len(t, Window(logs, 5), 5)
	assert.Len(t, Window(logs, 10), 7)
	assert.Len(t, Window(nil, 5), 0)
	assert.Len(t, Window(logs, -1), 0)
}
