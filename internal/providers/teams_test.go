package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeamDirectory(t *testing.T) {
	dir := NewTeamDirectory()

	assert.Len(t, dir.All(), 30)

	team, ok := dir.ByID(1610612738)
	assert.True(t, ok)
	assert.Equal(t, "BOS", team.Abbreviation)

	team, ok = dir.ByAbbreviation("nyk")
	assert.True(t, ok)
	assert.Equal(t, "New York Knicks", team.FullName)

	team, ok = dir.ByName("LA Clippers")
	assert.True(t, ok)
	assert.Equal(t, "LAC", team.Abbreviation)

	team, ok = dir.ByName("los angeles clippers")
	assert.True(t, ok)
	assert.Equal(t, "LAC", team.Abbreviation)

	_, ok = dir.ByID(1)
	assert.False(t, ok)
	_, ok = dir.ByName("Seattle SuperSonics")
	assert.False(t, ok)
}

func TestTeamDirectoryIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, team := range NewTeamDirectory().All() {
		assert.False(t, seen[team.Abbreviation], team.Abbreviation)
		seen[team.Abbreviation] = true
	}
}

func TestNormalizePosition(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"PG", "PG"},
		{"C", "C"},
		{"G", "PG"},
		{"F", "SF"},
		{"G-F", "SG"},
		{"F-G", "SF"},
		{"F-C", "PF"},
		{"C-F", "C"},
		{"Guard", "PG"},
		{"Forward", "SF"},
		{"Center", "C"},
		{"Guard-Forward", "SG"},
		{"Forward-Center", "PF"},
		{"Center-Forward", "C"},
		{"", "N/A"},
		{"N/A", "N/A"},
		{"Coach", "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePosition(tt.input))
		})
	}
}
