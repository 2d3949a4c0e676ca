package providers

import "strings"

// Team is a static NBA franchise record
type Team struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	FullName     string `json:"full_name"`
	// Aliases are other full names used by third-party sites
	Aliases []string `json:"aliases,omitempty"`
}

// TeamDirectory resolves teams by stats.nba.com ID, code or full name.
// Build it once at startup with NewTeamDirectory and share it; it is
// read-only after construction and safe for concurrent use.
type TeamDirectory struct {
	byID     map[int]Team
	byAbbrev map[string]Team
	byName   map[string]Team
}

var nbaTeams = []Team{
	{ID: 1610612737, Abbreviation: "ATL", FullName: "Atlanta Hawks"},
	{ID: 1610612738, Abbreviation: "BOS", FullName: "Boston Celtics"},
	{ID: 1610612739, Abbreviation: "CLE", FullName: "Cleveland Cavaliers"},
	{ID: 1610612740, Abbreviation: "NOP", FullName: "New Orleans Pelicans"},
	{ID: 1610612741, Abbreviation: "CHI", FullName: "Chicago Bulls"},
	{ID: 1610612742, Abbreviation: "DAL", FullName: "Dallas Mavericks"},
	{ID: 1610612743, Abbreviation: "DEN", FullName: "Denver Nuggets"},
	{ID: 1610612744, Abbreviation: "GSW", FullName: "Golden State Warriors"},
	{ID: 1610612745, Abbreviation: "HOU", FullName: "Houston Rockets"},
	{ID: 1610612746, Abbreviation: "LAC", FullName: "Los Angeles Clippers", Aliases: []string{"LA Clippers"}},
	{ID: 1610612747, Abbreviation: "LAL", FullName: "Los Angeles Lakers"},
	{ID: 1610612748, Abbreviation: "MIA", FullName: "Miami Heat"},
	{ID: 1610612749, Abbreviation: "MIL", FullName: "Milwaukee Bucks"},
	{ID: 1610612750, Abbreviation: "MIN", FullName: "Minnesota Timberwolves"},
	{ID: 1610612751, Abbreviation: "BKN", FullName: "Brooklyn Nets"},
	{ID: 1610612752, Abbreviation: "NYK", FullName: "New York Knicks"},
	{ID: 1610612753, Abbreviation: "ORL", FullName: "Orlando Magic"},
	{ID: 1610612754, Abbreviation: "IND", FullName: "Indiana Pacers"},
	{ID: 1610612755, Abbreviation: "PHI", FullName: "Philadelphia 76ers"},
	{ID: 1610612756, Abbreviation: "PHX", FullName: "Phoenix Suns"},
	{ID: 1610612757, Abbreviation: "POR", FullName: "Portland Trail Blazers"},
	{ID: 1610612758, Abbreviation: "SAC", FullName: "Sacramento Kings"},
	{ID: 1610612759, Abbreviation: "SAS", FullName: "San Antonio Spurs"},
	{ID: 1610612760, Abbreviation: "OKC", FullName: "Oklahoma City Thunder"},
	{ID: 1610612761, Abbreviation: "TOR", FullName: "Toronto Raptors"},
	{ID: 1610612762, Abbreviation: "UTA", FullName: "Utah Jazz"},
	{ID: 1610612763, Abbreviation: "MEM", FullName: "Memphis Grizzlies"},
	{ID: 1610612764, Abbreviation: "WAS", FullName: "Washington Wizards"},
	{ID: 1610612765, Abbreviation: "DET", FullName: "Detroit Pistons"},
	{ID: 1610612766, Abbreviation: "CHA", FullName: "Charlotte Hornets"},
}

// NewTeamDirectory builds the directory of all 30 franchises
func NewTeamDirectory() *TeamDirectory {
	d := &TeamDirectory{
		byID:     make(map[int]Team, len(nbaTeams)),
		byAbbrev: make(map[string]Team, len(nbaTeams)),
		byName:   make(map[string]Team, len(nbaTeams)+1),
	}
	for _, team := range nbaTeams {
		d.byID[team.ID] = team
		d.byAbbrev[team.Abbreviation] = team
		d.byName[strings.ToLower(team.FullName)] = team
		for _, alias := range team.Aliases {
			d.byName[strings.ToLower(alias)] = team
		}
	}
	return d
}

// ByID looks up a team by its stats.nba.com ID
func (d *TeamDirectory) ByID(id int) (Team, bool) {
	team, ok := d.byID[id]
	return team, ok
}

// ByAbbreviation looks up a team by its three-letter code
func (d *TeamDirectory) ByAbbreviation(abbrev string) (Team, bool) {
	team, ok := d.byAbbrev[strings.ToUpper(strings.TrimSpace(abbrev))]
	return team, ok
}

// ByName looks up a team by full name or alias, ignoring case
func (d *TeamDirectory) ByName(name string) (Team, bool) {
	team, ok := d.byName[strings.ToLower(strings.TrimSpace(name))]
	return team, ok
}

// All returns every team
func (d *TeamDirectory) All() []Team {
	teams := make([]Team, len(nbaTeams))
	copy(teams, nbaTeams)
	return teams
}
