package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/stitts-dev/nba-props/internal/props"
)

// ProjectionPass is one persisted processing pass
type ProjectionPass struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	PassDate       string     `gorm:"not null;index" json:"pass_date"`
	Status         string     `gorm:"not null;index" json:"status"` // "completed" or "failed"
	Error          string     `json:"error,omitempty"`
	Events         int        `json:"events"`
	PlayersSkipped int        `json:"players_skipped"`
	ResultCount    int        `json:"result_count"`
	Categories     StringList `json:"categories"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     time.Time  `json:"finished_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Results []ProjectionResult `gorm:"foreignKey:PassID;constraint:OnDelete:CASCADE" json:"results,omitempty"`
}

// TableName specifies the table name for GORM
func (ProjectionPass) TableName() string {
	return "projection_passes"
}

// BeforeCreate assigns an ID when the pass arrives without one
func (p *ProjectionPass) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// ProjectionResult is one persisted player/category projection
type ProjectionResult struct {
	ID              uint           `gorm:"primaryKey" json:"-"`
	PassID          string         `gorm:"type:uuid;not null;index" json:"pass_id"`
	ResultKey       string         `gorm:"not null" json:"id"` // playerId-stat
	GameID          string         `gorm:"not null" json:"game_id"`
	GameDate        string         `gorm:"not null;index" json:"game_date"`
	GameDescription string         `json:"game_description"`
	PlayerID        string         `gorm:"not null;index" json:"player_id"`
	PlayerName      string         `gorm:"not null" json:"player_name"`
	Team            string         `json:"team"`
	Opponent        string         `json:"opponent"`
	Stat            string         `gorm:"not null" json:"stat"`
	Projection      float64        `json:"projection"`
	Line            *float64       `json:"line"`
	LineLabel       string         `json:"line_label,omitempty"`
	HitRate         datatypes.JSON `json:"hit_rate"`
	CreatedAt       time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ProjectionResult) TableName() string {
	return "projection_results"
}

// StringList is a text array in Postgres and an encoded string elsewhere
type StringList []string

// GormDataType is the generic schema type
func (StringList) GormDataType() string {
	return "text"
}

// GormDBDataType picks the column type per dialect
func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Scan implements the sql.Scanner interface
func (s *StringList) Scan(value interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(value); err != nil {
		return err
	}
	*s = StringList(arr)
	return nil
}

// Value implements the driver.Valuer interface
func (s StringList) Value() (driver.Value, error) {
	return pq.StringArray(s).Value()
}

// NewProjectionPass converts a pass outcome into its persisted form.
// Results are attached only for completed passes.
func NewProjectionPass(pass *props.PassResult) (*ProjectionPass, error) {
	row := &ProjectionPass{
		ID:             pass.PassID,
		PassDate:       pass.Date,
		Status:         pass.Status,
		Error:          pass.Error,
		Events:         pass.Events,
		PlayersSkipped: pass.PlayersSkipped,
		StartedAt:      pass.StartedAt,
		FinishedAt:     pass.FinishedAt,
	}

	if pass.Status != props.PassStatusCompleted {
		return row, nil
	}

	seen := make(map[string]bool)
	for _, result := range pass.Results {
		converted, err := newProjectionResult(result)
		if err != nil {
			return nil, err
		}
		row.Results = append(row.Results, *converted)

		stat := string(result.Category)
		if !seen[stat] {
			seen[stat] = true
			row.Categories = append(row.Categories, stat)
		}
	}
	row.ResultCount = len(row.Results)

	return row, nil
}

func newProjectionResult(result props.ProjectionResult) (*ProjectionResult, error) {
	hitRate, err := json.Marshal(result.HitRate)
	if err != nil {
		return nil, err
	}

	return &ProjectionResult{
		ResultKey:       result.ID,
		GameID:          result.GameID,
		GameDate:        result.GameDate,
		GameDescription: result.GameDescription,
		PlayerID:        result.PlayerID,
		PlayerName:      result.PlayerName,
		Team:            result.Team,
		Opponent:        result.Opponent,
		Stat:            string(result.Category),
		Projection:      result.Projection,
		Line:            result.Line,
		LineLabel:       result.LineLabel,
		HitRate:         datatypes.JSON(hitRate),
	}, nil
}

// ToProps converts a stored row back into a projection result
func (r ProjectionResult) ToProps() (props.ProjectionResult, error) {
	var hitRate props.HitRate
	if len(r.HitRate) > 0 {
		if err := json.Unmarshal(r.HitRate, &hitRate); err != nil {
			return props.ProjectionResult{}, err
		}
	}

	return props.ProjectionResult{
		ID:              r.ResultKey,
		GameID:          r.GameID,
		GameDate:        r.GameDate,
		GameDescription: r.GameDescription,
		PlayerID:        r.PlayerID,
		PlayerName:      r.PlayerName,
		Team:            r.Team,
		Opponent:        r.Opponent,
		Category:        props.Category(r.Stat),
		Projection:      r.Projection,
		Line:            r.Line,
		LineLabel:       r.LineLabel,
		HitRate:         hitRate,
	}, nil
}

// ToProps converts a stored pass and any loaded results back into a pass outcome
func (p ProjectionPass) ToProps() (*props.PassResult, error) {
	pass := &props.PassResult{
		PassID:         p.ID,
		Date:           p.PassDate,
		Status:         p.Status,
		Error:          p.Error,
		StartedAt:      p.StartedAt,
		FinishedAt:     p.FinishedAt,
		Events:         p.Events,
		PlayersSkipped: p.PlayersSkipped,
		Results:        make([]props.ProjectionResult, 0, len(p.Results)),
	}

	for _, row := range p.Results {
		result, err := row.ToProps()
		if err != nil {
			return nil, err
		}
		pass.Results = append(pass.Results, result)
	}

	return pass, nil
}
