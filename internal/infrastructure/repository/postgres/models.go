package postgres

import (
	"database/sql"
	"time"

	"github.com/fivesquad/fivesquad/internal/domain/chip"
	"github.com/fivesquad/fivesquad/internal/domain/performance"
	"github.com/fivesquad/fivesquad/internal/domain/player"
	"github.com/fivesquad/fivesquad/internal/domain/scoring"
)

type playerTableModel struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Position       string         `db:"position"`
	SeasonPoints   int            `db:"season_points"`
	BaselinePoints int            `db:"baseline_points"`
	OwnerID        sql.NullString `db:"owner_id"`
	IsCaptain      bool           `db:"is_captain"`
	IsViceCaptain  bool           `db:"is_vice_captain"`
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:             m.ID,
		Name:           m.Name,
		Position:       player.Position(m.Position),
		SeasonPoints:   m.SeasonPoints,
		BaselinePoints: m.BaselinePoints,
		OwnerID:        m.OwnerID.String,
		IsCaptain:      m.IsCaptain,
		IsViceCaptain:  m.IsViceCaptain,
	}
}

func toPlayerTableModel(p player.Player) playerTableModel {
	return playerTableModel{
		ID:             p.ID,
		Name:           p.Name,
		Position:       string(p.Position),
		SeasonPoints:   p.SeasonPoints,
		BaselinePoints: p.BaselinePoints,
		OwnerID:        sql.NullString{String: p.OwnerID, Valid: p.OwnerID != ""},
		IsCaptain:      p.IsCaptain,
		IsViceCaptain:  p.IsViceCaptain,
	}
}

type participantTableModel struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

type draftTableModel struct {
	Status      string       `db:"status"`
	CompletedAt sql.NullTime `db:"completed_at"`
}

type performanceTableModel struct {
	PlayerID    string `db:"player_id"`
	Gameweek    int    `db:"gameweek"`
	Points      int    `db:"points"`
	Goals       int    `db:"goals"`
	Assists     int    `db:"assists"`
	CleanSheets int    `db:"clean_sheets"`
	YellowCards int    `db:"yellow_cards"`
	RedCards    int    `db:"red_cards"`
	Minutes     int    `db:"minutes"`
	Bonus       int    `db:"bonus"`
}

func (m performanceTableModel) toDomain() performance.Performance {
	return performance.Performance{
		PlayerID:    m.PlayerID,
		Gameweek:    m.Gameweek,
		Points:      m.Points,
		Goals:       m.Goals,
		Assists:     m.Assists,
		CleanSheets: m.CleanSheets,
		YellowCards: m.YellowCards,
		RedCards:    m.RedCards,
		Minutes:     m.Minutes,
		Bonus:       m.Bonus,
	}
}

type scoreTableModel struct {
	ParticipantID     string    `db:"participant_id"`
	Gameweek          int       `db:"gameweek"`
	TotalPoints       float64   `db:"total_points"`
	StartingPoints    int       `db:"starting_points"`
	CaptainPoints     int       `db:"captain_points"`
	ViceCaptainPoints float64   `db:"vice_captain_points"`
	ChipPoints        float64   `db:"chip_points"`
	CalculatedAt      time.Time `db:"calculated_at"`
}

func (m scoreTableModel) toDomain() scoring.ParticipantGameweekScore {
	return scoring.ParticipantGameweekScore{
		ParticipantID:     m.ParticipantID,
		Gameweek:          m.Gameweek,
		TotalPoints:       m.TotalPoints,
		StartingPoints:    m.StartingPoints,
		CaptainPoints:     m.CaptainPoints,
		ViceCaptainPoints: m.ViceCaptainPoints,
		ChipPoints:        m.ChipPoints,
		CalculatedAt:      m.CalculatedAt,
	}
}

type chipTableModel struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	Rarity    string  `db:"rarity"`
	Effect    string  `db:"effect"`
	Magnitude float64 `db:"magnitude"`
}

func (m chipTableModel) toDomain() chip.Chip {
	return chip.Chip{
		ID:        m.ID,
		Name:      m.Name,
		Rarity:    chip.Rarity(m.Rarity),
		Effect:    chip.EffectType(m.Effect),
		Magnitude: m.Magnitude,
	}
}

type effectTableModel struct {
	ID          string    `db:"id"`
	SourceID    string    `db:"source_participant_id"`
	TargetID    string    `db:"target_participant_id"`
	ChipType    string    `db:"chip_type"`
	Magnitude   float64   `db:"magnitude"`
	Gameweek    int       `db:"gameweek"`
	ActiveUntil time.Time `db:"active_until"`
	CreatedAt   time.Time `db:"created_at"`
}

func (m effectTableModel) toDomain() chip.Effect {
	return chip.Effect{
		ID:          m.ID,
		SourceID:    m.SourceID,
		TargetID:    m.TargetID,
		ChipType:    chip.EffectType(m.ChipType),
		Magnitude:   m.Magnitude,
		Gameweek:    m.Gameweek,
		ActiveUntil: m.ActiveUntil,
		CreatedAt:   m.CreatedAt,
	}
}

type cooldownTableModel struct {
	ParticipantID string    `db:"participant_id"`
	ChipType      string    `db:"chip_type"`
	TargetID      string    `db:"target_participant_id"`
	Until         time.Time `db:"until_at"`
}

type grantTableModel struct {
	ParticipantID string    `db:"participant_id"`
	ChipID        string    `db:"chip_id"`
	GrantedAt     time.Time `db:"granted_at"`
}
