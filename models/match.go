package models

import "time"

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchLive, MatchCompleted:
		return true
	}
	return false
}

type Match struct {
	ID           string      `json:"id"`
	TournamentID *string     `json:"tournament_id,omitempty"`
	Team1        string      `json:"team1"`
	Team2        string      `json:"team2"`
	Score1       int         `json:"score1"`
	Score2       int         `json:"score2"`
	Status       MatchStatus `json:"status"`
	ScheduledAt  *time.Time  `json:"scheduled_at,omitempty"`
	StreamURL    *string     `json:"stream_url,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type MatchInput struct {
	TournamentID *string      `json:"tournament_id"`
	Team1        *string      `json:"team1"`
	Team2        *string      `json:"team2"`
	Score1       *int         `json:"score1"`
	Score2       *int         `json:"score2"`
	Status       *MatchStatus `json:"status"`
	ScheduledAt  *time.Time   `json:"scheduled_at"`
	StreamURL    *string      `json:"stream_url"`
}
