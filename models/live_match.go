package models

import "time"

// LiveMatch соответствует таблице live_match_admin.
type LiveMatch struct {
	ID             string    `json:"id"`
	TournamentID   *string   `json:"tournament_id,omitempty"`
	BannerURL      *string   `json:"banner_url,omitempty"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	YoutubeLiveURL *string   `json:"youtube_live_url,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type LiveMatchInput struct {
	TournamentID   *string `json:"tournament_id"`
	BannerURL      *string `json:"banner_url"`
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	YoutubeLiveURL *string `json:"youtube_live_url"`
	IsActive       *bool   `json:"is_active"`
}
