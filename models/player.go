package models

import "time"

// Player - строка лидерборда. UserID связывает игрока с аккаунтом и служит профилем.
type Player struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Game      string    `json:"game"`
	Team      *string   `json:"team,omitempty"`
	Rank      int       `json:"rank"`
	Points    int       `json:"points"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	Kills     int       `json:"kills"`
	Avatar    *string   `json:"avatar,omitempty"`
	Country   *string   `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PlayerInput struct {
	UserID  *string `json:"user_id"`
	Name    *string `json:"name"`
	Game    *string `json:"game"`
	Team    *string `json:"team"`
	Rank    *int    `json:"rank"`
	Points  *int    `json:"points"`
	Wins    *int    `json:"wins"`
	Losses  *int    `json:"losses"`
	Kills   *int    `json:"kills"`
	Avatar  *string `json:"avatar"`
	Country *string `json:"country"`
}

// Profile is the subset of a player row the registration flow needs.
type Profile struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	PlayerID string `json:"player_id"`
}
