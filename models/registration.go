package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// TournamentRegistration - заявка пользователя на слот в турнире.
type TournamentRegistration struct {
	ID               string              `json:"id"`
	UserID           string              `json:"user_id"`
	TournamentID     string              `json:"tournament_id"`
	PlayerName       string              `json:"player_name"`
	PlayerGameID     string              `json:"player_game_id"`
	RegistrationDate time.Time           `json:"registration_date"`
	PaymentStatus    PaymentStatus       `json:"payment_status"`
	PaymentAmount    decimal.NullDecimal `json:"payment_amount"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func (r *TournamentRegistration) Confirmed() bool {
	return r != nil && r.PaymentStatus == PaymentCompleted
}

// TournamentRoom holds the lobby credentials revealed to confirmed registrants.
type TournamentRoom struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	RoomID       *string   `json:"room_id"`
	RoomPassword *string   `json:"room_password"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasCredentials reports whether at least one of room_id/room_password is set.
func (r *TournamentRoom) HasCredentials() bool {
	if r == nil {
		return false
	}
	return (r.RoomID != nil && *r.RoomID != "") || (r.RoomPassword != nil && *r.RoomPassword != "")
}

type RoomInput struct {
	RoomID       *string `json:"room_id"`
	RoomPassword *string `json:"room_password"`
}
