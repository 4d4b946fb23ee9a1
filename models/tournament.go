package models

import "time"

// TournamentStatus представляет статусы турнира.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusOngoing   TournamentStatus = "ongoing"
	StatusCompleted TournamentStatus = "completed"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted:
		return true
	}
	return false
}

// Tournament представляет турнир.
type Tournament struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Game                string           `json:"game"`
	Description         *string          `json:"description,omitempty"`
	PrizePool           *string          `json:"prize_pool,omitempty"`
	MaxParticipants     int              `json:"max_participants"`
	CurrentParticipants int              `json:"current_participants"`
	StartDate           time.Time        `json:"start_date"`
	EndDate             *time.Time       `json:"end_date,omitempty"`
	Status              TournamentStatus `json:"status"`
	Banner              *string          `json:"banner,omitempty"`
	EntryFee            *string          `json:"entry_fee,omitempty"`
	Region              *string          `json:"region,omitempty"`
	Format              *string          `json:"format,omitempty"`
	TeamSize            *int             `json:"team_size,omitempty"`
	Organizer           *string          `json:"organizer,omitempty"`
	Rules               *string          `json:"rules,omitempty"`
	Schedule            *string          `json:"schedule,omitempty"`
	Prizes              *string          `json:"prizes,omitempty"`
	Highlights          StringList       `json:"highlights,omitempty"`
	OverviewContent     JSONBlob         `json:"overview_content,omitempty"`
	ScheduleContent     JSONBlob         `json:"schedule_content,omitempty"`
	PrizesContent       JSONBlob         `json:"prizes_content,omitempty"`
	TimerDuration       *int             `json:"timer_duration,omitempty"`
	TimerStartTime      *time.Time       `json:"timer_start_time,omitempty"`
	TimerIsRunning      bool             `json:"timer_is_running"`
	RegistrationOpens   *time.Time       `json:"registration_opens,omitempty"`
	RegistrationCloses  *time.Time       `json:"registration_closes,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// TournamentInput - типизированный ввод админ-формы турнира.
// Nil и пустые значения при записи отбрасываются.
type TournamentInput struct {
	Name                *string           `json:"name"`
	Game                *string           `json:"game"`
	Description         *string           `json:"description"`
	PrizePool           *string           `json:"prize_pool"`
	MaxParticipants     *int              `json:"max_participants"`
	CurrentParticipants *int              `json:"current_participants"`
	StartDate           *time.Time        `json:"start_date"`
	EndDate             *time.Time        `json:"end_date"`
	Status              *TournamentStatus `json:"status"`
	Banner              *string           `json:"banner"`
	EntryFee            *string           `json:"entry_fee"`
	Region              *string           `json:"region"`
	Format              *string           `json:"format"`
	TeamSize            *int              `json:"team_size"`
	Organizer           *string           `json:"organizer"`
	Rules               *string           `json:"rules"`
	Schedule            *string           `json:"schedule"`
	Prizes              *string           `json:"prizes"`
	Highlights          StringList        `json:"highlights"`
	OverviewContent     JSONBlob          `json:"overview_content"`
	ScheduleContent     JSONBlob          `json:"schedule_content"`
	PrizesContent       JSONBlob          `json:"prizes_content"`
	RegistrationOpens   *time.Time        `json:"registration_opens"`
	RegistrationCloses  *time.Time        `json:"registration_closes"`
}
