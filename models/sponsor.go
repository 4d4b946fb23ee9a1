package models

import "time"

type Sponsor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Logo         *string   `json:"logo,omitempty"`
	Website      *string   `json:"website,omitempty"`
	Description  *string   `json:"description,omitempty"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SponsorInput struct {
	Name         *string `json:"name"`
	Logo         *string `json:"logo"`
	Website      *string `json:"website"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}
