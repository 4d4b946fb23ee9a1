// Package changefeed delivers row-level change notifications (insert/update/delete)
// from the database to in-process subscribers and across instances.
package changefeed

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ChangeType string

const (
	Insert ChangeType = "INSERT"
	Update ChangeType = "UPDATE"
	Delete ChangeType = "DELETE"
	// Resync means events may have been lost; subscribers should reload.
	Resync ChangeType = "RESYNC"
)

// Table names as they appear in events.
const (
	TableTournaments   = "tournaments"
	TablePlayers       = "players"
	TableMatches       = "matches"
	TableSponsors      = "sponsors"
	TableLiveMatches   = "live_match_admin"
	TableRegistrations = "tournament_registrations"
	TableRooms         = "tournament_rooms"
	TableWallet        = "wallet_transactions"
	AllTables          = "*"
)

type Event struct {
	Table     string          `json:"table"`
	Type      ChangeType      `json:"type"`
	Record    json.RawMessage `json:"record,omitempty"`
	OldRecord json.RawMessage `json:"old_record,omitempty"`
	// Truncated events carry only {"id": ...}; the row has to be fetched.
	Truncated bool   `json:"truncated,omitempty"`
	Origin    string `json:"origin,omitempty"`
}

var ErrNoRecord = errors.New("event has no record")

// NewEvent builds an event from Go values. record or old may be nil.
func NewEvent(table string, typ ChangeType, record, old interface{}) (Event, error) {
	e := Event{Table: table, Type: typ}
	if record != nil {
		b, err := json.Marshal(record)
		if err != nil {
			return Event{}, fmt.Errorf("marshal record: %w", err)
		}
		e.Record = b
	}
	if old != nil {
		b, err := json.Marshal(old)
		if err != nil {
			return Event{}, fmt.Errorf("marshal old record: %w", err)
		}
		e.OldRecord = b
	}
	return e, nil
}

// Decode unmarshals the new record (or the old one for deletes) into v.
func (e Event) Decode(v interface{}) error {
	raw := e.Record
	if e.Type == Delete || isNull(raw) {
		raw = e.OldRecord
	}
	if isNull(raw) {
		return ErrNoRecord
	}
	return json.Unmarshal(raw, v)
}

// RecordID returns the id of the affected row.
func (e Event) RecordID() string {
	var row struct {
		ID string `json:"id"`
	}
	if err := e.Decode(&row); err != nil {
		return ""
	}
	return row.ID
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
