package changefeed

import (
	"encoding/json"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestBusDeliversByTableAndWildcard(t *testing.T) {
	bus := NewBus(nil)

	var tournaments, all []Event
	unsubT := bus.Subscribe(TableTournaments, func(e Event) { tournaments = append(tournaments, e) })
	unsubAll := bus.Subscribe(AllTables, func(e Event) { all = append(all, e) })

	bus.Publish(Event{Table: TableTournaments, Type: Insert})
	bus.Publish(Event{Table: TablePlayers, Type: Update})

	assert.Len(t, tournaments, 1)
	assert.Len(t, all, 2)

	unsubT()
	unsubT()
	bus.Publish(Event{Table: TableTournaments, Type: Delete})
	assert.Len(t, tournaments, 1)
	assert.Len(t, all, 3)
	assert.Equal(t, 0, bus.SubscriberCount(TableTournaments))

	unsubAll()
	assert.Equal(t, 0, bus.SubscriberCount(AllTables))
}

func TestBusSurvivesPanickingHandler(t *testing.T) {
	bus := NewBus(nil)
	called := false
	bus.Subscribe(TableMatches, func(Event) { panic("boom") })
	bus.Subscribe(TableMatches, func(Event) { called = true })

	assert.NotPanics(t, func() { bus.Publish(Event{Table: TableMatches, Type: Insert}) })
	assert.True(t, called)
}

func TestEventDecode(t *testing.T) {
	e, err := NewEvent(TableTournaments, Update, row{ID: "t1", Name: "new"}, row{ID: "t1", Name: "old"})
	require.NoError(t, err)

	var got row
	require.NoError(t, e.Decode(&got))
	assert.Equal(t, "new", got.Name)
	assert.Equal(t, "t1", e.RecordID())

	del, err := NewEvent(TableTournaments, Delete, nil, row{ID: "t2"})
	require.NoError(t, err)
	assert.Equal(t, "t2", del.RecordID())

	assert.ErrorIs(t, Event{Table: TablePlayers, Type: Insert}.Decode(&got), ErrNoRecord)
}

func TestPGPayloadParsing(t *testing.T) {
	bus := NewBus(nil)
	var got []Event
	bus.Subscribe(TableRegistrations, func(e Event) { got = append(got, e) })

	l := &PGListener{bus: bus, logger: bus.logger}
	l.handle(`{"table":"tournament_registrations","type":"UPDATE","record":{"id":"r1","payment_status":"completed"},"old_record":{"id":"r1","payment_status":"pending"}}`)
	l.handle(`not json`)

	require.Len(t, got, 1)
	assert.Equal(t, Update, got[0].Type)
	assert.Equal(t, "r1", got[0].RecordID())
}

func TestNATSBridgeIgnoresOwnEvents(t *testing.T) {
	bus := NewBus(nil)
	var got []Event
	bus.Subscribe(TablePlayers, func(e Event) { got = append(got, e) })

	bridge := NewNATSBridge(nil, bus, "", bus.logger)

	own, _ := json.Marshal(Event{Table: TablePlayers, Type: Insert, Origin: bridge.origin})
	bridge.onMessage(&nats.Msg{Data: own})
	assert.Empty(t, got)

	foreign, _ := json.Marshal(Event{Table: TablePlayers, Type: Insert, Origin: "other-instance"})
	bridge.onMessage(&nats.Msg{Data: foreign})
	require.Len(t, got, 1)
	assert.Equal(t, "other-instance", got[0].Origin)
}
