package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/models"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	RoomID  string          `json:"room_id"`
}

func startHub(t *testing.T) (*Hub, *changefeed.Bus, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(testLogger)
	go hub.Run(ctx)

	bus := changefeed.NewBus(testLogger)
	stop := Forward(hub, bus, testLogger)

	upgrader := &websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		room := strings.TrimPrefix(r.URL.Path, "/ws/")
		if _, err := hub.Serve(upgrader, w, r, room); err != nil {
			t.Logf("serve: %v", err)
		}
	}))
	t.Cleanup(func() {
		stop()
		srv.Close()
		cancel()
	})
	return hub, bus, srv
}

func dial(t *testing.T, hub *Hub, srv *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount(room) == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (wireMessage, string) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg wireMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg, string(data)
}

func publish(t *testing.T, bus *changefeed.Bus, table string, typ changefeed.ChangeType, record interface{}) {
	t.Helper()
	e, err := changefeed.NewEvent(table, typ, record, nil)
	require.NoError(t, err)
	bus.Publish(e)
}

func TestForward_RegistrationToTournamentRoom(t *testing.T) {
	hub, bus, srv := startHub(t)
	room := TournamentRoom("t1")
	conn := dial(t, hub, srv, room)

	publish(t, bus, changefeed.TableRegistrations, changefeed.Update, models.TournamentRegistration{
		ID:            "r1",
		UserID:        "u1",
		TournamentID:  "t1",
		PlayerName:    "Alice",
		PlayerGameID:  "secret-handle",
		PaymentStatus: models.PaymentCompleted,
		PaymentAmount: decimal.NewNullDecimal(decimal.NewFromInt(50)),
	})

	msg, raw := readMessage(t, conn)
	assert.Equal(t, MsgRegistrationUpdated, msg.Type)
	assert.Equal(t, room, msg.RoomID)
	assert.Contains(t, raw, `"payment_status":"completed"`)
	assert.NotContains(t, raw, "secret-handle")
	assert.NotContains(t, raw, "payment_amount")
}

func TestForward_RoomCredentialsAreNotBroadcast(t *testing.T) {
	hub, bus, srv := startHub(t)
	conn := dial(t, hub, srv, TournamentRoom("t1"))

	id, pw := "ROOM-42", "hunter2"
	publish(t, bus, changefeed.TableRooms, changefeed.Update, models.TournamentRoom{
		ID: "room1", TournamentID: "t1", RoomID: &id, RoomPassword: &pw,
	})

	msg, raw := readMessage(t, conn)
	assert.Equal(t, MsgRoomUpdated, msg.Type)
	assert.NotContains(t, raw, "hunter2")
	assert.NotContains(t, raw, "ROOM-42")
}

func TestForward_LeaderboardToLiveRoom(t *testing.T) {
	hub, bus, srv := startHub(t)
	conn := dial(t, hub, srv, LiveRoom)

	publish(t, bus, changefeed.TablePlayers, changefeed.Insert, models.Player{ID: "p1", Name: "Bob", Points: 12})

	msg, _ := readMessage(t, conn)
	assert.Equal(t, MsgLeaderboardUpdated, msg.Type)
	var payload change
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "p1", payload.ID)
	assert.Equal(t, changefeed.Insert, payload.Change)
}

func TestHub_ClosedConnectionLeavesRoom(t *testing.T) {
	hub, _, srv := startHub(t)
	room := TournamentRoom("t9")
	conn := dial(t, hub, srv, room)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount(room) == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, hub.Rooms(), room)
}
