package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/middleware"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/realtime"
	"github.com/Dosada05/esports-arena/services"
	"github.com/Dosada05/esports-arena/workflow"
)

type wsFixture struct {
	server *httptest.Server
	bus    *changefeed.Bus
	regs   *fakeRegistrations
	paidID string
	roomID string
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())

	f := &wsFixture{paidID: uuid.NewString(), roomID: "ROOM-7"}
	pass := "pw"
	tournaments := &fakeTournaments{byID: map[string]models.Tournament{
		f.paidID: {ID: f.paidID, Name: "Paid Cup", MaxParticipants: 10, EntryFee: strPtr("₹50")},
	}}
	f.regs = &fakeRegistrations{rooms: map[string]models.TournamentRoom{
		f.paidID: {ID: uuid.NewString(), TournamentID: f.paidID, RoomID: &f.roomID, RoomPassword: &pass},
	}}

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)
	f.bus = changefeed.NewBus(logger)

	registrations := NewRegistrationHandler(tournaments, f.regs, fakeProfiles{}, logger)
	h := NewWebSocketHandler(hub, f.bus, registrations, nil, logger)

	r := chi.NewRouter()
	r.With(middleware.OptionalAuthenticateWebSocket(testSecret)).Get("/ws/tournaments/{tournamentID}", h.ServeTournament)
	f.server = httptest.NewServer(r)
	t.Cleanup(func() {
		f.server.Close()
		cancel()
	})
	return f
}

func (f *wsFixture) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/tournaments/" + f.paidID
	if userID != "" {
		token, err := middleware.IssueToken(testSecret, userID, models.RoleUser, time.Hour)
		require.NoError(t, err)
		url += "?access_token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// readState читает сообщения до состояния регистрации, пропуская уведомления.
func readState(t *testing.T, conn *websocket.Conn) workflow.View {
	t.Helper()
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg wsMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type != MsgRegistrationState {
			continue
		}
		var v workflow.View
		require.NoError(t, json.Unmarshal(msg.Payload, &v))
		return v
	}
}

func TestWebSocket_RegistrationStateFollowsPayment(t *testing.T) {
	f := newWSFixture(t)
	reg, err := f.regs.RegisterForTournament(context.Background(), userWithProfile, services.RegisterInput{
		TournamentID:    f.paidID,
		PlayerName:      "Neo",
		PlayerGameID:    "Striker7",
		PaymentRequired: true,
	})
	require.NoError(t, err)

	conn := f.dial(t, userWithProfile)
	v := readState(t, conn)
	assert.Equal(t, workflow.PendingPayment, v.State)
	assert.False(t, v.RoomVisible)

	updated, err := f.regs.UpdatePaymentStatus(context.Background(), reg.ID, models.PaymentCompleted)
	require.NoError(t, err)
	e, err := changefeed.NewEvent(changefeed.TableRegistrations, changefeed.Update, updated, reg)
	require.NoError(t, err)
	f.bus.Publish(e)

	v = readState(t, conn)
	assert.Equal(t, workflow.Confirmed, v.State)
	assert.True(t, v.RoomVisible)
	assert.Equal(t, f.roomID, v.RoomID)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()
	assert.Eventually(t, func() bool { return f.bus.SubscriberCount(changefeed.AllTables) == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestWebSocket_AnonymousGetsNoRegistrationState(t *testing.T) {
	f := newWSFixture(t)
	f.dial(t, "")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.bus.SubscriberCount(changefeed.AllTables))
}
