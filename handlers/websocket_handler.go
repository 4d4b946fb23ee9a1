package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync/atomic"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/middleware"
	"github.com/Dosada05/esports-arena/realtime"
	"github.com/Dosada05/esports-arena/workflow"
	"github.com/gorilla/websocket"
)

const (
	MsgRegistrationState  = "REGISTRATION_STATE"
	MsgRegistrationNotice = "REGISTRATION_NOTICE"

	followBuffer = 64
)

type WebSocketHandler struct {
	hub           *realtime.Hub
	feed          realtime.Subscriber
	registrations *RegistrationHandler
	upgrader      *websocket.Upgrader
	logger        *slog.Logger
}

// NewWebSocketHandler: если feed и registrations заданы, вошедший пользователь
// дополнительно получает своё состояние регистрации по сокету турнира.
func NewWebSocketHandler(hub *realtime.Hub, feed realtime.Subscriber, registrations *RegistrationHandler, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	return &WebSocketHandler{
		hub:           hub,
		feed:          feed,
		registrations: registrations,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// clientNotifier пересылает уведомления сценария в сокет клиента.
type clientNotifier struct {
	client *realtime.Client
}

func (n *clientNotifier) Notify(notice workflow.Notice) {
	if n.client != nil {
		n.client.Send(realtime.Message{Type: MsgRegistrationNotice, Payload: notice})
	}
}

// ServeTournament godoc
// @Summary Подписка на изменения турнира
// @Description Регистрации, данные комнаты (без секретов), статус и таймер турнира. С токеном (?access_token=) также приходит состояние собственной регистрации.
// @Tags realtime
// @Param tournamentID path string true "Tournament ID"
// @Router /ws/tournaments/{tournamentID} [get]
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var (
		flow     *workflow.Registration
		notifier = &clientNotifier{}
	)
	if middleware.UserIDOrAnonymous(r.Context()) != "" && h.registrations != nil && h.feed != nil {
		flow, err = h.registrations.newWorkflow(r, id, notifier)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}

	client := h.serve(w, r, realtime.TournamentRoom(id))
	if client == nil || flow == nil {
		return
	}
	notifier.client = client
	go h.followRegistration(client, flow)
}

// ServeLive godoc
// @Summary Подписка на общие обновления
// @Description Турниры, матчи, трансляции и таблица лидеров.
// @Tags realtime
// @Router /ws/live [get]
func (h *WebSocketHandler) ServeLive(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, realtime.LiveRoom)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) *realtime.Client {
	// Upgrade сам пишет ответ об ошибке.
	client, err := h.hub.Serve(h.upgrader, w, r, room)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("room", room),
			slog.String("remote_addr", r.RemoteAddr),
			slog.Any("error", err))
		return nil
	}
	return client
}

// followRegistration держит сценарий регистрации клиента в актуальном состоянии
// до закрытия соединения. Сценарий только читает, поэтому ApplyChange не вызывается
// из публикации этого же экземпляра.
func (h *WebSocketHandler) followRegistration(client *realtime.Client, flow *workflow.Registration) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan changefeed.Event, followBuffer)
	var stale atomic.Bool
	unsubscribe := h.feed.Subscribe(changefeed.AllTables, func(e changefeed.Event) {
		if !followsTable(e) {
			return
		}
		select {
		case events <- e:
		default:
			stale.Store(true)
		}
	})
	defer unsubscribe()

	if err := flow.Load(ctx); err != nil {
		h.logger.Warn("failed to load registration state for websocket client", slog.Any("error", err))
	} else {
		sendRegistrationState(client, flow)
	}

	for {
		select {
		case <-client.Done():
			return
		case e := <-events:
			var err error
			if stale.Swap(false) {
				err = flow.Reload(ctx)
			} else {
				err = flow.ApplyChange(ctx, e)
			}
			if err != nil {
				h.logger.Warn("failed to apply change to registration state",
					slog.String("table", e.Table),
					slog.Any("error", err))
				continue
			}
			sendRegistrationState(client, flow)
		}
	}
}

func followsTable(e changefeed.Event) bool {
	switch e.Table {
	case changefeed.TableRegistrations, changefeed.TableRooms, changefeed.TableTournaments:
		return true
	}
	return e.Type == changefeed.Resync
}

func sendRegistrationState(client *realtime.Client, flow *workflow.Registration) {
	client.Send(realtime.Message{Type: MsgRegistrationState, Payload: flow.View()})
}
