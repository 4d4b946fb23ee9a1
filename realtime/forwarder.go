package realtime

import (
	"log/slog"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/models"
)

const (
	MsgTournamentUpdated   = "TOURNAMENT_UPDATED"
	MsgRegistrationUpdated = "REGISTRATION_UPDATED"
	MsgRoomUpdated         = "ROOM_UPDATED"
	MsgMatchUpdated        = "MATCH_UPDATED"
	MsgLiveMatchUpdated    = "LIVE_MATCH_UPDATED"
	MsgLeaderboardUpdated  = "LEADERBOARD_UPDATED"
	MsgResync              = "RESYNC"
)

// Subscriber - источник событий; реализуется *changefeed.Bus.
type Subscriber interface {
	Subscribe(table string, h changefeed.Handler) (unsubscribe func())
}

// change - полезная нагрузка сообщений об изменении строки.
type change struct {
	Change changefeed.ChangeType `json:"change"`
	ID     string                `json:"id"`
	Record interface{}           `json:"record,omitempty"`
}

// registrationSummary - публичная часть заявки, без игрового ID и суммы.
type registrationSummary struct {
	ID            string               `json:"id"`
	TournamentID  string               `json:"tournament_id"`
	UserID        string               `json:"user_id"`
	PlayerName    string               `json:"player_name"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
}

// Forward транслирует события ленты изменений в комнаты хаба.
// Данные комнаты (room_id, room_password) в рассылку не попадают:
// клиент получает ROOM_UPDATED и перезапрашивает своё представление.
func Forward(hub *Hub, feed Subscriber, logger *slog.Logger) (stop func()) {
	return feed.Subscribe(changefeed.AllTables, func(e changefeed.Event) {
		if err := route(hub, e); err != nil {
			logger.Warn("failed to forward change to websocket clients",
				slog.String("table", e.Table),
				slog.String("type", string(e.Type)),
				slog.Any("error", err))
		}
	})
}

func route(hub *Hub, e changefeed.Event) error {
	if e.Type == changefeed.Resync {
		for _, room := range hub.Rooms() {
			hub.BroadcastToRoom(room, Message{Type: MsgResync})
		}
		return nil
	}

	switch e.Table {
	case changefeed.TableTournaments:
		var t models.Tournament
		if err := e.Decode(&t); err != nil {
			return err
		}
		msg := Message{Type: MsgTournamentUpdated, Payload: change{Change: e.Type, ID: t.ID, Record: recordUnlessTruncated(e, t)}}
		hub.BroadcastToRoom(TournamentRoom(t.ID), msg)
		hub.BroadcastToRoom(LiveRoom, msg)

	case changefeed.TableRegistrations:
		var r models.TournamentRegistration
		if err := e.Decode(&r); err != nil {
			return err
		}
		if r.TournamentID == "" {
			return nil
		}
		hub.BroadcastToRoom(TournamentRoom(r.TournamentID), Message{
			Type: MsgRegistrationUpdated,
			Payload: change{Change: e.Type, ID: r.ID, Record: registrationSummary{
				ID:            r.ID,
				TournamentID:  r.TournamentID,
				UserID:        r.UserID,
				PlayerName:    r.PlayerName,
				PaymentStatus: r.PaymentStatus,
			}},
		})

	case changefeed.TableRooms:
		var room models.TournamentRoom
		if err := e.Decode(&room); err != nil {
			return err
		}
		if room.TournamentID == "" {
			return nil
		}
		hub.BroadcastToRoom(TournamentRoom(room.TournamentID), Message{
			Type:    MsgRoomUpdated,
			Payload: map[string]string{"tournament_id": room.TournamentID},
		})

	case changefeed.TableMatches:
		var m models.Match
		if err := e.Decode(&m); err != nil {
			return err
		}
		msg := Message{Type: MsgMatchUpdated, Payload: change{Change: e.Type, ID: m.ID, Record: recordUnlessTruncated(e, m)}}
		if m.TournamentID != nil {
			hub.BroadcastToRoom(TournamentRoom(*m.TournamentID), msg)
		}
		hub.BroadcastToRoom(LiveRoom, msg)

	case changefeed.TableLiveMatches:
		var l models.LiveMatch
		if err := e.Decode(&l); err != nil {
			return err
		}
		hub.BroadcastToRoom(LiveRoom, Message{Type: MsgLiveMatchUpdated, Payload: change{Change: e.Type, ID: l.ID, Record: recordUnlessTruncated(e, l)}})

	case changefeed.TablePlayers:
		var p models.Player
		if err := e.Decode(&p); err != nil {
			return err
		}
		hub.BroadcastToRoom(LiveRoom, Message{Type: MsgLeaderboardUpdated, Payload: change{Change: e.Type, ID: p.ID, Record: recordUnlessTruncated(e, p)}})
	}
	return nil
}

func recordUnlessTruncated(e changefeed.Event, v interface{}) interface{} {
	if e.Truncated || e.Type == changefeed.Delete {
		return nil
	}
	return v
}
