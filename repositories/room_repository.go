package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/esports-arena/models"
	"github.com/google/uuid"
)

var ErrRoomNotFound = errors.New("tournament room not found")

type RoomRepository interface {
	GetByTournament(ctx context.Context, tournamentID string) (*models.TournamentRoom, error)
	Upsert(ctx context.Context, tournamentID string, input models.RoomInput) (*models.TournamentRoom, error)
}

const roomColumns = `id, tournament_id, room_id, room_password, created_at, updated_at`

type postgresRoomRepository struct {
	db *sql.DB
}

func NewPostgresRoomRepository(db *sql.DB) RoomRepository {
	return &postgresRoomRepository{db: db}
}

func scanRoom(s rowScanner) (*models.TournamentRoom, error) {
	room := &models.TournamentRoom{}
	if err := s.Scan(&room.ID, &room.TournamentID, &room.RoomID, &room.RoomPassword, &room.CreatedAt, &room.UpdatedAt); err != nil {
		return nil, err
	}
	return room, nil
}

func (r *postgresRoomRepository) GetByTournament(ctx context.Context, tournamentID string) (*models.TournamentRoom, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM tournament_rooms WHERE tournament_id = $1`, tournamentID))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room for tournament %s: %w", tournamentID, err)
	}
	return room, nil
}

// Upsert вставляет или обновляет комнату по уникальному tournament_id.
// Незаданные поля при обновлении сохраняют прежнее значение.
func (r *postgresRoomRepository) Upsert(ctx context.Context, tournamentID string, input models.RoomInput) (*models.TournamentRoom, error) {
	roomID, _ := normalizeValue(input.RoomID)
	roomPassword, _ := normalizeValue(input.RoomPassword)

	query := `
		INSERT INTO tournament_rooms (id, tournament_id, room_id, room_password)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_id) DO UPDATE SET
			room_id = COALESCE(EXCLUDED.room_id, tournament_rooms.room_id),
			room_password = COALESCE(EXCLUDED.room_password, tournament_rooms.room_password),
			updated_at = now()
		RETURNING ` + roomColumns

	room, err := scanRoom(r.db.QueryRowContext(ctx, query, uuid.NewString(), tournamentID, roomID, roomPassword))
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation || code == pgInvalidTextRep {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to upsert room for tournament %s: %w", tournamentID, err)
	}
	return room, nil
}
