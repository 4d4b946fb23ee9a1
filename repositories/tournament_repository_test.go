package repositories

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/esports-arena/models"
)

func newTournamentRepo(t *testing.T) (sqlmock.Sqlmock, TournamentRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewPostgresTournamentRepository(db)
}

func TestTournamentListBuildsFilter(t *testing.T) {
	mock, repo := newTournamentRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM tournaments WHERE 1=1 AND status = $1 AND game = $2 ORDER BY start_date ASC, created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs("upcoming", "BGMI", 20, 40).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	status := models.StatusUpcoming
	game := "BGMI"
	list, err := repo.List(context.Background(), ListTournamentsFilter{Status: &status, Game: &game, Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTournamentUpdateNothing(t *testing.T) {
	mock, repo := newTournamentRepo(t)

	_, err := repo.Update(context.Background(), "t-1", models.TournamentInput{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTournamentDelete(t *testing.T) {
	tests := []struct {
		name   string
		expect func(m sqlmock.Sqlmock)
		want   error
	}{
		{
			name: "deleted",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("DELETE FROM tournaments WHERE id = $1")).
					WithArgs("t-1").WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("DELETE FROM tournaments WHERE id = $1")).
					WithArgs("t-1").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			want: ErrTournamentNotFound,
		},
		{
			name: "referenced",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("DELETE FROM tournaments WHERE id = $1")).
					WithArgs("t-1").WillReturnError(&pq.Error{Code: pgForeignKeyViolation})
			},
			want: ErrTournamentInUse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newTournamentRepo(t)
			tt.expect(mock)

			err := repo.Delete(context.Background(), "t-1")
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTournamentUpdateStatusInTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresTournamentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tournaments SET status = $1, updated_at = now() WHERE id = $2")).
		WithArgs("ongoing", "t-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), tx, "t-1", models.StatusOngoing))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
