package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/repositories"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordingPublisher struct {
	mu     sync.Mutex
	events []changefeed.Event
}

func (p *recordingPublisher) Publish(e changefeed.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

type timerCall struct {
	duration *int
	start    *time.Time
	running  bool
}

type fakeTournamentRepo struct {
	repositories.TournamentRepository
	byID        map[string]*models.Tournament
	timerCalls  []timerCall
	statusCalls map[string]models.TournamentStatus
	forUpdate   []*models.Tournament
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id string) (*models.Tournament, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTournamentRepo) UpdateTimer(_ context.Context, id string, duration *int, start *time.Time, running bool) (*models.Tournament, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	f.timerCalls = append(f.timerCalls, timerCall{duration: duration, start: start, running: running})
	if duration != nil {
		d := *duration
		t.TimerDuration = &d
	}
	t.TimerStartTime = start
	t.TimerIsRunning = running
	cp := *t
	return &cp, nil
}

func (f *fakeTournamentRepo) GetTournamentsForAutoStatusUpdate(context.Context, repositories.SQLExecutor, time.Time) ([]*models.Tournament, error) {
	return f.forUpdate, nil
}

func (f *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.TournamentStatus) error {
	if f.statusCalls == nil {
		f.statusCalls = map[string]models.TournamentStatus{}
	}
	f.statusCalls[id] = status
	return nil
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func TestValidateTournamentInput(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	valid := models.TournamentInput{
		Name:            strPtr("Spring Cup"),
		Game:            strPtr("BGMI"),
		StartDate:       &start,
		MaxParticipants: intPtr(64),
		EntryFee:        strPtr("₹50"),
	}
	require.NoError(t, validateTournamentInput(valid, true))

	tests := []struct {
		name     string
		mutate   func(in *models.TournamentInput)
		creating bool
		field    string
	}{
		{"missing name", func(in *models.TournamentInput) { in.Name = nil }, true, "name"},
		{"zero capacity", func(in *models.TournamentInput) { in.MaxParticipants = intPtr(0) }, false, "max_participants"},
		{"end before start", func(in *models.TournamentInput) { in.EndDate = &before }, false, "end_date"},
		{"garbage fee", func(in *models.TournamentInput) { in.EntryFee = strPtr("lots") }, false, "entry_fee"},
		{"unknown status", func(in *models.TournamentInput) {
			s := models.TournamentStatus("paused")
			in.Status = &s
		}, false, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := validateTournamentInput(in, tt.creating)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestNextStatusByDates(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		t      models.Tournament
		want   models.TournamentStatus
		change bool
	}{
		{"upcoming not started", models.Tournament{Status: models.StatusUpcoming, StartDate: future}, "", false},
		{"upcoming started", models.Tournament{Status: models.StatusUpcoming, StartDate: past, EndDate: &future}, models.StatusOngoing, true},
		{"upcoming already over", models.Tournament{Status: models.StatusUpcoming, StartDate: past, EndDate: &past}, models.StatusCompleted, true},
		{"ongoing ended", models.Tournament{Status: models.StatusOngoing, StartDate: past, EndDate: &past}, models.StatusCompleted, true},
		{"ongoing open ended", models.Tournament{Status: models.StatusOngoing, StartDate: past}, "", false},
		{"completed", models.Tournament{Status: models.StatusCompleted, StartDate: past, EndDate: &past}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := nextStatusByDates(&tt.t, now)
			assert.Equal(t, tt.change, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestTournamentService(repo *fakeTournamentRepo, pub changefeed.Publisher, now time.Time) *tournamentService {
	svc := NewTournamentService(nil, repo, pub, discardLogger).(*tournamentService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestStartTimer(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeTournamentRepo{byID: map[string]*models.Tournament{
		"t-1": {ID: "t-1", Name: "Cup"},
	}}
	pub := &recordingPublisher{}
	svc := newTestTournamentService(repo, pub, now)
	ctx := context.Background()

	_, err := svc.StartTimer(ctx, "t-1", nil)
	assert.ErrorIs(t, err, ErrTimerNotConfigured)

	_, err = svc.StartTimer(ctx, "t-1", intPtr(-5))
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.StartTimer(ctx, "missing", intPtr(60))
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	updated, err := svc.StartTimer(ctx, "t-1", intPtr(60))
	require.NoError(t, err)
	assert.True(t, updated.TimerIsRunning)
	require.Len(t, repo.timerCalls, 1)
	assert.Equal(t, 60, *repo.timerCalls[0].duration)
	assert.True(t, repo.timerCalls[0].start.Equal(now))

	require.Len(t, pub.events, 1)
	assert.Equal(t, changefeed.TableTournaments, pub.events[0].Table)
	assert.Equal(t, changefeed.Update, pub.events[0].Type)

	// Повторный запуск без длительности берёт сохранённую.
	_, err = svc.StartTimer(ctx, "t-1", nil)
	require.NoError(t, err)
	assert.Nil(t, repo.timerCalls[1].duration)
}

func TestStopTimerKeepsRemaining(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	started := now.Add(-30 * time.Second)
	repo := &fakeTournamentRepo{byID: map[string]*models.Tournament{
		"t-1": {ID: "t-1", TimerDuration: intPtr(100), TimerStartTime: &started, TimerIsRunning: true},
	}}
	svc := newTestTournamentService(repo, changefeed.Discard, now)

	state, err := svc.TimerState(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 70, state.Remaining)
	assert.True(t, state.Running)

	updated, err := svc.StopTimer(context.Background(), "t-1")
	require.NoError(t, err)
	assert.False(t, updated.TimerIsRunning)
	assert.Equal(t, 70, *updated.TimerDuration)
	assert.Nil(t, updated.TimerStartTime)

	state, err = svc.TimerState(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, 70, state.Remaining)
	assert.False(t, state.Running)
}

func TestAutoUpdateStatusesPublishesAfterCommit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	repo := &fakeTournamentRepo{forUpdate: []*models.Tournament{
		{ID: "t-1", Status: models.StatusUpcoming, StartDate: past, EndDate: &future},
		{ID: "t-2", Status: models.StatusOngoing, StartDate: past, EndDate: &past},
		{ID: "t-3", Status: models.StatusUpcoming, StartDate: future},
	}}
	pub := &recordingPublisher{}
	svc := NewTournamentService(db, repo, pub, discardLogger).(*tournamentService)
	svc.now = func() time.Time { return now }

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.AutoUpdateTournamentStatusesByDates(context.Background()))
	assert.Equal(t, map[string]models.TournamentStatus{
		"t-1": models.StatusOngoing,
		"t-2": models.StatusCompleted,
	}, repo.statusCalls)
	assert.Len(t, pub.events, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
