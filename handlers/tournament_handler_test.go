package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/esports-arena/models"
)

func newTournamentRouter(ts *fakeTournaments) http.Handler {
	h := NewTournamentHandler(ts, nil)
	r := chi.NewRouter()
	r.Get("/tournaments", h.List)
	r.Get("/tournaments/{tournamentID}", h.Get)
	return r
}

func TestTournamentList_Filters(t *testing.T) {
	ts := &fakeTournaments{byID: map[string]models.Tournament{}}
	router := newTournamentRouter(ts)

	req := httptest.NewRequest(http.MethodGet, "/tournaments?status=upcoming&game=BGMI&limit=5&offset=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ts.lastFilter.Status)
	assert.Equal(t, models.StatusUpcoming, *ts.lastFilter.Status)
	require.NotNil(t, ts.lastFilter.Game)
	assert.Equal(t, "BGMI", *ts.lastFilter.Game)
	assert.Equal(t, 5, ts.lastFilter.Limit)
	assert.Equal(t, 10, ts.lastFilter.Offset)
}

func TestTournamentList_BadPaging(t *testing.T) {
	router := newTournamentRouter(&fakeTournaments{})

	for _, q := range []string{"limit=0", "limit=abc", "offset=-1"} {
		req := httptest.NewRequest(http.MethodGet, "/tournaments?"+q, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestTournamentGet(t *testing.T) {
	id := uuid.NewString()
	router := newTournamentRouter(&fakeTournaments{byID: map[string]models.Tournament{
		id: {ID: id, Name: "Winter Cup"},
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tournaments/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Winter Cup")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tournaments/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
