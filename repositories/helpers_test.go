package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestColumnSetSkipsEmptyValues(t *testing.T) {
	name := "Winter Cup"
	blank := "   "
	var missing *string

	c := &columnSet{}
	c.set("name", &name)
	c.set("description", &blank)
	c.set("banner", missing)
	c.set("highlights", []string{})
	c.set("max_participants", 64)

	query, args := c.insertSQL("tournaments", "id")
	assert.Equal(t, "INSERT INTO tournaments (name, max_participants) VALUES ($1, $2) RETURNING id", query)
	assert.Equal(t, []interface{}{"Winter Cup", 64}, args)
}

func TestColumnSetUpdateSQL(t *testing.T) {
	c := &columnSet{}
	c.set("score1", 3)
	c.set("status", "live")

	query, args := c.updateSQL("matches", "m-1", "id")
	assert.Equal(t, "UPDATE matches SET score1 = $1, status = $2, updated_at = now() WHERE id = $3 RETURNING id", query)
	assert.Equal(t, []interface{}{3, "live", "m-1"}, args)
	assert.False(t, c.empty())
	assert.True(t, (&columnSet{}).empty())
}

func TestMapWriteError(t *testing.T) {
	notFound := errors.New("not found")
	conflict := errors.New("conflict")
	invalidRef := errors.New("invalid ref")
	other := errors.New("boom")

	assert.NoError(t, mapWriteError(nil, notFound, conflict, invalidRef))
	assert.Equal(t, notFound, mapWriteError(sql.ErrNoRows, notFound, conflict, invalidRef))
	assert.Equal(t, conflict, mapWriteError(&pq.Error{Code: pgUniqueViolation}, notFound, conflict, invalidRef))
	assert.Equal(t, invalidRef, mapWriteError(&pq.Error{Code: pgForeignKeyViolation}, notFound, conflict, invalidRef))
	assert.Equal(t, notFound, mapWriteError(&pq.Error{Code: pgInvalidTextRep}, notFound, conflict, invalidRef))
	assert.Equal(t, other, mapWriteError(other, notFound, conflict, invalidRef))
}
