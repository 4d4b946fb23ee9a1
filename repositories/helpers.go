package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lib/pq"
)

// SQLExecutor покрывает *sql.DB и *sql.Tx, чтобы репозитории работали внутри транзакций.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

var ErrNothingToUpdate = errors.New("no fields to update")

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// columnSet собирает колонки для INSERT/UPDATE.
// Nil-указатели, пустые строки и пустые срезы отбрасываются.
type columnSet struct {
	names  []string
	values []interface{}
}

func (c *columnSet) set(name string, v interface{}) {
	val, ok := normalizeValue(v)
	if !ok {
		return
	}
	c.names = append(c.names, name)
	c.values = append(c.values, val)
}

func (c *columnSet) empty() bool {
	return len(c.names) == 0
}

func normalizeValue(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		if strings.TrimSpace(rv.String()) == "" {
			return nil, false
		}
	case reflect.Slice:
		if rv.Len() == 0 {
			return nil, false
		}
	}
	return rv.Interface(), true
}

func (c *columnSet) insertSQL(table, returning string) (string, []interface{}) {
	placeholders := make([]string, len(c.names))
	for i := range c.names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		table, strings.Join(c.names, ", "), strings.Join(placeholders, ", "), returning)
	return query, c.values
}

// updateSQL всегда проставляет updated_at = now().
func (c *columnSet) updateSQL(table, id, returning string) (string, []interface{}) {
	assignments := make([]string, 0, len(c.names)+1)
	for i, name := range c.names {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", name, i+1))
	}
	assignments = append(assignments, "updated_at = now()")
	args := append(append([]interface{}{}, c.values...), id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(assignments, ", "), len(args), returning)
	return query, args
}

// pgErrorCode returns the SQLSTATE and constraint of a lib/pq error.
func pgErrorCode(err error) (code, constraint string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRep      = "22P02"
)

// mapWriteError переводит типовые ошибки Postgres в ошибки репозитория.
func mapWriteError(err error, notFound, conflict, invalidRef error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	code, _ := pgErrorCode(err)
	switch code {
	case pgUniqueViolation:
		if conflict != nil {
			return conflict
		}
	case pgForeignKeyViolation:
		if invalidRef != nil {
			return invalidRef
		}
	case pgInvalidTextRep:
		// malformed uuid in a lookup is indistinguishable from a missing row
		return notFound
	}
	return err
}

// isNotFound: строка отсутствует либо id не является корректным uuid.
func isNotFound(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	code, _ := pgErrorCode(err)
	return code == pgInvalidTextRep
}
