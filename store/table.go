package store

import "sort"

// table - упорядоченный набор строк с доступом по id.
type table[T any] struct {
	rows []T
	id   func(T) string
	less func(a, b T) bool
}

func (t *table[T]) reset(rows []T) {
	t.rows = append([]T(nil), rows...)
	t.sort()
}

func (t *table[T]) upsert(row T) {
	id := t.id(row)
	for i := range t.rows {
		if t.id(t.rows[i]) == id {
			t.rows[i] = row
			t.sort()
			return
		}
	}
	t.rows = append(t.rows, row)
	t.sort()
}

func (t *table[T]) remove(id string) bool {
	for i := range t.rows {
		if t.id(t.rows[i]) == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return true
		}
	}
	return false
}

func (t *table[T]) get(id string) (T, bool) {
	for _, row := range t.rows {
		if t.id(row) == id {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) snapshot() []T {
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *table[T]) sort() {
	if t.less == nil {
		return
	}
	sort.SliceStable(t.rows, func(i, j int) bool { return t.less(t.rows[i], t.rows[j]) })
}
