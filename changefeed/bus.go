package changefeed

import (
	"log/slog"
	"sync"
)

type Handler func(Event)

// Publisher is what writers need; Bus implements it.
type Publisher interface {
	Publish(e Event)
}

type discard struct{}

func (discard) Publish(Event) {}

// Discard drops events. Used when the database triggers are the event source.
var Discard Publisher = discard{}

// Bus fans events out to subscribers keyed by table name.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]Handler
	nextID uint64
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[string]map[uint64]Handler),
		logger: logger,
	}
}

// Subscribe registers h for table (or AllTables). The returned func removes it.
func (b *Bus) Subscribe(table string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if _, ok := b.subs[table]; !ok {
		b.subs[table] = make(map[uint64]Handler)
	}
	b.subs[table][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[table], id)
			if len(b.subs[table]) == 0 {
				delete(b.subs, table)
			}
		})
	}
}

// Publish delivers e synchronously. Handlers run outside the lock.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[e.Table])+len(b.subs[AllTables]))
	for _, h := range b.subs[e.Table] {
		handlers = append(handlers, h)
	}
	if e.Table != AllTables {
		for _, h := range b.subs[AllTables] {
			handlers = append(handlers, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(h, e)
	}
}

func (b *Bus) dispatch(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("change handler panicked",
				slog.String("table", e.Table), slog.String("type", string(e.Type)), slog.Any("panic", r))
		}
	}()
	h(e)
}

// SubscriberCount is the number of handlers for a table, mostly for tests.
func (b *Bus) SubscriberCount(table string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[table])
}
