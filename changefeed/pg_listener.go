package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

const (
	pgChannel          = "table_changes"
	minReconnectPeriod = 10 * time.Second
	maxReconnectPeriod = time.Minute
	pingPeriod         = 90 * time.Second
)

// PGListener turns NOTIFY payloads from the notify_table_change trigger into bus events.
type PGListener struct {
	listener *pq.Listener
	bus      *Bus
	logger   *slog.Logger
}

func NewPGListener(dsn string, bus *Bus, logger *slog.Logger) *PGListener {
	l := &PGListener{bus: bus, logger: logger}
	l.listener = pq.NewListener(dsn, minReconnectPeriod, maxReconnectPeriod, l.onListenerEvent)
	return l
}

func (l *PGListener) onListenerEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		l.logger.Info("change feed listener connected")
	case pq.ListenerEventDisconnected:
		l.logger.Warn("change feed listener disconnected", slog.Any("error", err))
	case pq.ListenerEventReconnected:
		l.logger.Info("change feed listener reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		l.logger.Error("change feed listener connection attempt failed", slog.Any("error", err))
	}
}

// Run blocks until ctx is cancelled.
func (l *PGListener) Run(ctx context.Context) error {
	if err := l.listener.Listen(pgChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", pgChannel, err)
	}
	defer func() {
		if err := l.listener.Close(); err != nil {
			l.logger.Error("failed to close change feed listener", slog.Any("error", err))
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-l.listener.Notify:
			if n == nil {
				// Reconnected: notifications sent while we were away are gone.
				l.bus.Publish(Event{Table: AllTables, Type: Resync})
				continue
			}
			l.handle(n.Extra)
		case <-ticker.C:
			if err := l.listener.Ping(); err != nil {
				l.logger.Warn("change feed listener ping failed", slog.Any("error", err))
			}
		}
	}
}

func (l *PGListener) handle(payload string) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		l.logger.Error("invalid change notification", slog.Any("error", err))
		return
	}
	l.bus.Publish(e)
}
