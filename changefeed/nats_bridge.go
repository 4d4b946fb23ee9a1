package changefeed

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const DefaultSubject = "arena.changes"

// ConnectNATS opens a NATS connection; token may be empty.
func ConnectNATS(url, token string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	opts := []nats.Option{
		nats.Name("esports-arena change feed"),
		nats.MaxReconnects(-1),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return conn, nil
}

// NATSBridge relays local bus events to other instances and injects theirs locally.
type NATSBridge struct {
	conn    *nats.Conn
	bus     *Bus
	subject string
	origin  string
	logger  *slog.Logger

	sub   *nats.Subscription
	unsub func()
}

func NewNATSBridge(conn *nats.Conn, bus *Bus, subject string, logger *slog.Logger) *NATSBridge {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSBridge{
		conn:    conn,
		bus:     bus,
		subject: subject,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

func (b *NATSBridge) Start() error {
	sub, err := b.conn.Subscribe(b.subject, b.onMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.subject, err)
	}
	b.sub = sub
	b.unsub = b.bus.Subscribe(AllTables, b.forward)
	return nil
}

// forward publishes locally originated events. Events injected from NATS carry
// a foreign origin and are not sent back.
func (b *NATSBridge) forward(e Event) {
	if e.Origin != "" || e.Type == Resync {
		return
	}
	e.Origin = b.origin
	data, err := json.Marshal(e)
	if err != nil {
		b.logger.Error("failed to marshal change event", slog.Any("error", err))
		return
	}
	if err := b.conn.Publish(b.subject, data); err != nil {
		b.logger.Error("failed to publish change event", slog.String("table", e.Table), slog.Any("error", err))
	}
}

func (b *NATSBridge) onMessage(msg *nats.Msg) {
	var e Event
	if err := json.Unmarshal(msg.Data, &e); err != nil {
		b.logger.Error("invalid change event from NATS", slog.Any("error", err))
		return
	}
	if e.Origin == b.origin || e.Origin == "" {
		return
	}
	b.bus.Publish(e)
}

func (b *NATSBridge) Close() error {
	if b.unsub != nil {
		b.unsub()
	}
	if b.sub != nil {
		return b.sub.Unsubscribe()
	}
	return nil
}
