package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/nats-io/nats.go"
)

// NATSMirror publishes each notification on <subject>.<recipient_id>.
type NATSMirror struct {
	conn    *nats.Conn
	subject string
}

func ConnectNATS(url, subject string) (*NATSMirror, error) {
	conn, err := nats.Connect(url, nats.Name("nano-social"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return NewNATSMirror(conn, subject), nil
}

func NewNATSMirror(conn *nats.Conn, subject string) *NATSMirror {
	return &NATSMirror{conn: conn, subject: subject}
}

func (m *NATSMirror) Subject(recipientID uint) string {
	return fmt.Sprintf("%s.%d", m.subject, recipientID)
}

func (m *NATSMirror) Forward(_ context.Context, n *models.Notification) error {
	payload, err := json.Marshal(NewRecord(n))
	if err != nil {
		return err
	}
	return m.conn.Publish(m.Subject(n.RecipientID), payload)
}

func (m *NATSMirror) Close() {
	if m.conn != nil {
		_ = m.conn.Drain()
	}
}
