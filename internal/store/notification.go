package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/estatedesk/backoffice/internal/models"
)

// notifyChannel must match db.ListenChannel.
const notifyChannel = "property_events"

// maxNotifyPayload stays under PostgreSQL's 8000 byte NOTIFY limit.
const maxNotifyPayload = 7900

// NotificationStore publishes notifications with pg_notify so the LISTEN
// bridge on every instance can push them to connected users.
type NotificationStore struct {
	Base
}

// NewNotificationStore creates a new NotificationStore.
func NewNotificationStore(base Base) *NotificationStore {
	return &NotificationStore{Base: base}
}

// Name identifies this sink in logs and metrics.
func (s *NotificationStore) Name() string { return "pg_notify" }

// Dispatch publishes n on the property_events channel.
func (s *NotificationStore) Dispatch(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	if len(payload) > maxNotifyPayload {
		n.Detail = nil
		if payload, err = json.Marshal(n); err != nil {
			return fmt.Errorf("marshaling notification: %w", err)
		}
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := s.Pool.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, string(payload)); err != nil {
		return fmt.Errorf("publishing notification: %w", err)
	}

	return nil
}
