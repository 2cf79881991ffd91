package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Channel is the Postgres NOTIFY channel written by the chat insert trigger
const Channel = "group_chat"

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
	pingInterval = 90 * time.Second
)

// Listen consumes NOTIFY events from Postgres and publishes them to the hub.
// It blocks until the context is cancelled, so it should be launched in a
// separate goroutine.
func Listen(ctx context.Context, databaseURL string, hub *Hub, logger *logrus.Logger) error {
	listener := pq.NewListener(databaseURL, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.WithError(err).Warn("Chat listener connection problem")
			return
		}
		if ev == pq.ListenerEventReconnected {
			logger.Info("Chat listener reconnected")
		}
	})
	defer listener.Close()

	if err := listener.Listen(Channel); err != nil {
		return err
	}
	logger.WithField("channel", Channel).Info("Chat listener started")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Chat listener stopped")
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; events may have been missed
			if n == nil {
				continue
			}
			Dispatch(hub, n.Extra, logger)
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				logger.WithError(err).Warn("Chat listener ping failed")
			}
		}
	}
}

// Dispatch publishes a NOTIFY payload holding a group id
func Dispatch(hub *Hub, payload string, logger *logrus.Logger) {
	groupID, err := uuid.Parse(payload)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"channel": Channel,
			"payload": payload,
		}).Warn("Ignoring malformed chat notification")
		return
	}
	hub.Publish(groupID)
}
