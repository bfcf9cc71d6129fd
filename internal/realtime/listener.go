package realtime

import (
	"context"
	"encoding/json"
	"time"

	"chopline-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	orderEventsChannel   = "order_events"
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// Listener bridges Postgres NOTIFY into the hub. The order_events trigger
// (installed by migrations) emits a JSON payload on every order insert or
// status/driver change.
type Listener struct {
	pql *pq.Listener
	hub *Hub
}

func NewListener(dsn string, hub *Hub) *Listener {
	pql := pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.L().Error("postgres listener event",
					zap.Int("event_type", int(ev)),
					zap.Error(err),
				)
			}
		})

	return &Listener{pql: pql, hub: hub}
}

// Run listens until ctx is cancelled. A nil notification marks a connection
// re-establishment; subscribers may have missed events and should re-query
// their authoritative view.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.pql.Listen(orderEventsChannel); err != nil {
		return err
	}

	log := logger.L().With(zap.String("channel", orderEventsChannel))
	log.Info("realtime listener started")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer l.pql.Close()

	for {
		select {
		case <-ctx.Done():
			log.Info("realtime listener stopping")
			return ctx.Err()

		case <-ticker.C:
			if err := l.pql.Ping(); err != nil {
				log.Warn("listener ping failed", zap.Error(err))
			}

		case n := <-l.pql.Notify:
			if n == nil {
				log.Warn("listener connection re-established, events may have been missed")
				continue
			}

			var ev OrderEvent
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				log.Error("failed to decode order event",
					zap.String("payload", n.Extra),
					zap.Error(err),
				)
				continue
			}

			l.hub.Publish(ev)
		}
	}
}
