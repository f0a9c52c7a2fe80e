package application

import (
	"context"
	"expvar"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rcmp123/marketplace/internal/domain/entity"
	"github.com/rcmp123/marketplace/pkg/helpers"
)

// EventPublisher is satisfied by *helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// counters exposed on /debug/vars
var metrics = expvar.NewMap("marketplace")

const publishTimeout = 3 * time.Second

// publish sends ev without failing the caller; the write it describes has already committed.
func publish(ctx context.Context, pub EventPublisher, logger logrus.FieldLogger, ev entity.Event) {
	if pub == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	ev.RequestID = helpers.RequestIDFromContext(ctx)

	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := pub.PublishJSON(c, ev); err != nil {
		metrics.Add("events_failed", 1)
		helpers.LogWarn(logger, "publish event failed", err, logrus.Fields{"event": ev.Type, "request_id": ev.RequestID})
		return
	}
	metrics.Add("events_published", 1)
}
