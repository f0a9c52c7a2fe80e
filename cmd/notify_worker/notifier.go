package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rcmp123/marketplace/internal/domain/entity"
	"github.com/rcmp123/marketplace/pkg/helpers"
	"github.com/rcmp123/marketplace/pkg/mailer"
	mailtpl "github.com/rcmp123/marketplace/pkg/mailer/templates"
)

type outcome int

const (
	outcomeAck   outcome = iota
	outcomeDrop          // malformed or unrenderable; redelivery cannot help
	outcomeRetry         // transient send failure
)

// notifier turns marketplace events into moderator emails.
type notifier struct {
	Sender    mailer.Sender
	To        string
	AppName   string
	Logger    logrus.FieldLogger
	SendLimit time.Duration
}

func (n *notifier) Handle(ctx context.Context, body []byte) outcome {
	var ev entity.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		n.Logger.WithError(err).Warn("bad message")
		return outcomeDrop
	}

	job, ok := n.jobFor(ev)
	if !ok {
		n.Logger.WithField("event", ev.Type).Debug("event ignored")
		return outcomeAck
	}

	subject, text, html, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		n.Logger.WithError(err).WithField("template", job.Template).Error("render failed")
		return outcomeDrop
	}

	c, cancel := context.WithTimeout(ctx, n.SendLimit)
	defer cancel()
	if err := n.Sender.Send(c, job.To, subject, text, html); err != nil {
		n.Logger.WithError(err).WithField("event", ev.Type).Warn("send failed")
		return outcomeRetry
	}
	helpers.LogInfo(n.Logger, "moderator notified", logrus.Fields{"event": ev.Type, "request_id": ev.RequestID})
	return outcomeAck
}

func (n *notifier) jobFor(ev entity.Event) (mailer.EmailJob, bool) {
	at := mailtpl.WithTime(ev.OccurredAt)
	switch ev.Type {
	case entity.EventUserRegistered:
		return mailer.EmailJob{
			To:       n.To,
			Template: mailtpl.UserRegistered,
			Data:     mailtpl.NewUserRegisteredData(n.AppName, ev.UserID, ev.Username, at),
		}, true
	case entity.EventListingCreated:
		if ev.Listing == nil {
			return mailer.EmailJob{}, false
		}
		l := ev.Listing
		return mailer.EmailJob{
			To:       n.To,
			Template: mailtpl.ListingCreated,
			Data: mailtpl.NewListingCreatedData(n.AppName, l.ID, l.Title, l.Description, l.Price, l.SellerID,
				mailtpl.WithImageURL(l.ImagePath), at),
		}, true
	default:
		return mailer.EmailJob{}, false
	}
}
