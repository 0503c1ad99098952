package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// Outcome tells the consumer loop how to settle a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Requeue
	Drop
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	default:
		return "drop"
	}
}

// Worker renders and sends queued EmailJobs.
type Worker struct {
	Sender      Sender
	Logger      logrus.FieldLogger
	SendTimeout time.Duration
}

func NewWorker(sender Sender, logger logrus.FieldLogger) *Worker {
	return &Worker{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

// Handle processes one message body. Malformed, unrenderable or rejected jobs
// are dropped; transport failures are requeued.
func (w *Worker) Handle(ctx context.Context, body []byte) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("bad email job")
		return Drop
	}

	log := w.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template})

	subject, text, html, err := Compose(job)
	if err != nil {
		log.WithError(err).Warn("cannot compose email job")
		return Drop
	}

	c, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		if errors.Is(err, ErrPermanent) {
			log.WithError(err).Error("send rejected, dropping")
			return Drop
		}
		log.WithError(err).Error("send failed")
		return Requeue
	}
	log.Info("email sent")
	return Ack
}
