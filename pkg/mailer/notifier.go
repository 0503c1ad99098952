package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker-api/pkg/helpers"
	mailtpl "github.com/oksasatya/project-tracker-api/pkg/mailer/templates"
)

const (
	DeliveryDirect = "direct"
	DeliveryQueue  = "queue"
)

// Publisher puts a JSON job on the mail queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Recipient identifies who a notification goes to.
type Recipient struct {
	Email string
	Name  string
}

type NotifierConfig struct {
	Enabled   bool
	Delivery  string
	Sender    Sender
	Publisher Publisher
	Brand     mailtpl.Brand
	Logger    logrus.FieldLogger
}

// Notifier turns account events into emails. Direct delivery renders and sends
// inline; queue delivery publishes a template job for cmd/email_worker.
type Notifier struct {
	enabled   bool
	delivery  string
	sender    Sender
	publisher Publisher
	brand     mailtpl.Brand
	logger    logrus.FieldLogger
}

func NewNotifier(cfg NotifierConfig) (*Notifier, error) {
	if cfg.Logger == nil {
		return nil, errors.New("mailer: logger is required")
	}
	n := &Notifier{
		enabled:   cfg.Enabled,
		delivery:  cfg.Delivery,
		sender:    cfg.Sender,
		publisher: cfg.Publisher,
		brand:     cfg.Brand,
		logger:    cfg.Logger,
	}
	if !n.enabled {
		return n, nil
	}
	switch n.delivery {
	case DeliveryDirect:
		if n.sender == nil {
			return nil, errors.New("mailer: direct delivery needs a sender")
		}
	case DeliveryQueue:
		if n.publisher == nil {
			return nil, errors.New("mailer: queue delivery needs a publisher")
		}
	default:
		return nil, fmt.Errorf("mailer: unknown delivery %q", n.delivery)
	}
	return n, nil
}

// SendVerifyEmail mails the email verification link. returning marks a re-send triggered by login.
func (n *Notifier) SendVerifyEmail(ctx context.Context, to Recipient, link string, expiresAt time.Time, returning bool) error {
	opts := []mailtpl.Option{mailtpl.WithExpiresAt(expiresAt), mailtpl.WithTime(time.Now())}
	if returning {
		opts = append(opts, mailtpl.WithReturning())
	}
	data := mailtpl.NewVerifyEmailData(n.brand, to.Name, to.Email, link, opts...)
	return n.dispatch(ctx, to.Email, mailtpl.VerifyEmail, data, link)
}

// SendResetPassword mails the password reset link.
func (n *Notifier) SendResetPassword(ctx context.Context, to Recipient, link string, expiresAt time.Time) error {
	data := mailtpl.NewResetPasswordData(n.brand, to.Name, to.Email, link,
		mailtpl.WithExpiresAt(expiresAt), mailtpl.WithTime(time.Now()))
	return n.dispatch(ctx, to.Email, mailtpl.ResetPassword, data, link)
}

func (n *Notifier) dispatch(ctx context.Context, to, template string, data mailtpl.EmailData, link string) error {
	fields := logrus.Fields{"to": to, "template": template}
	if !n.enabled {
		fields["link"] = link
		helpers.LogInfo(n.logger, "mail sending disabled; email not sent", fields)
		return nil
	}

	job := EmailJob{To: to, Template: template, Data: mailtpl.ToMap(data)}

	if n.delivery == DeliveryQueue {
		if err := n.publisher.PublishJSON(ctx, job); err != nil {
			return fmt.Errorf("publish %s: %w", template, err)
		}
		n.logger.WithFields(fields).Debug("email job queued")
		return nil
	}

	subject, text, html, err := Compose(job)
	if err != nil {
		return fmt.Errorf("compose %s: %w", template, err)
	}
	if err := n.sender.Send(ctx, to, subject, text, html); err != nil {
		return fmt.Errorf("send %s: %w", template, err)
	}
	n.logger.WithFields(fields).Debug("email sent")
	return nil
}
