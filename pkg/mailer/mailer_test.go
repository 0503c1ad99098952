package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailtpl "github.com/oksasatya/project-tracker-api/pkg/mailer/templates"
)

type sent struct {
	to, subject, text, html string
}

type fakeSender struct {
	msgs []sent
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, sent{to, subject, text, html})
	return nil
}

type fakePublisher struct {
	bodies []any
	err    error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

var brand = mailtpl.Brand{AppName: "tracker", CompanyName: "Tracker Co"}

func TestNewNotifier_Validation(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := NewNotifier(NotifierConfig{Enabled: true, Delivery: DeliveryDirect, Logger: logger})
	assert.Error(t, err)

	_, err = NewNotifier(NotifierConfig{Enabled: true, Delivery: DeliveryQueue, Logger: logger})
	assert.Error(t, err)

	_, err = NewNotifier(NotifierConfig{Enabled: true, Delivery: "fax", Sender: &fakeSender{}, Logger: logger})
	assert.Error(t, err)

	_, err = NewNotifier(NotifierConfig{Enabled: false, Logger: logger})
	assert.NoError(t, err)

	_, err = NewNotifier(NotifierConfig{Enabled: false})
	assert.Error(t, err)
}

func TestNotifier_Direct(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := &fakeSender{}
	n, err := NewNotifier(NotifierConfig{Enabled: true, Delivery: DeliveryDirect, Sender: s, Brand: brand, Logger: logger})
	require.NoError(t, err)

	link := "http://app.test/verify-email?token=abc"
	require.NoError(t, n.SendVerifyEmail(context.Background(), Recipient{Email: "a@x.com", Name: "Ann"}, link, time.Now().Add(time.Hour), false))

	require.Len(t, s.msgs, 1)
	assert.Equal(t, "a@x.com", s.msgs[0].to)
	assert.Equal(t, "Tracker Co: Email Verification", s.msgs[0].subject)
	assert.Contains(t, s.msgs[0].text, link)
	assert.Contains(t, s.msgs[0].html, link)
}

func TestNotifier_DirectSendError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := &fakeSender{err: errors.New("boom")}
	n, err := NewNotifier(NotifierConfig{Enabled: true, Delivery: DeliveryDirect, Sender: s, Brand: brand, Logger: logger})
	require.NoError(t, err)

	err = n.SendResetPassword(context.Background(), Recipient{Email: "a@x.com", Name: "Ann"}, "http://l", time.Now())
	assert.ErrorContains(t, err, "boom")
}

func TestNotifier_Queue(t *testing.T) {
	logger, _ := test.NewNullLogger()
	p := &fakePublisher{}
	n, err := NewNotifier(NotifierConfig{Enabled: true, Delivery: DeliveryQueue, Publisher: p, Brand: brand, Logger: logger})
	require.NoError(t, err)

	link := "http://app.test/reset-password?token=xyz"
	require.NoError(t, n.SendResetPassword(context.Background(), Recipient{Email: "a@x.com", Name: "Ann"}, link, time.Now().Add(time.Hour)))

	require.Len(t, p.bodies, 1)
	job, ok := p.bodies[0].(EmailJob)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", job.To)
	assert.Equal(t, mailtpl.ResetPassword, job.Template)
	assert.Equal(t, link, job.Data["ResetURL"])
}

func TestNotifier_Disabled(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n, err := NewNotifier(NotifierConfig{Enabled: false, Brand: brand, Logger: logger})
	require.NoError(t, err)

	link := "http://app.test/verify-email?token=abc"
	require.NoError(t, n.SendVerifyEmail(context.Background(), Recipient{Email: "a@x.com"}, link, time.Now(), true))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, link, entry.Data["link"])
}

func TestCompose(t *testing.T) {
	_, _, _, err := Compose(EmailJob{Text: "hi"})
	assert.ErrorIs(t, err, ErrNoRecipient)

	_, _, _, err = Compose(EmailJob{To: "a@x.com"})
	assert.ErrorIs(t, err, ErrEmptyBody)

	_, _, _, err = Compose(EmailJob{To: "a@x.com", Template: "login_notification"})
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	s, txt, _, err := Compose(EmailJob{To: "a@x.com", Subject: "Hello", Text: "body"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", s)
	assert.Equal(t, "body", txt)
}

func TestWorker_Handle(t *testing.T) {
	logger, _ := test.NewNullLogger()

	good, err := json.Marshal(EmailJob{
		To:       "a@x.com",
		Template: mailtpl.VerifyEmail,
		Data:     mailtpl.ToMap(mailtpl.NewVerifyEmailData(brand, "Ann", "a@x.com", "http://l")),
	})
	require.NoError(t, err)
	unknown, err := json.Marshal(EmailJob{To: "a@x.com", Template: "universal"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		body   []byte
		sender *fakeSender
		want   Outcome
		sends  int
	}{
		{"sent", good, &fakeSender{}, Ack, 1},
		{"bad json", []byte("{"), &fakeSender{}, Drop, 0},
		{"unknown template", unknown, &fakeSender{}, Drop, 0},
		{"transport failure", good, &fakeSender{err: errors.New("503")}, Requeue, 0},
		{"rejected", good, &fakeSender{err: fmt.Errorf("%w: bad recipient", ErrPermanent)}, Drop, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorker(tt.sender, logger)
			assert.Equal(t, tt.want, w.Handle(context.Background(), tt.body))
			assert.Len(t, tt.sender.msgs, tt.sends)
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ack", Ack.String())
	assert.Equal(t, "requeue", Requeue.String())
	assert.Equal(t, "drop", Drop.String())
}

func TestClassifySendError(t *testing.T) {
	assert.NoError(t, classifySendError(nil))

	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"bad request", &mg.UnexpectedResponseError{Actual: 400}, true},
		{"unauthorized", &mg.UnexpectedResponseError{Actual: 401}, true},
		{"rate limited", &mg.UnexpectedResponseError{Actual: 429}, false},
		{"server error", &mg.UnexpectedResponseError{Actual: 503}, false},
		{"invalid message", mg.ErrInvalidMessage, true},
		{"timeout", context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifySendError(tt.err)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.permanent, errors.Is(got, ErrPermanent))
		})
	}
}
