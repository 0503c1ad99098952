package templates

import (
	"time"
)

// Brand carries the sender identity shared by every template.
type Brand struct {
	AppName     string
	CompanyName string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.Time = t.UTC().Format("02 January 2006, 15:04")
	}
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

// WithReturning marks a verification mail re-sent on login.
func WithReturning() Option { return func(d *EmailData) { d.Returning = true } }

// NewBaseEmailData fills the common fields then applies opts.
func NewBaseEmailData(b Brand, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
		CompanyName:    b.CompanyName,
		AppName:        b.AppName,
		SupportURL:     b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewVerifyEmailData(b Brand, name, email, verifyURL string, opts ...Option) EmailData {
	d := NewBaseEmailData(b, VerifyEmail, name, email, opts...)
	d.VerifyURL = verifyURL
	return d
}

func NewResetPasswordData(b Brand, name, email, resetURL string, opts ...Option) EmailData {
	d := NewBaseEmailData(b, ResetPassword, name, email, opts...)
	d.ResetURL = resetURL
	return d
}
