package mailer

import (
	"errors"
	"fmt"
	"strings"

	mailtpl "github.com/oksasatya/project-tracker-api/pkg/mailer/templates"
)

var (
	ErrNoRecipient     = errors.New("mailer: job has no recipient")
	ErrEmptyBody       = errors.New("mailer: job has neither template nor body")
	ErrUnknownTemplate = errors.New("mailer: unknown template")
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Html is optional; Text is recommended as fallback.
// You can also use a template by specifying Template and Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "verify_email" or "reset_password"
	Data     map[string]any `json:"data,omitempty"`
}

// Compose resolves the final subject and bodies of a job, rendering its template if set.
func Compose(job EmailJob) (subject, text, html string, err error) {
	if strings.TrimSpace(job.To) == "" {
		return "", "", "", ErrNoRecipient
	}
	if job.Template == "" {
		if job.Text == "" && job.HTML == "" {
			return "", "", "", ErrEmptyBody
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	if !mailtpl.Known(job.Template) {
		return "", "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, job.Template)
	}
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if _, ok := job.Data["RecipientEmail"]; !ok {
		job.Data["RecipientEmail"] = job.To
	}
	subject, text, html, err = mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", err
	}
	if job.Subject != "" {
		subject = job.Subject
	}
	return subject, text, html, nil
}
