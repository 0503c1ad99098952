package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines standard fields for email templates.
type EmailData struct {
	// Basic info
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	// Company info
	CompanyName string `json:"CompanyName"`
	AppName     string `json:"AppName"`
	SupportURL  string `json:"SupportURL"`

	// Action URLs
	ResetURL  string `json:"ResetURL"`
	VerifyURL string `json:"VerifyURL"`

	// Additional data
	ExpiresAt     time.Time `json:"ExpiresAt"`
	ExpiresAtText string    `json:"ExpiresAtText"`
	Time          string    `json:"Time"`
	Returning     bool      `json:"Returning"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		zero := reflect.Zero(rv.Type()).Interface()
		if reflect.DeepEqual(value, zero) {
			return fallback
		}
		return value
	}
}

var funcs = map[string]any{
	"default": defaultFn,
}

const (
	VerifyEmail   = "verify_email"
	ResetPassword = "reset_password"
)

var names = []string{VerifyEmail, ResetPassword}

// Known reports whether name has a subject, text and html template.
func Known(name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

type set struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

var (
	loadOnce sync.Once
	loaded   map[string]set
	loadErr  error
)

// load parses every <name>.{subject,text,html}.tmpl from FS exactly once.
func load() (map[string]set, error) {
	loadOnce.Do(func() {
		m := make(map[string]set, len(names))
		for _, n := range names {
			var ts set
			var err error
			if ts.subject, err = texttpl.New(n).Funcs(funcs).ParseFS(FS, n+".subject.tmpl"); err != nil {
				loadErr = fmt.Errorf("parse %s subject: %w", n, err)
				return
			}
			if ts.text, err = texttpl.New(n).Funcs(funcs).ParseFS(FS, n+".text.tmpl"); err != nil {
				loadErr = fmt.Errorf("parse %s text: %w", n, err)
				return
			}
			if ts.html, err = htmpl.New(n).Funcs(funcs).ParseFS(FS, n+".html.tmpl"); err != nil {
				loadErr = fmt.Errorf("parse %s html: %w", n, err)
				return
			}
			m[n] = ts
		}
		loaded = m
	})
	return loaded, loadErr
}

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func exec(t executor, file string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, file, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", file, err)
	}
	return buf.String(), nil
}

// Render produces the subject, plain text and html bodies for template name.
func Render(name string, data any) (subject string, text string, html string, err error) {
	all, err := load()
	if err != nil {
		return "", "", "", err
	}
	ts, ok := all[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = exec(ts.subject, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = exec(ts.text, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = exec(ts.html, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
