// Package screening decides whether an email address may register.
package screening

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker-api/pkg/helpers"
)

const (
	ReasonSyntax     = "syntax"
	ReasonDisposable = "disposable"
	ReasonNoMX       = "no_mx"

	cacheTTL = 24 * time.Hour
)

var builtinDisposable = []string{
	"10minutemail.com",
	"dispostable.com",
	"discard.email",
	"fakeinbox.com",
	"getnada.com",
	"guerrillamail.com",
	"mailinator.com",
	"maildrop.cc",
	"sharklasers.com",
	"temp-mail.org",
	"tempmail.com",
	"throwawaymail.com",
	"trashmail.com",
	"yopmail.com",
}

// Verdict is the outcome of screening one address.
type Verdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type MXLookupFunc func(ctx context.Context, domain string) ([]*net.MX, error)

type Options struct {
	ExtraDisposable []string
	CheckMX         bool
	LookupMX        MXLookupFunc
	// Redis caches per-domain verdicts; nil disables caching.
	Redis  redis.Cmdable
	Logger logrus.FieldLogger
}

type Screener struct {
	validate *validator.Validate
	blocked  map[string]struct{}
	checkMX  bool
	lookupMX MXLookupFunc
	rdb      redis.Cmdable
	logger   logrus.FieldLogger
}

func New(opts Options) *Screener {
	s := &Screener{
		validate: validator.New(),
		blocked:  make(map[string]struct{}, len(builtinDisposable)+len(opts.ExtraDisposable)),
		checkMX:  opts.CheckMX,
		lookupMX: opts.LookupMX,
		rdb:      opts.Redis,
		logger:   opts.Logger,
	}
	for _, d := range builtinDisposable {
		s.blocked[d] = struct{}{}
	}
	for _, d := range opts.ExtraDisposable {
		s.blocked[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	if s.lookupMX == nil {
		s.lookupMX = net.DefaultResolver.LookupMX
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	return s
}

// Allowed reports whether email passed screening.
func (s *Screener) Allowed(ctx context.Context, email string) (bool, error) {
	v, err := s.Screen(ctx, email)
	return v.Valid, err
}

func (s *Screener) Screen(ctx context.Context, email string) (Verdict, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return Verdict{Reason: ReasonSyntax}, nil
	}
	domain := email[strings.LastIndex(email, "@")+1:]

	key := "email:screen:" + domain
	if s.rdb != nil {
		var cached Verdict
		ok, err := helpers.RedisGetJSON(ctx, s.rdb, key, &cached)
		if err != nil {
			s.logger.WithError(err).WithField("domain", domain).Warn("screening cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	v := s.screenDomain(ctx, domain)

	if s.rdb != nil {
		if err := helpers.RedisSetJSON(ctx, s.rdb, key, v, cacheTTL); err != nil {
			s.logger.WithError(err).WithField("domain", domain).Warn("screening cache write failed")
		}
	}
	return v, nil
}

func (s *Screener) screenDomain(ctx context.Context, domain string) Verdict {
	if s.isDisposable(domain) {
		return Verdict{Reason: ReasonDisposable}
	}
	if s.checkMX {
		mx, err := s.lookupMX(ctx, domain)
		if err != nil || len(mx) == 0 {
			return Verdict{Reason: ReasonNoMX}
		}
	}
	return Verdict{Valid: true}
}

// isDisposable matches the domain and any parent domain against the blocklist.
func (s *Screener) isDisposable(domain string) bool {
	for d := domain; d != ""; {
		if _, ok := s.blocked[d]; ok {
			return true
		}
		i := strings.IndexByte(d, '.')
		if i < 0 {
			break
		}
		d = d[i+1:]
	}
	return false
}
