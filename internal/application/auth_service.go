package application

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	repo "github.com/oksasatya/project-tracker-api/internal/domain/repository"
	"github.com/oksasatya/project-tracker-api/pkg/apperror"
	"github.com/oksasatya/project-tracker-api/pkg/helpers"
	"github.com/oksasatya/project-tracker-api/pkg/mailer"
)

const (
	MsgInvalidEmail        = "Invalid Email Address"
	MsgUserExists          = "User already exists"
	MsgInvalidCredentials  = "Invalid User or Password"
	MsgCheckVerification   = "Email not verified. Please check your email for verification link."
	MsgVerificationResent  = "Email not verified. A new verification link has been sent."
	MsgUnauthorized        = "Unauthorized"
	MsgVerificationExpired = "Verification token has expired"
	MsgTokenExpired        = "Token expired"
	MsgUserNotFound        = "User not found"
	MsgAlreadyVerified     = "Email already verified"
	MsgVerifyFirst         = "Email not verified. Please verify your email first."
	MsgResetPending        = "Password reset request already exists. Please check your email."
	MsgPasswordsDoNotMatch = "Passwords do not match"
	MsgVerificationNotSent = "Failed to send verification email"
	MsgResetNotSent        = "Failed to send password reset email"
	MsgPasswordLength      = "Password must be between 6 and 72 characters long"
)

// bcrypt ignores input past 72 bytes
const (
	MinPasswordLen = 6
	MaxPasswordLen = 72
)

// TokenSigner mints and verifies purpose-scoped signed tokens.
type TokenSigner interface {
	Sign(userID, purpose, sessionID string, ttl time.Duration) (string, time.Time, error)
	Parse(token string) (*helpers.Claims, error)
}

type Notifier interface {
	SendVerifyEmail(ctx context.Context, to mailer.Recipient, link string, expiresAt time.Time, returning bool) error
	SendResetPassword(ctx context.Context, to mailer.Recipient, link string, expiresAt time.Time) error
}

// EmailScreener rejects invalid or disposable addresses at registration.
type EmailScreener interface {
	Allowed(ctx context.Context, email string) (bool, error)
}

type SessionStore interface {
	Save(ctx context.Context, s entity.Session) error
	Get(ctx context.Context, userID string) (*entity.Session, error)
	Touch(ctx context.Context, userID, name string) error
	Delete(ctx context.Context, userID string) error
}

// UserIndexer mirrors public profile fields into the user directory.
type UserIndexer interface {
	IndexUser(ctx context.Context, u *entity.User) error
}

type AuthConfig struct {
	VerifyTTL   time.Duration
	ResetTTL    time.Duration
	SessionTTL  time.Duration
	BcryptCost  int
	FrontendURL string
}

type AuthDeps struct {
	Users    repo.UserRepository
	Tokens   repo.VerificationRepository
	Signer   TokenSigner
	Notifier Notifier
	Sessions SessionStore
	// Screener and Indexer are optional.
	Screener EmailScreener
	Indexer  UserIndexer
	Logger   logrus.FieldLogger
	Config   AuthConfig
	Now      func() time.Time
}

type AuthService struct {
	users    repo.UserRepository
	tokens   repo.VerificationRepository
	signer   TokenSigner
	notifier Notifier
	sessions SessionStore
	screener EmailScreener
	indexer  UserIndexer
	logger   logrus.FieldLogger
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(d AuthDeps) *AuthService {
	s := &AuthService{
		users:    d.Users,
		tokens:   d.Tokens,
		signer:   d.Signer,
		notifier: d.Notifier,
		sessions: d.Sessions,
		screener: d.Screener,
		indexer:  d.Indexer,
		logger:   d.Logger,
		cfg:      d.Config,
		now:      d.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	return s
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type ResetPasswordInput struct {
	Token           string
	NewPassword     string
	ConfirmPassword string
}

// LoginResult is a fresh session token and the user it belongs to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
	SessionID string
}

// Register creates an unverified user and mails a verification link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := entity.NormalizeEmail(in.Email)

	if s.screener != nil {
		ok, err := s.screener.Allowed(ctx, email)
		if err != nil {
			return nil, apperror.Internal("screen email", err)
		}
		if !ok {
			return nil, apperror.Forbidden(MsgInvalidEmail)
		}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict(MsgUserExists)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Internal("lookup user", err)
	}

	hash, err := helpers.HashPasswordCost(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}

	u := &entity.User{Name: in.Name, Email: email, Password: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict(MsgUserExists)
		}
		return nil, apperror.Internal("create user", err)
	}
	s.index(ctx, u)

	if err := s.issueVerification(ctx, u, false); err != nil {
		// the user stays registered; logging in later re-issues the link
		helpers.LogError(s.logger, "verification email not delivered after registration", err, logrus.Fields{"user_id": u.ID})
		return nil, apperror.Internal(MsgVerificationNotSent, err)
	}
	return u, nil
}

// Login issues a session token for a verified user with a matching password.
// Unverified users get a VerificationRequired error and, when their link is
// missing or stale, a fresh one by mail.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound(MsgInvalidCredentials)
		}
		return nil, apperror.Internal("lookup user", err)
	}

	if !u.IsEmailVerified {
		return nil, s.handleUnverifiedLogin(ctx, u)
	}

	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}

	sid := uuid.NewString()
	token, exp, err := s.signer.Sign(u.ID, entity.PurposeLogin.String(), sid, s.cfg.SessionTTL)
	if err != nil {
		return nil, apperror.Internal("sign session token", err)
	}

	now := s.now().UTC()
	if err := s.sessions.Save(ctx, entity.Session{ID: sid, UserID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: now}); err != nil {
		return nil, apperror.Internal("save session", err)
	}
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return nil, apperror.Internal("update last login", err)
	}
	u.LastLogin = &now

	return &LoginResult{Token: token, ExpiresAt: exp, User: u, SessionID: sid}, nil
}

func (s *AuthService) handleUnverifiedLogin(ctx context.Context, u *entity.User) error {
	existing, err := s.tokens.FindByUserAndPurpose(ctx, u.ID, entity.PurposeEmailVerification)
	switch {
	case err == nil && !existing.Expired(s.now()):
		return apperror.VerificationRequired(MsgCheckVerification)
	case err == nil:
		if err := s.tokens.Delete(ctx, existing.ID); err != nil {
			return apperror.Internal("delete stale verification", err)
		}
	case !errors.Is(err, repo.ErrNotFound):
		return apperror.Internal("lookup verification", err)
	}

	if err := s.issueVerification(ctx, u, true); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// a concurrent login already issued one
			return apperror.VerificationRequired(MsgCheckVerification)
		}
		return apperror.Internal(MsgVerificationNotSent, err)
	}
	return apperror.VerificationRequired(MsgVerificationResent)
}

// issueVerification mints, stores and mails an email-verification token.
func (s *AuthService) issueVerification(ctx context.Context, u *entity.User, returning bool) error {
	token, exp, err := s.mint(ctx, u.ID, entity.PurposeEmailVerification, s.cfg.VerifyTTL)
	if err != nil {
		return err
	}
	link := s.link("/verify-email", token)
	return s.notifier.SendVerifyEmail(ctx, mailer.Recipient{Email: u.Email, Name: u.Name}, link, exp, returning)
}

// mint signs a token and records it in the ledger. The stored expiry matches
// the signed one.
func (s *AuthService) mint(ctx context.Context, userID string, purpose entity.Purpose, ttl time.Duration) (string, time.Time, error) {
	token, exp, err := s.signer.Sign(userID, purpose.String(), "", ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	v := &entity.VerificationToken{UserID: userID, Token: token, Purpose: purpose, ExpiresAt: exp}
	if err := s.tokens.Create(ctx, v); err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

func (s *AuthService) link(path, token string) string {
	return s.cfg.FrontendURL + path + "?token=" + url.QueryEscape(token)
}

// VerifyEmail consumes an email-verification token and marks its user verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	v, err := s.verifyPurposeToken(ctx, token, entity.PurposeEmailVerification, MsgVerificationExpired)
	if err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, v.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.NotFound(MsgUserNotFound)
		}
		return apperror.Internal("lookup user", err)
	}
	if u.IsEmailVerified {
		return apperror.Validation(MsgAlreadyVerified)
	}

	if err := s.consume(ctx, v); err != nil {
		return err
	}
	if err := s.users.SetVerified(ctx, u.ID); err != nil {
		return apperror.Internal("set verified", err)
	}
	u.IsEmailVerified = true
	s.index(ctx, u)
	return nil
}

// RequestPasswordReset mails a reset link to a verified user without a pending one.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.NotFound(MsgUserNotFound)
		}
		return apperror.Internal("lookup user", err)
	}
	if !u.IsEmailVerified {
		return apperror.Validation(MsgVerifyFirst)
	}

	existing, err := s.tokens.FindByUserAndPurpose(ctx, u.ID, entity.PurposeResetPassword)
	switch {
	case err == nil && !existing.Expired(s.now()):
		return apperror.Conflict(MsgResetPending)
	case err == nil:
		if err := s.tokens.Delete(ctx, existing.ID); err != nil {
			return apperror.Internal("delete stale reset", err)
		}
	case !errors.Is(err, repo.ErrNotFound):
		return apperror.Internal("lookup reset", err)
	}

	token, exp, err := s.mint(ctx, u.ID, entity.PurposeResetPassword, s.cfg.ResetTTL)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return apperror.Conflict(MsgResetPending)
		}
		return apperror.Internal("issue reset token", err)
	}

	link := s.link("/reset-password", token)
	if err := s.notifier.SendResetPassword(ctx, mailer.Recipient{Email: u.Email, Name: u.Name}, link, exp); err != nil {
		helpers.LogError(s.logger, "password reset email not delivered", err, logrus.Fields{"user_id": u.ID})
		return apperror.Internal(MsgResetNotSent, err)
	}
	return nil
}

// ResetPassword consumes a reset token, replaces the hash and revokes the active session.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	v, err := s.verifyPurposeToken(ctx, in.Token, entity.PurposeResetPassword, MsgTokenExpired)
	if err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, v.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.Unauthorized(MsgUnauthorized)
		}
		return apperror.Internal("lookup user", err)
	}

	if in.NewPassword != in.ConfirmPassword {
		return apperror.Validation(MsgPasswordsDoNotMatch)
	}
	if n := len(in.NewPassword); n < MinPasswordLen || n > MaxPasswordLen {
		return apperror.Validation(MsgPasswordLength)
	}

	hash, err := helpers.HashPasswordCost(in.NewPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperror.Internal("hash password", err)
	}
	if err := s.consume(ctx, v); err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return apperror.Internal("update password", err)
	}
	if err := s.sessions.Delete(ctx, u.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID).Warn("revoke session after password reset failed")
	}
	return nil
}

// Logout drops the user's active session.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return apperror.Internal("delete session", err)
	}
	return nil
}

// verifyPurposeToken checks signature, signed expiry, purpose, ledger presence
// and stored expiry, in that order. Every failure is Unauthorized.
func (s *AuthService) verifyPurposeToken(ctx context.Context, token string, purpose entity.Purpose, expiredMsg string) (*entity.VerificationToken, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, helpers.ErrTokenExpired) {
			return nil, apperror.Unauthorized(expiredMsg)
		}
		return nil, apperror.Unauthorized(MsgUnauthorized)
	}
	if claims.Purpose != purpose.String() {
		return nil, apperror.Unauthorized(MsgUnauthorized)
	}

	v, err := s.tokens.FindByUserAndToken(ctx, claims.UserID, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.Unauthorized(MsgUnauthorized)
		}
		return nil, apperror.Internal("lookup verification", err)
	}
	if v.Purpose != purpose {
		return nil, apperror.Unauthorized(MsgUnauthorized)
	}
	if v.Expired(s.now()) {
		return nil, apperror.Unauthorized(expiredMsg)
	}
	return v, nil
}

// consume removes v from the ledger; losing a race with another request
// for the same token is Unauthorized.
func (s *AuthService) consume(ctx context.Context, v *entity.VerificationToken) error {
	ok, err := s.tokens.Consume(ctx, v.ID)
	if err != nil {
		return apperror.Internal("consume verification", err)
	}
	if !ok {
		return apperror.Unauthorized(MsgUnauthorized)
	}
	return nil
}

// index is best effort; directory failures never fail the request.
func (s *AuthService) index(ctx context.Context, u *entity.User) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexUser(ctx, u); err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID).Warn("user directory update failed")
	}
}
