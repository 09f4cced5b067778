package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/tracing"
	"github.com/Latacz1/notatnik-treningowy/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth_test

type usersRepo interface {
	Create(ctx context.Context, email, passwordHash string, createdAt time.Time) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type sessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	UserID(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
	CreateResetToken(ctx context.Context, userID string, ttl time.Duration) (string, error)
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}

// Mailer delivers password reset tokens to the account owner.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetToken string) error
}

type Credentials struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type ServiceParams struct {
	Users            usersRepo
	Sessions         sessionStore
	Mailer           Mailer
	ResetTokenTTL    time.Duration
	IdentityPollRate time.Duration
	Now              func() time.Time
}

type Service struct {
	users            usersRepo
	sessions         sessionStore
	mailer           Mailer
	resetTokenTTL    time.Duration
	identityPollRate time.Duration
	now              func() time.Time
}

func NewService(params ServiceParams) *Service {
	s := &Service{
		users:            params.Users,
		sessions:         params.Sessions,
		mailer:           params.Mailer,
		resetTokenTTL:    params.ResetTokenTTL,
		identityPollRate: params.IdentityPollRate,
		now:              params.Now,
	}
	if s.mailer == nil {
		s.mailer = LogMailer{}
	}
	if s.resetTokenTTL <= 0 {
		s.resetTokenTTL = 30 * time.Minute
	}
	if s.identityPollRate <= 0 {
		s.identityPollRate = 5 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) SignUp(ctx context.Context, creds Credentials) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.signUp")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := validateEmail(creds.Email); err != nil {
		return nil, err
	}
	if creds.Password != creds.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := validatePassword(creds.Password); err != nil {
		return nil, err
	}

	hash, err := pkg.HashPassword(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, creds.Email, hash, s.now())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID))

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	log.Printf("new user signed up: %s", user.ID)
	return &Session{Token: token, User: user}, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.signIn")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !pkg.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	span.SetAttributes(attribute.String("user.id", user.ID))

	if pkg.NeedsRehash(user.PasswordHash) {
		s.rehashPassword(ctx, user, password)
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

// rehashPassword moves a hash made with an older cost to the current one.
// The sign in goes on even when it fails.
func (s *Service) rehashPassword(ctx context.Context, user *User, password string) {
	hash, err := pkg.HashPassword(password)
	if err != nil {
		log.Errorf("rehash password for [%s]: %s", user.ID, err)
		return
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		log.Errorf("store rehashed password for [%s]: %s", user.ID, err)
		return
	}
	user.PasswordHash = hash
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotLogged
	}
	return s.sessions.Delete(ctx, token)
}

// SendPasswordReset issues a single use reset token for the account and hands it to the mailer.
func (s *Service) SendPasswordReset(ctx context.Context, email string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.sendPasswordReset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	resetToken, err := s.sessions.CreateResetToken(ctx, user.ID, s.resetTokenTTL)
	if err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetToken); err != nil {
		return fmt.Errorf("send reset token: %w", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.resetPassword")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	userID, err := s.sessions.ConsumeResetToken(ctx, resetToken)
	if err != nil {
		return err
	}

	hash, err := pkg.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// Identity returns the user behind a session token, or ErrNotLogged.
func (s *Service) Identity(ctx context.Context, token string) (*User, error) {
	userID, err := s.sessions.UserID(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Get(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrNotLogged
	}
	return user, err
}

// UserID is Identity without the users lookup, used by the auth middleware.
func (s *Service) UserID(ctx context.Context, token string) (string, error) {
	return s.sessions.UserID(ctx, token)
}

// WatchIdentity sends the current identity and then nil once the session is gone.
// The channel is closed after the nil or when ctx is done.
// Transient lookup errors are logged and do not end the session.
func (s *Service) WatchIdentity(ctx context.Context, token string) <-chan *User {
	identityChan := make(chan *User, 1)

	go func() {
		defer close(identityChan)

		send := func(u *User) bool {
			select {
			case identityChan <- u:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var current *User
		check := func() (done bool) {
			user, err := s.Identity(ctx, token)
			switch {
			case errors.Is(err, ErrNotLogged):
				send(nil)
				return true
			case err != nil:
				if ctx.Err() == nil {
					log.Errorf("watch identity: %s", err)
				}
				return false
			}
			if current == nil || current.ID != user.ID {
				current = user
				return !send(user)
			}
			return false
		}

		if check() {
			return
		}

		ticker := time.NewTicker(s.identityPollRate)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if check() {
					return
				}
			}
		}
	}()

	return identityChan
}
