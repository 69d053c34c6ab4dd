// Package service implements the account and post operations behind the HTTP
// handlers. Operations return structured results; field errors are values,
// not Go errors.
package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/all-in-blog/internal/auth"
	"github.com/hongminglow/all-in-blog/internal/mail"
	"github.com/hongminglow/all-in-blog/internal/models"
	"github.com/hongminglow/all-in-blog/internal/models/dto"
	"github.com/hongminglow/all-in-blog/internal/storage"
)

const (
	MsgRegistered      = "user register"
	MsgLoggedIn        = "login successful"
	MsgPasswordChanged = "password change"

	MsgEmailUnknown     = "email address is invalid"
	MsgPasswordMismatch = "password doesn't match"
	MsgTokenExpired     = "token expired"
	MsgUserGone         = "user not longer exist"
	MsgServerError      = "internal server error"

	// ServerField carries unexpected failures in a result.
	ServerField = "server"

	ResetSubject = "Reset password"
)

// Sessions issues and destroys login sessions.
type Sessions interface {
	Create(ctx context.Context, id auth.Identity) (string, error)
	Destroy(ctx context.Context, token string) (bool, error)
}

// ResetTokens issues and redeems single-use password reset tokens.
type ResetTokens interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Redeem(ctx context.Context, token string) (int64, bool, error)
}

// Hasher turns plaintext passwords into stored digests and checks them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// EventRecorder counts account operations by outcome.
type EventRecorder interface {
	AuthEvent(event, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) AuthEvent(string, string) {}

// AccountsDeps are the collaborators of Accounts. Events and Logger are optional.
type AccountsDeps struct {
	Users    storage.UserStore
	Sessions Sessions
	Resets   ResetTokens
	Hasher   Hasher
	Mailer   mail.Sender
	Events   EventRecorder
	Logger   *zap.Logger
}

// AccountsConfig carries the settings Accounts reads from configuration.
type AccountsConfig struct {
	// ClientURL is the frontend origin used to build reset links.
	ClientURL   string
	DefaultRole models.Role
}

// Accounts implements registration, login and password recovery.
type Accounts struct {
	users    storage.UserStore
	sessions Sessions
	resets   ResetTokens
	hasher   Hasher
	mailer   mail.Sender
	events   EventRecorder
	logger   *zap.Logger
	cfg      AccountsConfig
}

// NewAccounts wires an Accounts service. Missing Events and Logger fall back to no-ops.
func NewAccounts(deps AccountsDeps, cfg AccountsConfig) *Accounts {
	if deps.Events == nil {
		deps.Events = nopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = models.RoleUser
	}
	return &Accounts{
		users:    deps.Users,
		sessions: deps.Sessions,
		resets:   deps.Resets,
		hasher:   deps.Hasher,
		mailer:   deps.Mailer,
		events:   deps.Events,
		logger:   deps.Logger.Named("accounts"),
		cfg:      cfg,
	}
}

// Register validates and creates a new user with the configured default role.
func (a *Accounts) Register(ctx context.Context, req dto.RegisterRequest) dto.AuthResult {
	if errs := models.ValidateRegistration(req.Username, req.Email, req.Password, req.ConfirmPassword); !errs.Empty() {
		a.events.AuthEvent("register", "invalid")
		return dto.Failed(errs)
	}

	digest, err := a.hasher.Hash(req.Password)
	if err != nil {
		return a.serverError("register", "hash password", err)
	}

	_, err = a.users.CreateUser(ctx, models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		Role:         a.cfg.DefaultRole,
		PasswordHash: digest,
	})
	if err != nil {
		var conflict *storage.UniqueViolation
		if errors.As(err, &conflict) {
			a.events.AuthEvent("register", "conflict")
			return dto.Failed(models.FieldErrors{conflict.Field: conflict.Field + " already exist"})
		}
		return a.serverError("register", "create user", err)
	}

	a.events.AuthEvent("register", "success")
	return dto.Succeeded(MsgRegistered)
}

// Login checks credentials and opens a session. The returned token is empty
// unless the result carries no errors.
func (a *Accounts) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResult, string) {
	user, err := a.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.events.AuthEvent("login", "failure")
			return dto.Failed(models.FieldErrors{"email": MsgEmailUnknown}), ""
		}
		return a.serverError("login", "find user", err), ""
	}
	if !a.hasher.Verify(req.Password, user.PasswordHash) {
		a.events.AuthEvent("login", "failure")
		return dto.Failed(models.FieldErrors{"password": MsgPasswordMismatch}), ""
	}

	token, err := a.sessions.Create(ctx, auth.Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return a.serverError("login", "create session", err), ""
	}

	a.events.AuthEvent("login", "success")
	return dto.Succeeded(MsgLoggedIn), token
}

// Logout destroys the session behind token. It reports false when there was
// no session to destroy.
func (a *Accounts) Logout(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	existed, err := a.sessions.Destroy(ctx, token)
	if err != nil {
		a.logger.Error("destroy session failed", zap.Error(err))
		a.events.AuthEvent("logout", "error")
		return false
	}
	a.events.AuthEvent("logout", outcome(existed))
	return existed
}

// ForgotPassword emails a reset link to the owner of email. Unknown accounts,
// token failures and delivery failures all report false.
func (a *Accounts) ForgotPassword(ctx context.Context, email string) bool {
	user, err := a.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger.Error("find user for reset failed", zap.Error(err))
		}
		a.events.AuthEvent("forgot_password", "failure")
		return false
	}

	token, err := a.resets.Issue(ctx, user.ID)
	if err != nil {
		a.logger.Error("issue reset token failed", zap.Int64("user_id", user.ID), zap.Error(err))
		a.events.AuthEvent("forgot_password", "error")
		return false
	}

	if err := a.mailer.Send(ctx, user.Email, a.resetBody(token), ResetSubject); err != nil {
		a.logger.Error("send reset email failed", zap.Int64("user_id", user.ID), zap.Error(err))
		a.events.AuthEvent("forgot_password", "error")
		return false
	}

	a.events.AuthEvent("forgot_password", "success")
	return true
}

// ResetPassword redeems token and replaces the owner's password. The new
// digest is computed before the token is touched; the token is consumed before
// the credential is written, so a failed write still spends it.
func (a *Accounts) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) dto.AuthResult {
	if errs := models.ValidatePassword(req.Password); !errs.Empty() {
		a.events.AuthEvent("reset_password", "invalid")
		return dto.Failed(errs)
	}

	digest, err := a.hasher.Hash(req.Password)
	if err != nil {
		return a.serverError("reset_password", "hash password", err)
	}

	userID, ok, err := a.resets.Redeem(ctx, req.Token)
	if err != nil {
		return a.serverError("reset_password", "redeem token", err)
	}
	if !ok {
		a.events.AuthEvent("reset_password", "failure")
		return dto.Failed(models.FieldErrors{"password": MsgTokenExpired})
	}

	if _, err := a.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.events.AuthEvent("reset_password", "failure")
			return dto.Failed(models.FieldErrors{"password": MsgUserGone})
		}
		return a.serverError("reset_password", "find user", err)
	}

	if err := a.users.UpdatePassword(ctx, userID, digest); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.events.AuthEvent("reset_password", "failure")
			return dto.Failed(models.FieldErrors{"password": MsgUserGone})
		}
		return a.serverError("reset_password", "update password", err)
	}

	a.events.AuthEvent("reset_password", "success")
	return dto.Succeeded(MsgPasswordChanged)
}

// WhoAmI returns the user behind id, or nil when there is no session or the
// user no longer exists.
func (a *Accounts) WhoAmI(ctx context.Context, id *auth.Identity) (*models.User, error) {
	if id == nil {
		return nil, nil
	}
	user, err := a.users.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user %d: %w", id.UserID, err)
	}
	return &user, nil
}

// ResetLink is the frontend URL a reset token is redeemed at.
func (a *Accounts) ResetLink(token string) string {
	return strings.TrimRight(a.cfg.ClientURL, "/") + "/forget-password/" + token
}

func (a *Accounts) resetBody(token string) string {
	return fmt.Sprintf(`<a href="%s">reset password</a>`, html.EscapeString(a.ResetLink(token)))
}

func (a *Accounts) serverError(event, op string, err error) dto.AuthResult {
	a.logger.Error(op+" failed", zap.String("event", event), zap.Error(err))
	a.events.AuthEvent(event, "error")
	return dto.Failed(models.FieldErrors{ServerField: MsgServerError})
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
