package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/all-in-blog/internal/auth"
	"github.com/hongminglow/all-in-blog/internal/http/respond"
	"github.com/hongminglow/all-in-blog/internal/models"
	"github.com/hongminglow/all-in-blog/internal/models/dto"
	"github.com/hongminglow/all-in-blog/internal/service"
)

// CookieJar writes and reads the session cookie.
type CookieJar interface {
	SetCookie(w http.ResponseWriter, token string) error
	ClearCookie(w http.ResponseWriter)
	TokenFromRequest(r *http.Request) (string, bool)
}

// AuthHandler owns the account endpoints.
type AuthHandler struct {
	accounts *service.Accounts
	cookies  CookieJar
	logger   *zap.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts *service.Accounts, cookies CookieJar, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, cookies: cookies, logger: logger}
}

// Routes attaches the account endpoints to r.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/forgot-password", h.handleForgotPassword)
	r.Post("/reset-password", h.handleResetPassword)
	r.Get("/me", h.handleMe)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	res := h.accounts.Register(r.Context(), req)
	writeAuthResult(w, res, http.StatusBadRequest)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, token := h.accounts.Login(r.Context(), req)
	if token != "" {
		if err := h.cookies.SetCookie(w, token); err != nil {
			h.logger.Error("set session cookie failed", zap.Error(err))
			h.accounts.Logout(r.Context(), token)
			writeAuthResult(w, dto.Failed(models.FieldErrors{service.ServerField: service.MsgServerError}), http.StatusUnauthorized)
			return
		}
	}
	writeAuthResult(w, res, http.StatusUnauthorized)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := h.cookies.TokenFromRequest(r)
	ok := h.accounts.Logout(r.Context(), token)
	h.cookies.ClearCookie(w)
	respond.JSON(w, http.StatusOK, "logout", dto.BoolResult{OK: ok})
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	ok := h.accounts.ForgotPassword(r.Context(), req.Email)
	respond.JSON(w, http.StatusOK, "forgot password", dto.BoolResult{OK: ok})
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	res := h.accounts.ResetPassword(r.Context(), req)
	writeAuthResult(w, res, http.StatusBadRequest)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.WhoAmI(r.Context(), auth.OptionalIdentity(r.Context()))
	if err != nil {
		h.logger.Error("whoami failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, service.MsgServerError)
		return
	}
	if user == nil {
		respond.JSON(w, http.StatusOK, "anonymous", nil)
		return
	}
	respond.JSON(w, http.StatusOK, "me", user)
}

func writeAuthResult(w http.ResponseWriter, res dto.AuthResult, failure int) {
	if res.Errors.Empty() {
		msg := ""
		if res.Msg != nil {
			msg = res.Msg.Msg
		}
		respond.JSON(w, http.StatusOK, msg, res)
		return
	}
	respond.JSON(w, failureStatus(res.Errors, failure), res.Errors.Error(), res)
}

// failureStatus maps a non-empty field error set to an HTTP status.
func failureStatus(errs models.FieldErrors, failure int) int {
	if _, ok := errs[service.ServerField]; ok {
		return http.StatusInternalServerError
	}
	return failure
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}
