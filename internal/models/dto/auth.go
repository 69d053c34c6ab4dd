package dto

import "github.com/hongminglow/all-in-blog/internal/models"

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type Msg struct {
	Msg string `json:"msg"`
}

// AuthResult is returned by register, login and reset-password. Exactly one
// of Errors or Msg is set.
type AuthResult struct {
	Errors models.FieldErrors `json:"errors,omitempty"`
	Msg    *Msg               `json:"msg,omitempty"`
}

// Failed builds a result carrying field errors.
func Failed(errs models.FieldErrors) AuthResult {
	return AuthResult{Errors: errs}
}

// Succeeded builds a result carrying a message.
func Succeeded(msg string) AuthResult {
	return AuthResult{Msg: &Msg{Msg: msg}}
}

type BoolResult struct {
	OK bool `json:"ok"`
}
