package models

import (
	"fmt"
	"net/mail"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
	MinTitleLength    = 6
	MaxTitleLength    = 200
)

// FieldErrors maps an input field name to the first constraint it violated.
type FieldErrors map[string]string

// Error renders the field errors in a stable order.
func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, f[k]))
	}
	return strings.Join(parts, "; ")
}

// Empty reports whether no field failed.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// ValidateRegistration checks a new account's fields. The confirmation is only
// compared once every entity constraint holds.
func ValidateRegistration(username, email, password, confirmPassword string) FieldErrors {
	errs := FieldErrors{}
	if n := utf8.RuneCountInString(strings.TrimSpace(username)); n < MinUsernameLength {
		errs["username"] = fmt.Sprintf("username must be longer than or equal to %d characters", MinUsernameLength)
	} else if n > MaxUsernameLength {
		errs["username"] = fmt.Sprintf("username must be shorter than or equal to %d characters", MaxUsernameLength)
	}
	if !IsEmail(email) {
		errs["email"] = "email must be an email"
	}
	if msg := checkPassword(password); msg != "" {
		errs["password"] = msg
	}
	if errs.Empty() && password != confirmPassword {
		errs["confirmPassword"] = "password not match"
	}
	return errs
}

// ValidatePassword checks a replacement password.
func ValidatePassword(password string) FieldErrors {
	errs := FieldErrors{}
	if msg := checkPassword(password); msg != "" {
		errs["password"] = msg
	}
	return errs
}

// ValidatePost checks the fields of a post before it is persisted.
func ValidatePost(title, content string, imageURL *string) FieldErrors {
	errs := FieldErrors{}
	if n := utf8.RuneCountInString(strings.TrimSpace(title)); n < MinTitleLength {
		errs["title"] = fmt.Sprintf("title must be longer than or equal to %d characters", MinTitleLength)
	} else if n > MaxTitleLength {
		errs["title"] = fmt.Sprintf("title must be shorter than or equal to %d characters", MaxTitleLength)
	}
	if strings.TrimSpace(content) == "" {
		errs["content"] = "content should not be empty"
	}
	if imageURL != nil && *imageURL != "" {
		u, err := url.Parse(*imageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs["imageURL"] = "imageURL must be an URL address"
		}
	}
	return errs
}

// IsEmail reports whether s is a bare email address.
func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

func checkPassword(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLength || !utf8.ValidString(password) {
		return fmt.Sprintf("password must be longer than or equal to %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Sprintf("password must be shorter than or equal to %d bytes", MaxPasswordBytes)
	}
	return ""
}
