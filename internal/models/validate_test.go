package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		confirm  string
		want     []string
	}{
		{name: "valid", username: "alice", email: "alice@x.com", password: "secret1", confirm: "secret1"},
		{name: "short username", username: "al", email: "alice@x.com", password: "secret1", confirm: "secret1", want: []string{"username"}},
		{name: "bad email", username: "alice", email: "alice", password: "secret1", confirm: "secret1", want: []string{"email"}},
		{name: "display name email", username: "alice", email: "Alice <alice@x.com>", password: "secret1", confirm: "secret1", want: []string{"email"}},
		{name: "short password", username: "alice", email: "alice@x.com", password: "12345", confirm: "12345", want: []string{"password"}},
		{name: "mismatch", username: "alice", email: "alice@x.com", password: "secret1", confirm: "secret2", want: []string{"confirmPassword"}},
		{name: "mismatch hidden by entity errors", username: "", email: "", password: "secret1", confirm: "other", want: []string{"username", "email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRegistration(tt.username, tt.email, tt.password, tt.confirm)
			assert.Len(t, errs, len(tt.want))
			for _, field := range tt.want {
				assert.Contains(t, errs, field)
			}
		})
	}
}

func TestValidateRegistrationMessages(t *testing.T) {
	errs := ValidateRegistration("alice", "alice@x.com", "secret1", "nope")
	assert.Equal(t, "password not match", errs["confirmPassword"])
	assert.Equal(t, "confirmPassword: password not match", errs.Error())
}

func TestValidatePost(t *testing.T) {
	bad := "ftp://images"
	good := "https://cdn.example.com/a.png"
	empty := ""

	assert.True(t, ValidatePost("hello world", "a post body", nil).Empty())
	assert.True(t, ValidatePost("hello world", "a post body", &good).Empty())
	assert.True(t, ValidatePost("hello world", "a post body", &empty).Empty())

	errs := ValidatePost("hey", "   ", &bad)
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "content")
	assert.Contains(t, errs, "imageURL")
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("newpass1").Empty())
	assert.Contains(t, ValidatePassword("x"), "password")

	assert.True(t, ValidatePassword(strings.Repeat("a", MaxPasswordBytes)).Empty())
	assert.Equal(t, "password must be shorter than or equal to 72 bytes", ValidatePassword(strings.Repeat("a", MaxPasswordBytes+1))["password"])
	// 37 two-byte runes: short in characters, over the limit in bytes.
	assert.Contains(t, ValidatePassword(strings.Repeat("é", 37)), "password")

	long := strings.Repeat("b", MaxPasswordBytes+1)
	assert.Contains(t, ValidateRegistration("alice", "alice@x.com", long, long), "password")
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("admin")
	assert.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("player")
	assert.Error(t, err)
}
