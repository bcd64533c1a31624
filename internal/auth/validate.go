package auth

import (
	"net/mail"
	"strings"
)

// MinPasswordLength is the shortest password accepted by the login and
// registration forms.
const MinPasswordLength = 8

// Form validation messages.
const (
	MsgUsernameRequired = "Username is required"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Invalid email"
	MsgPasswordRequired = "Password is required"
	MsgPasswordTooShort = "At least 8 characters required"
)

// FieldErrors holds one message per invalid form field. Empty strings mean
// the field is valid.
type FieldErrors struct {
	Username string
	Email    string
	Password string
}

// OK reports whether every field is valid.
func (fe FieldErrors) OK() bool {
	return fe.Username == "" && fe.Email == "" && fe.Password == ""
}

// Error implements the error interface so invalid forms can be returned as
// errors.
func (fe FieldErrors) Error() string {
	var msgs []string
	for _, m := range []string{fe.Username, fe.Email, fe.Password} {
		if m != "" {
			msgs = append(msgs, m)
		}
	}
	return strings.Join(msgs, "; ")
}

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) FieldErrors {
	return FieldErrors{
		Email:    validateEmail(email),
		Password: validatePassword(password),
	}
}

// ValidateRegister checks the registration form.
func ValidateRegister(username, email, password string) FieldErrors {
	fe := ValidateLogin(email, password)
	if strings.TrimSpace(username) == "" {
		fe.Username = MsgUsernameRequired
	}
	return fe
}

func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return MsgEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return MsgEmailInvalid
	}
	return ""
}

func validatePassword(password string) string {
	if password == "" {
		return MsgPasswordRequired
	}
	if len([]rune(password)) < MinPasswordLength {
		return MsgPasswordTooShort
	}
	return ""
}
