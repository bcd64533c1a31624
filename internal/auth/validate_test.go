package auth

import "testing"

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     FieldErrors
	}{
		{"valid", "ops@example.com", "12345678", FieldErrors{}},
		{"empty", "", "", FieldErrors{Email: MsgEmailRequired, Password: MsgPasswordRequired}},
		{"bad email", "ops-at-example", "12345678", FieldErrors{Email: MsgEmailInvalid}},
		{"display name", "Ops <ops@example.com>", "12345678", FieldErrors{Email: MsgEmailInvalid}},
		{"short password", "ops@example.com", "1234567", FieldErrors{Password: MsgPasswordTooShort}},
		{"multibyte password", "ops@example.com", "pässwörd", FieldErrors{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateLogin(tt.email, tt.password)
			if got != tt.want {
				t.Errorf("ValidateLogin(%q, %q) = %+v, want %+v", tt.email, tt.password, got, tt.want)
			}
			if got.OK() != (tt.want == FieldErrors{}) {
				t.Errorf("OK() = %v", got.OK())
			}
		})
	}
}

func TestValidateRegister(t *testing.T) {
	fe := ValidateRegister("  ", "ops@example.com", "longenough")
	if fe.Username != MsgUsernameRequired {
		t.Errorf("Username = %q, want %q", fe.Username, MsgUsernameRequired)
	}
	if fe.Error() != MsgUsernameRequired {
		t.Errorf("Error() = %q", fe.Error())
	}

	if fe := ValidateRegister("ops", "ops@example.com", "longenough"); !fe.OK() {
		t.Errorf("ValidateRegister() = %+v, want OK", fe)
	}
}
