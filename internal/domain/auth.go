package domain

// AuthMethod names the account attribute a client identifies with. It doubles
// as the OTP channel.
type AuthMethod string

const (
	MethodUsername AuthMethod = "username"
	MethodEmail    AuthMethod = "email"
	MethodPhone    AuthMethod = "phone"
)

// AuthType selects between signing in and signing up.
type AuthType string

const (
	TypeLogin    AuthType = "login"
	TypeRegister AuthType = "register"
)

// AuthRequest is the body of the user-existence endpoint. Username holds the
// identifier for whichever method was chosen.
type AuthRequest struct {
	Method   AuthMethod `json:"method" validate:"required"`
	Type     AuthType   `json:"type" validate:"required"`
	Username string     `json:"username" validate:"required,max=100"`
}

// CheckOtpRequest carries an OTP code back for verification.
type CheckOtpRequest struct {
	Code string `json:"code" validate:"required,len=5,numeric"`
}

// DevDebugInfo echoes the OTP code and token outside production so the flow
// can be driven without a real SMS/email provider.
type DevDebugInfo struct {
	Code  string `json:"code"`
	Token string `json:"token"`
}

// OtpResult is returned whenever an OTP was issued. Token must be delivered to
// the client in a signed cookie; it is not serialized.
type OtpResult struct {
	Message string        `json:"message"`
	Token   string        `json:"-"`
	Debug   *DevDebugInfo `json:"debug,omitempty"`
}

// LoginResult carries a freshly issued access token.
type LoginResult struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

// MessageResult is a plain acknowledgement.
type MessageResult struct {
	Message string `json:"message"`
}

// ChangeEmailRequest requests moving the account to a new email address.
type ChangeEmailRequest struct {
	Email string `json:"email" validate:"required"`
}

// ChangePhoneRequest requests moving the account to a new phone number.
type ChangePhoneRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// ChangeUsernameRequest replaces the account's username.
type ChangeUsernameRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
}

// GoogleTokenRequest carries an ID token obtained by a client-side Google sign-in.
type GoogleTokenRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}
