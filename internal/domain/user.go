package domain

import "time"

// Column / attribute names shared by the storage backends for partial updates.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldNewEmail    = "new_email"
	FieldNewPhone    = "new_phone"
	FieldVerifyEmail = "verify_email"
	FieldVerifyPhone = "verify_phone"
	FieldOtpID       = "otp_id"
	FieldProfileID   = "profile_id"
)

// User is the account identity. Username is always set; Email and Phone are
// optional but unique when present. NewEmail/NewPhone stage a pending change
// until it is confirmed with an OTP.
type User struct {
	UserID      string    `json:"id" dynamodbav:"user_id"`
	Username    string    `json:"username" dynamodbav:"username"`
	Email       string    `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Phone       string    `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	NewEmail    string    `json:"-" dynamodbav:"new_email,omitempty"`
	NewPhone    string    `json:"-" dynamodbav:"new_phone,omitempty"`
	VerifyEmail bool      `json:"verify_email" dynamodbav:"verify_email"`
	VerifyPhone bool      `json:"verify_phone" dynamodbav:"verify_phone"`
	Password    string    `json:"-" dynamodbav:"password,omitempty"` // reserved, not used by the OTP flow
	OtpID       string    `json:"-" dynamodbav:"otp_id,omitempty"`
	ProfileID   string    `json:"profile_id,omitempty" dynamodbav:"profile_id,omitempty"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Identifier returns the value of the column a method refers to.
func (u *User) Identifier(m AuthMethod) string {
	switch m {
	case MethodEmail:
		return u.Email
	case MethodPhone:
		return u.Phone
	case MethodUsername:
		return u.Username
	}
	return ""
}

// PromoteFields returns the column updates that make value the user's own
// identifier for m. Email and phone are marked verified and their staging
// field cleared (nil means clear). Returns nil for an unknown method.
func PromoteFields(m AuthMethod, value string) map[string]interface{} {
	switch m {
	case MethodUsername:
		return map[string]interface{}{FieldUsername: value}
	case MethodEmail:
		return map[string]interface{}{
			FieldEmail:       value,
			FieldVerifyEmail: true,
			FieldNewEmail:    nil,
		}
	case MethodPhone:
		return map[string]interface{}{
			FieldPhone:       value,
			FieldVerifyPhone: true,
			FieldNewPhone:    nil,
		}
	}
	return nil
}
