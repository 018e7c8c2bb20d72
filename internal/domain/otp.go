package domain

import "time"

// Otp is the single OTP row a user owns. It is created lazily and overwritten
// in place on every re-issue; it is never deleted. ExpiresIn is stored as Unix
// seconds on DynamoDB so conditional writes can compare it numerically.
type Otp struct {
	OtpID     string     `json:"id" dynamodbav:"otp_id"`
	UserID    string     `json:"user_id" dynamodbav:"user_id"`
	Code      string     `json:"-" dynamodbav:"code"`
	ExpiresIn time.Time  `json:"expires_in" dynamodbav:"expires_in,unixtime"`
	Method    AuthMethod `json:"method" dynamodbav:"method"`
}

// Expired reports whether the code is no longer usable at now.
func (o *Otp) Expired(now time.Time) bool {
	return !o.ExpiresIn.After(now)
}

// OtpEvent is the queued form of an OTP delivery, consumed by the notifier.
type OtpEvent struct {
	Channel   AuthMethod `json:"channel"`
	Recipient string     `json:"recipient"`
	Code      string     `json:"code"`
	IssuedAt  time.Time  `json:"issued_at"`
}
