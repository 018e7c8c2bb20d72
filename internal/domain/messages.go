package domain

// User-facing response messages.
const (
	MsgInvalidAuthType       = "Invalid auth type"
	MsgInvalidAuthMethod     = "Invalid auth method"
	MsgNotExpiredOTP         = "OTP code is not expire"
	MsgInvalidRegisterMethod = "Register method can't be username"
	MsgInvalidToken          = "The verification token is invalid"
	MsgSomethingWentWrong    = "Some thing went wrong, please retry"

	MsgInvalidData         = "The entered data is invalid"
	MsgExpiredCode         = "This OTP has been expired"
	MsgAuthorizationFailed = "Authorization failed. log in again."
	MsgIncorrectCode       = "This code is incorrect"
	MsgOtpNotFound         = "No otp code for this request has been found"

	MsgAccountExists     = "Your account has already been registered"
	MsgDuplicateEmail    = "Duplicated email address"
	MsgDuplicatePhone    = "Duplicated phone number"
	MsgDuplicateUsername = "Duplicated username"

	MsgInvalidEmail     = "Invalid email address"
	MsgInvalidPhone     = "Invalid phone number"
	MsgInvalidUsername  = "Username must be between 3 and 100 characters"
	MsgUsernameFormat   = "Username cannot be an email address or phone number"
	MsgReservedUsername = "This username is reserved"

	MsgDefault = "Process ended successfully"
	MsgSendOTP = "OTP has been sent successfully"
	MsgLogin   = "You have logged in to your account successfully"
)
