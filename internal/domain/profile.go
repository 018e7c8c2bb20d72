package domain

import "time"

// Profile column names for partial updates.
const (
	FieldNickname        = "nickname"
	FieldBio             = "bio"
	FieldGender          = "gender"
	FieldBirthday        = "birthday"
	FieldLinkedinProfile = "linkedin_profile"
	FieldProfileImage    = "profile_image"
)

type Profile struct {
	ProfileID       string     `json:"id" dynamodbav:"profile_id"`
	UserID          string     `json:"user_id" dynamodbav:"user_id"`
	Nickname        string     `json:"nickname" dynamodbav:"nickname"`
	Bio             string     `json:"bio,omitempty" dynamodbav:"bio,omitempty"`
	ProfileImage    string     `json:"profile_image,omitempty" dynamodbav:"profile_image,omitempty"`
	ProfileBgImage  string     `json:"profile_bg_image,omitempty" dynamodbav:"profile_bg_image,omitempty"`
	Gender          string     `json:"gender,omitempty" dynamodbav:"gender,omitempty"`
	Birthday        *time.Time `json:"birthday,omitempty" dynamodbav:"birthday,omitempty"`
	LinkedinProfile string     `json:"linkedin_profile,omitempty" dynamodbav:"linkedin_profile,omitempty"`
}

type UpdateProfileRequest struct {
	Nickname        *string `json:"nickname" validate:"omitempty,min=3,max=100"`
	Bio             *string `json:"bio" validate:"omitempty,min=10,max=200"`
	Gender          *string `json:"gender" validate:"omitempty,oneof=male female"`
	Birthday        *string `json:"birthday" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	LinkedinProfile *string `json:"linkedin_profile" validate:"omitempty,url"`
}

// UserProfile is the authenticated view of an account.
type UserProfile struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile,omitempty"`
}

// PublicProfile omits contact data.
type PublicProfile struct {
	Username string   `json:"username"`
	Profile  *Profile `json:"profile,omitempty"`
}

// GoogleProfile is the identity asserted by Google after sign-in.
type GoogleProfile struct {
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}
