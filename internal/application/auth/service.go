// Package auth implements OTP login and registration, access-token
// validation, Google sign-in and the email/phone change flows.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/go-blog-auth/internal/domain"
	jwtinfra "github.com/go-blog-auth/internal/infrastructure/jwt"
	"github.com/go-blog-auth/internal/pkg/id"
)

type Service interface {
	UserExistence(ctx context.Context, req domain.AuthRequest) (*domain.OtpResult, error)
	CheckOtp(ctx context.Context, otpToken, code string) (*domain.LoginResult, error)
	ValidateAccessToken(ctx context.Context, token string) (*domain.User, error)
	GoogleAuth(ctx context.Context, p *domain.GoogleProfile) (*domain.LoginResult, error)
	ChangeEmail(ctx context.Context, u *domain.User, email string) (*domain.OtpResult, error)
	VerifyEmail(ctx context.Context, u *domain.User, changeToken, code string) (*domain.MessageResult, error)
	ChangePhone(ctx context.Context, u *domain.User, phone string) (*domain.OtpResult, error)
	VerifyPhone(ctx context.Context, u *domain.User, changeToken, code string) (*domain.MessageResult, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	PromoteIdentifier(ctx context.Context, userID string, m domain.AuthMethod, value string) error
}

type profileStore interface {
	Create(ctx context.Context, p *domain.Profile) error
}

type otpIssuer interface {
	Issue(ctx context.Context, userID string, method domain.AuthMethod) (*domain.Otp, error)
	Verify(ctx context.Context, userID, code string) (*domain.Otp, error)
}

type credentialResolver interface {
	Validate(method domain.AuthMethod, identifier string) (string, error)
	FindUser(ctx context.Context, identifier string) (*domain.User, error)
}

type tokenCodec interface {
	Sign(purpose jwtinfra.Purpose, claims jwtinfra.Claims) (string, error)
	Verify(purpose jwtinfra.Purpose, token string) (*jwtinfra.Claims, error)
}

type dispatcher interface {
	Send(ctx context.Context, method domain.AuthMethod, recipient, code string) error
}

type service struct {
	users           userStore
	profiles        profileStore
	otps            otpIssuer
	creds           credentialResolver
	tokens          tokenCodec
	dispatcher      dispatcher
	production      bool
	dispatchTimeout time.Duration
	now             func() time.Time
}

type ServiceDeps struct {
	UserRepo    userStore
	ProfileRepo profileStore
	Otps        otpIssuer
	Credentials credentialResolver
	Tokens      tokenCodec
	Dispatcher  dispatcher
	// Production dispatches codes for real; otherwise they are echoed in
	// the response and nothing is sent.
	Production      bool
	DispatchTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:           deps.UserRepo,
		profiles:        deps.ProfileRepo,
		otps:            deps.Otps,
		creds:           deps.Credentials,
		tokens:          deps.Tokens,
		dispatcher:      deps.Dispatcher,
		production:      deps.Production,
		dispatchTimeout: deps.DispatchTimeout,
		now:             time.Now,
	}
}

// UserExistence starts a login or a registration and leaves the caller with
// an OTP pending.
func (s *service) UserExistence(ctx context.Context, req domain.AuthRequest) (*domain.OtpResult, error) {
	switch req.Type {
	case domain.TypeLogin:
		return s.login(ctx, req.Method, req.Username)
	case domain.TypeRegister:
		return s.register(ctx, req.Method, req.Username)
	default:
		return nil, domain.ErrInvalidAuthType
	}
}

func (s *service) login(ctx context.Context, method domain.AuthMethod, identifier string) (*domain.OtpResult, error) {
	ident, err := s.creds.Validate(method, identifier)
	if err != nil {
		return nil, err
	}
	u, err := s.creds.FindUser(ctx, ident)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidData
		}
		return nil, err
	}
	return s.startOtp(ctx, u, method)
}

func (s *service) register(ctx context.Context, method domain.AuthMethod, identifier string) (*domain.OtpResult, error) {
	if method == domain.MethodUsername {
		return nil, domain.ErrInvalidRegisterMethod
	}
	ident, err := s.creds.Validate(method, identifier)
	if err != nil {
		return nil, err
	}
	if _, err := s.creds.FindUser(ctx, ident); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	u := &domain.User{
		UserID:    id.New(),
		Username:  placeholderUsername(now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if method == domain.MethodEmail {
		u.Email = ident
	} else {
		u.Phone = ident
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrAccountExists
		}
		return nil, err
	}
	slog.Info("user registered", "user_id", u.UserID, "method", method)
	return s.startOtp(ctx, u, method)
}

// startOtp issues the OTP and the OTP token that carries the user id to
// CheckOtp.
func (s *service) startOtp(ctx context.Context, u *domain.User, method domain.AuthMethod) (*domain.OtpResult, error) {
	o, err := s.otps.Issue(ctx, u.UserID, method)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Sign(jwtinfra.PurposeOTP, jwtinfra.Claims{UserID: u.UserID})
	if err != nil {
		return nil, err
	}
	res := &domain.OtpResult{Message: domain.MsgSendOTP, Token: token}
	channel, recipient := deliveryTarget(u, method)
	return s.deliver(ctx, res, u.UserID, channel, recipient, o.Code)
}

// deliveryTarget picks where a login code goes. Usernames are not a channel,
// so a username login falls back to the email, then the phone on file.
func deliveryTarget(u *domain.User, method domain.AuthMethod) (domain.AuthMethod, string) {
	if method != domain.MethodUsername {
		if v := u.Identifier(method); v != "" {
			return method, v
		}
	}
	if u.Email != "" {
		return domain.MethodEmail, u.Email
	}
	if u.Phone != "" {
		return domain.MethodPhone, u.Phone
	}
	return method, ""
}

// deliver sends code to recipient in production; elsewhere the code and token
// are attached to res instead. A failed send still returns res alongside the
// error so the caller can set the cookie, since the OTP stays valid.
func (s *service) deliver(ctx context.Context, res *domain.OtpResult, userID string, channel domain.AuthMethod, recipient, code string) (*domain.OtpResult, error) {
	if !s.production {
		res.Debug = &domain.DevDebugInfo{Code: code, Token: res.Token}
		return res, nil
	}
	if recipient == "" {
		slog.Warn("no delivery channel for otp", "user_id", userID, "method", channel)
		return res, nil
	}

	dctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()
	if err := s.dispatcher.Send(dctx, channel, recipient, code); err != nil {
		slog.Error("otp dispatch failed", "user_id", userID, "method", channel, "err", err)
		var de *domain.DispatchError
		if !errors.As(err, &de) {
			de = &domain.DispatchError{Provider: string(channel), Err: err}
		}
		return res, de
	}
	return res, nil
}

// CheckOtp exchanges a correct code for an access token. otpToken comes from
// the signed OTP cookie.
func (s *service) CheckOtp(ctx context.Context, otpToken, code string) (*domain.LoginResult, error) {
	if otpToken == "" {
		return nil, domain.ErrExpiredCode
	}
	claims, err := s.tokens.Verify(jwtinfra.PurposeOTP, otpToken)
	if err != nil {
		return nil, err
	}
	o, err := s.otps.Verify(ctx, claims.UserID, code)
	if err != nil {
		if errors.Is(err, domain.ErrOtpNotFound) || errors.Is(err, domain.ErrExpiredCode) {
			return nil, domain.ErrAuthorizationFailed
		}
		return nil, err
	}
	access, err := s.tokens.Sign(jwtinfra.PurposeAccess, jwtinfra.Claims{UserID: claims.UserID})
	if err != nil {
		return nil, err
	}

	var flag string
	switch o.Method {
	case domain.MethodEmail:
		flag = domain.FieldVerifyEmail
	case domain.MethodPhone:
		flag = domain.FieldVerifyPhone
	}
	if flag != "" {
		if err := s.users.Update(ctx, claims.UserID, map[string]interface{}{flag: true}); err != nil {
			return nil, fmt.Errorf("mark %s verified: %w", o.Method, err)
		}
	}
	return &domain.LoginResult{Message: domain.MsgLogin, AccessToken: access}, nil
}

// ValidateAccessToken resolves a bearer token to the current user row.
func (s *service) ValidateAccessToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(jwtinfra.PurposeAccess, token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAuthorizationFailed
		}
		return nil, err
	}
	return u, nil
}

// GoogleAuth signs in the owner of a Google-asserted email, creating the
// account and its profile on first use. No OTP round-trip is involved.
func (s *service) GoogleAuth(ctx context.Context, p *domain.GoogleProfile) (*domain.LoginResult, error) {
	if p == nil || p.Email == "" {
		return nil, domain.ErrAuthorizationFailed
	}
	email, err := s.creds.Validate(domain.MethodEmail, p.Email)
	if err != nil {
		return nil, domain.ErrAuthorizationFailed
	}
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		if u, err = s.createGoogleUser(ctx, p, email); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	access, err := s.tokens.Sign(jwtinfra.PurposeAccess, jwtinfra.Claims{UserID: u.UserID})
	if err != nil {
		return nil, err
	}
	return &domain.LoginResult{Message: domain.MsgLogin, AccessToken: access}, nil
}

func (s *service) createGoogleUser(ctx context.Context, p *domain.GoogleProfile, email string) (*domain.User, error) {
	now := s.now().UTC()
	u := &domain.User{
		UserID:      id.New(),
		Username:    placeholderUsername(now),
		Email:       email,
		VerifyEmail: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrAccountExists
		}
		return nil, err
	}

	profile := &domain.Profile{
		ProfileID:    id.New(),
		UserID:       u.UserID,
		Nickname:     strings.TrimSpace(p.FirstName + " " + p.LastName),
		ProfileImage: p.ProfileImageURL,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create google profile: %w", err)
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{domain.FieldProfileID: profile.ProfileID}); err != nil {
		return nil, fmt.Errorf("link google profile: %w", err)
	}
	u.ProfileID = profile.ProfileID
	slog.Info("user registered", "user_id", u.UserID, "method", "google")
	return u, nil
}

func (s *service) ChangeEmail(ctx context.Context, u *domain.User, email string) (*domain.OtpResult, error) {
	return s.changeIdentifier(ctx, u, domain.MethodEmail, email)
}

func (s *service) ChangePhone(ctx context.Context, u *domain.User, phone string) (*domain.OtpResult, error) {
	return s.changeIdentifier(ctx, u, domain.MethodPhone, phone)
}

func (s *service) VerifyEmail(ctx context.Context, u *domain.User, changeToken, code string) (*domain.MessageResult, error) {
	return s.verifyIdentifier(ctx, u, domain.MethodEmail, changeToken, code)
}

func (s *service) VerifyPhone(ctx context.Context, u *domain.User, changeToken, code string) (*domain.MessageResult, error) {
	return s.verifyIdentifier(ctx, u, domain.MethodPhone, changeToken, code)
}

// changeFlow holds what differs between the email and phone change flows.
type changeFlow struct {
	lookup    func(ctx context.Context, value string) (*domain.User, error)
	staging   string
	pending   func(u *domain.User) string
	purpose   jwtinfra.Purpose
	claims    func(value string) jwtinfra.Claims
	claimed   func(c *jwtinfra.Claims) string
	duplicate error
}

func (s *service) flow(m domain.AuthMethod) changeFlow {
	if m == domain.MethodEmail {
		return changeFlow{
			lookup:    s.users.GetByEmail,
			staging:   domain.FieldNewEmail,
			pending:   func(u *domain.User) string { return u.NewEmail },
			purpose:   jwtinfra.PurposeEmail,
			claims:    func(v string) jwtinfra.Claims { return jwtinfra.Claims{Email: v} },
			claimed:   func(c *jwtinfra.Claims) string { return c.Email },
			duplicate: domain.ErrDuplicateEmail,
		}
	}
	return changeFlow{
		lookup:    s.users.GetByPhone,
		staging:   domain.FieldNewPhone,
		pending:   func(u *domain.User) string { return u.NewPhone },
		purpose:   jwtinfra.PurposePhone,
		claims:    func(v string) jwtinfra.Claims { return jwtinfra.Claims{Phone: v} },
		claimed:   func(c *jwtinfra.Claims) string { return c.Phone },
		duplicate: domain.ErrDuplicatePhone,
	}
}

// changeIdentifier sends an OTP to value and stages it as the user's pending
// email or phone. Requesting the value the user already has is a no-op.
func (s *service) changeIdentifier(ctx context.Context, u *domain.User, m domain.AuthMethod, value string) (*domain.OtpResult, error) {
	value, err := s.creds.Validate(m, value)
	if err != nil {
		return nil, err
	}
	f := s.flow(m)

	owner, err := f.lookup(ctx, value)
	switch {
	case err == nil && owner.UserID != u.UserID:
		return nil, f.duplicate
	case err == nil:
		return &domain.OtpResult{Message: domain.MsgDefault}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	// A refused Issue must leave any pending change untouched.
	o, err := s.otps.Issue(ctx, u.UserID, m)
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{f.staging: value}); err != nil {
		return nil, err
	}
	token, err := s.tokens.Sign(f.purpose, f.claims(value))
	if err != nil {
		return nil, err
	}
	res := &domain.OtpResult{Message: domain.MsgSendOTP, Token: token}
	return s.deliver(ctx, res, u.UserID, m, value, o.Code)
}

// verifyIdentifier promotes the pending email or phone once the change token
// and the OTP sent to the new value both check out.
func (s *service) verifyIdentifier(ctx context.Context, u *domain.User, m domain.AuthMethod, changeToken, code string) (*domain.MessageResult, error) {
	if changeToken == "" {
		return nil, domain.ErrChangeTokenMissing
	}
	f := s.flow(m)
	claims, err := s.tokens.Verify(f.purpose, changeToken)
	if err != nil {
		return nil, err
	}
	value := f.claimed(claims)
	if value != f.pending(u) {
		return nil, domain.ErrSomethingWentWrong
	}

	o, err := s.otps.Verify(ctx, u.UserID, code)
	if err != nil {
		return nil, changeCodeError(err)
	}
	if o.Method != m {
		return nil, domain.ErrSomethingWentWrong
	}
	if err := s.users.PromoteIdentifier(ctx, u.UserID, m, value); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, f.duplicate
		}
		return nil, err
	}
	return &domain.MessageResult{Message: domain.MsgDefault}, nil
}

// changeCodeError reports OTP failures of the change flow as bad requests; the
// caller's session is still valid.
func changeCodeError(err error) error {
	switch {
	case errors.Is(err, domain.ErrIncorrectCode):
		return domain.ErrChangeIncorrectCode
	case errors.Is(err, domain.ErrExpiredCode):
		return domain.ErrChangeExpiredCode
	case errors.Is(err, domain.ErrOtpNotFound):
		return domain.ErrChangeOtpNotFound
	}
	return err
}

// placeholderUsername returns "m_" followed by the Unix milliseconds and three
// random digits, so two sign-ups in the same millisecond do not collide.
func placeholderUsername(now time.Time) string {
	suffix := int64(0)
	if n, err := rand.Int(rand.Reader, big.NewInt(1000)); err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("m_%d%03d", now.UnixMilli(), suffix)
}
