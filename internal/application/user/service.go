// Package user serves the account's own profile, its username and the public
// profile lookup.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-blog-auth/internal/domain"
	"github.com/go-blog-auth/internal/pkg/id"
	"github.com/go-blog-auth/internal/pkg/validate"
)

type Service interface {
	GetProfile(ctx context.Context, u *domain.User) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, u *domain.User, req domain.UpdateProfileRequest) (*domain.Profile, error)
	ChangeUsername(ctx context.Context, u *domain.User, username string) (*domain.MessageResult, error)
	GetPublicProfile(ctx context.Context, username string) (*domain.PublicProfile, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	PromoteIdentifier(ctx context.Context, userID string, m domain.AuthMethod, value string) error
}

type profileStore interface {
	Create(ctx context.Context, p *domain.Profile) error
	GetByUser(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, profileID string, updates map[string]interface{}) error
}

type service struct {
	repo        userStore
	profileRepo profileStore
	phoneRegion string
	reserved    map[string]struct{}
}

type ServiceDeps struct {
	UserRepo    userStore
	ProfileRepo profileStore
	// PhoneRegion is the region phone identifiers are read in.
	PhoneRegion string
	// ReservedUsernames cannot be taken, e.g. path segments that would shadow
	// the public profile route.
	ReservedUsernames []string
}

func NewService(deps ServiceDeps) Service {
	reserved := make(map[string]struct{}, len(deps.ReservedUsernames))
	for _, name := range deps.ReservedUsernames {
		reserved[strings.ToLower(name)] = struct{}{}
	}
	return &service{
		repo:        deps.UserRepo,
		profileRepo: deps.ProfileRepo,
		phoneRegion: deps.PhoneRegion,
		reserved:    reserved,
	}
}

func (s *service) GetProfile(ctx context.Context, u *domain.User) (*domain.UserProfile, error) {
	p, err := s.profile(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	return &domain.UserProfile{User: u, Profile: p}, nil
}

// profile returns nil without error when the user has no profile yet.
func (s *service) profile(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.profileRepo.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// UpdateProfile creates the profile on first use and links it to the user;
// afterwards only the supplied fields are written.
func (s *service) UpdateProfile(ctx context.Context, u *domain.User, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	updates, err := profileUpdates(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.profile(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		p := &domain.Profile{ProfileID: id.New(), UserID: u.UserID, Nickname: u.Username}
		applyProfile(p, updates)
		if err := s.profileRepo.Create(ctx, p); err != nil {
			return nil, err
		}
		if err := s.repo.Update(ctx, u.UserID, map[string]interface{}{domain.FieldProfileID: p.ProfileID}); err != nil {
			return nil, fmt.Errorf("link profile: %w", err)
		}
		slog.Info("profile created", "user_id", u.UserID, "profile_id", p.ProfileID)
		return p, nil
	}

	if len(updates) == 0 {
		return existing, nil
	}
	if err := s.profileRepo.Update(ctx, existing.ProfileID, updates); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByUser(ctx, u.UserID)
}

func profileUpdates(req domain.UpdateProfileRequest) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	set := func(field string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			updates[field] = strings.TrimSpace(*v)
		}
	}
	set(domain.FieldNickname, req.Nickname)
	set(domain.FieldBio, req.Bio)
	set(domain.FieldLinkedinProfile, req.LinkedinProfile)

	if req.Gender != nil && *req.Gender != "" {
		switch *req.Gender {
		case "male", "female":
			updates[domain.FieldGender] = *req.Gender
		default:
			return nil, fmt.Errorf("gender must be male or female: %w", domain.ErrBadRequest)
		}
	}
	if req.Birthday != nil && *req.Birthday != "" {
		t, err := time.Parse(time.RFC3339, *req.Birthday)
		if err != nil {
			return nil, fmt.Errorf("birthday must be in RFC3339 format: %w", domain.ErrBadRequest)
		}
		updates[domain.FieldBirthday] = t.UTC()
	}
	return updates, nil
}

func applyProfile(p *domain.Profile, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case domain.FieldNickname:
			p.Nickname = v.(string)
		case domain.FieldBio:
			p.Bio = v.(string)
		case domain.FieldGender:
			p.Gender = v.(string)
		case domain.FieldLinkedinProfile:
			p.LinkedinProfile = v.(string)
		case domain.FieldBirthday:
			t := v.(time.Time)
			p.Birthday = &t
		}
	}
}

// ChangeUsername moves the account to username. Asking for the current
// username succeeds without writing.
func (s *service) ChangeUsername(ctx context.Context, u *domain.User, username string) (*domain.MessageResult, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < 3 || n > 100 {
		return nil, domain.ErrInvalidUsername
	}
	// Login matches usernames, emails and phones alike, so a username must
	// never read as either of the other two.
	if validate.Email(username) || validate.MobilePhone(username, s.phoneRegion) {
		return nil, domain.ErrUsernameFormat
	}
	if _, ok := s.reserved[strings.ToLower(username)]; ok {
		return nil, domain.ErrReservedUsername
	}

	owner, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil && owner.UserID != u.UserID:
		return nil, domain.ErrDuplicateUsername
	case err == nil:
		return &domain.MessageResult{Message: domain.MsgDefault}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if err := s.repo.PromoteIdentifier(ctx, u.UserID, domain.MethodUsername, username); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, err
	}
	return &domain.MessageResult{Message: domain.MsgDefault}, nil
}

func (s *service) GetPublicProfile(ctx context.Context, username string) (*domain.PublicProfile, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	p, err := s.profile(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	return &domain.PublicProfile{Username: u.Username, Profile: p}, nil
}
