package google

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-blog-auth/internal/config"
	"github.com/go-blog-auth/internal/domain"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// CallbackPath is where Google redirects back after consent.
const CallbackPath = "/v1/auth/google/redirect"

// OAuth drives the authorization-code flow against Google's consent screen.
type OAuth struct {
	cfg      *oauth2.Config
	verifier *Verifier
}

func NewOAuth(cfg *config.Config, verifier *Verifier) *OAuth {
	return &OAuth{
		cfg: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  strings.TrimRight(cfg.ServerLink, "/") + CallbackPath,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleoauth.Endpoint,
		},
		verifier: verifier,
	}
}

// AuthCodeURL returns the consent URL carrying state.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for tokens and returns the profile
// asserted by the ID token that comes with them.
func (o *OAuth) Exchange(ctx context.Context, code string) (*domain.GoogleProfile, error) {
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		slog.Warn("google code exchange failed", "err", err)
		return nil, fmt.Errorf("google code exchange: %w", domain.ErrAuthorizationFailed)
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return nil, fmt.Errorf("google response has no id_token: %w", domain.ErrAuthorizationFailed)
	}
	p, err := o.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return p.Profile(), nil
}

// ProfileFromIDToken verifies an ID token obtained by a client-side sign-in
// and returns the profile it asserts.
func (o *OAuth) ProfileFromIDToken(ctx context.Context, idToken string) (*domain.GoogleProfile, error) {
	p, err := o.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return p.Profile(), nil
}
