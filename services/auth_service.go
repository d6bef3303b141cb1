package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Gin_postgres_redis_asset_tool/apperr"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/models"
	"Gin_postgres_redis_asset_tool/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	repo     *db.Repo
	tokens   *session.TokenManager
	sessions *session.AppSessionStore
	log      *logrus.Logger
}

func NewAuthService(repo *db.Repo, tokens *session.TokenManager, sessions *session.AppSessionStore, log *logrus.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, sessions: sessions, log: log}
}

type TokenPair struct {
	AccessToken        string       `json:"accessToken"`
	RefreshToken       string       `json:"refreshToken"`
	ExpiresIn          int64        `json:"expiresIn"`
	MustChangePassword bool         `json:"mustChangePassword"`
	User               *models.User `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, apperr.Invalid("username and password are required")
	}
	u, err := s.repo.FindUserByUsername(ctx, username)
	if db.IsNotFound(err) {
		return nil, apperr.Unauthorized("invalid username or password")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid username or password")
	}
	if u.Disabled {
		return nil, apperr.Unauthorized("account is disabled")
	}
	if err := s.repo.TouchUserLogin(ctx, u.ID); err != nil {
		s.log.WithError(err).WithField("user", u.ID).Warn("touch login failed")
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	s.log.WithField("user", u.Username).Info("login")
	return pair, nil
}

// Refresh redeems a refresh token once and hands out a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperr.Invalid("refresh token is required")
	}
	as, err := s.sessions.Take(ctx, refreshToken)
	if errors.Is(err, session.ErrNoSession) {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	u, err := s.repo.FindUserByID(ctx, as.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u.Disabled {
		return nil, apperr.Unauthorized("account is disabled")
	}
	return s.issue(ctx, u)
}

// Logout revokes the access token and, when given, its refresh session.
func (s *AuthService) Logout(ctx context.Context, claims *session.Claims, refreshToken string) error {
	if claims == nil {
		return apperr.Unauthorized("unauthorized")
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if refreshToken != "" {
		if err := s.sessions.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	s.log.WithFields(logrus.Fields{"user": claims.UserID, "jti": claims.ID}).Info("logout")
	return nil
}

func (s *AuthService) issue(ctx context.Context, u *models.User) (*TokenPair, error) {
	access, _, err := s.tokens.Issue(ctx, u.ID, string(u.Type), u.LocationID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	refresh := uuid.NewString()
	if _, err := s.sessions.Create(ctx, refresh, u.ID); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &TokenPair{
		AccessToken:        access,
		RefreshToken:       refresh,
		ExpiresIn:          int64(s.tokens.TTL().Seconds()),
		MustChangePassword: u.MustChangePassword,
		User:               u,
	}, nil
}
