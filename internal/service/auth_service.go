package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/rollbook/rollbook-api/internal/models"
	"github.com/rollbook/rollbook-api/pkg/config"
	apperrors "github.com/rollbook/rollbook-api/pkg/errors"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type userRepository interface {
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// AuthService handles Google sign-in and the JWT session lifecycle.
type AuthService struct {
	users   userRepository
	oauth   *oauth2.Config
	session config.SessionConfig
	logger  *zap.Logger
}

// NewAuthService wires an AuthService.
func NewAuthService(users userRepository, oauthCfg config.OAuthConfig, session config.SessionConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users: users,
		oauth: &oauth2.Config{
			ClientID:     oauthCfg.ClientID,
			ClientSecret: oauthCfg.ClientSecret,
			RedirectURL:  oauthCfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		session: session,
		logger:  logger,
	}
}

// GenerateState produces an opaque anti-forgery token for the OAuth redirect.
func (s *AuthService) GenerateState() string {
	return uuid.NewString()
}

// LoginURL builds the Google consent page URL for the given state.
func (s *AuthService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

type googleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleCallback exchanges the authorization code, fetches the Google
// profile, upserts the local user and issues a session token.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (string, *models.User, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", nil, apperrors.Wrap(err, apperrors.ErrUnauthorized.Code, apperrors.ErrUnauthorized.Status, "code exchange failed")
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return "", nil, err
	}

	user, err := s.upsertUser(ctx, profile)
	if err != nil {
		return "", nil, err
	}

	session, err := s.IssueSession(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("user signed in", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return session, user, nil
}

func (s *AuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	client := s.oauth.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUnauthorized.Code, apperrors.ErrUnauthorized.Status, "profile fetch failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Clone(apperrors.ErrUnauthorized, fmt.Sprintf("profile fetch returned %d", resp.StatusCode))
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUnauthorized.Code, apperrors.ErrUnauthorized.Status, "profile decode failed")
	}
	if profile.ID == "" {
		return nil, apperrors.Clone(apperrors.ErrUnauthorized, "profile missing subject id")
	}
	return &profile, nil
}

func (s *AuthService) upsertUser(ctx context.Context, profile *googleProfile) (*models.User, error) {
	now := time.Now().UTC()

	user, err := s.users.FindByGoogleID(ctx, profile.ID)
	if err == nil {
		if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return nil, err
		}
		user.LastLogin = &now
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	user = &models.User{
		GoogleID:  profile.ID,
		Name:      profile.Name,
		Email:     profile.Email,
		CreatedAt: now,
		LastLogin: &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// IssueSession signs a JWT for the user.
func (s *AuthService) IssueSession(user *models.User) (string, error) {
	now := time.Now()
	claims := models.SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.session.Expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.session.Secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.session.Secret), nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUnauthorized.Code, apperrors.ErrUnauthorized.Status, "invalid session token")
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Clone(apperrors.ErrUnauthorized, "invalid session token")
	}
	return claims, nil
}

// CurrentUser resolves the user behind a set of session claims.
func (s *AuthService) CurrentUser(ctx context.Context, claims *models.SessionClaims) (*models.User, error) {
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrUnauthorized, "user no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// CookieName exposes the configured session cookie name.
func (s *AuthService) CookieName() string {
	return s.session.CookieName
}

// CookieMaxAge exposes the session lifetime in seconds for cookie issuance.
func (s *AuthService) CookieMaxAge() int {
	return int(s.session.Expiration.Seconds())
}
