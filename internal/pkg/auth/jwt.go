// internal/pkg/auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sokohub/sokohub-backend/internal/config"
)

// Token kinds carried in the "kind" claim
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload for API sessions. Admin is only ever set
// on access tokens; refresh tokens carry identity, nothing more.
type Claims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	Admin  bool   `json:"adm,omitempty"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair is an access/refresh token set issued together
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// JWTManager signs and parses session tokens
type JWTManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTManager creates a JWT manager from config
func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		secret:     []byte(cfg.JWT.Secret),
		issuer:     cfg.App.Name,
		accessTTL:  cfg.JWT.AccessTokenExpiry,
		refreshTTL: cfg.JWT.RefreshTokenExpiry,
	}
}

// IssuePair issues a fresh access/refresh token pair for a user
func (j *JWTManager) IssuePair(userID uint, email string, admin bool) (*TokenPair, error) {
	access, err := j.issue(TokenAccess, j.accessTTL, userID, email, admin)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := j.issue(TokenRefresh, j.refreshTTL, userID, email, false)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseAccess validates an access token and returns its claims
func (j *JWTManager) ParseAccess(token string) (*Claims, error) {
	return j.parse(token, TokenAccess)
}

// ParseRefresh validates a refresh token and returns its claims
func (j *JWTManager) ParseRefresh(token string) (*Claims, error) {
	return j.parse(token, TokenRefresh)
}

func (j *JWTManager) issue(kind string, ttl time.Duration, userID uint, email string, admin bool) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Admin:  admin,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Subject:   fmt.Sprintf("user:%d", userID),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

func (j *JWTManager) parse(token, kind string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: wrong token kind %q", ErrInvalidToken, claims.Kind)
	}
	return claims, nil
}

// ExtractTokenFromHeader pulls the bearer token out of an
// Authorization header value.
func ExtractTokenFromHeader(authHeader string) string {
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
