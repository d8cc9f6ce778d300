package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/satonic/satonic-storefront/internal/config"
	"github.com/satonic/satonic-storefront/internal/models"
)

// ErrInvalidToken is returned for tokens that fail validation
var ErrInvalidToken = errors.New("invalid session token")

// Claims represents the JWT claims of a session token
type Claims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates the tokens that bind a client to its
// creation session
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService creates a new TokenService
func NewTokenService(cfg config.SessionConfig) *TokenService {
	return &TokenService{
		secret: []byte(cfg.TokenSecret),
		ttl:    time.Duration(cfg.TTLHours) * time.Hour,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Issue generates a signed token for a session
func (s *TokenService) Issue(sessionID string) (models.SessionToken, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   sessionID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return models.SessionToken{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return models.SessionToken{
		SessionID: sessionID,
		Token:     tokenString,
		ExpiresAt: expiresAt.UTC(),
	}, nil
}

// Validate checks a token and returns its session id
func (s *TokenService) Validate(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}

	return claims.SessionID, nil
}
