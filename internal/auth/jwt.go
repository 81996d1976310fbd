// Package auth resolves who is calling: it verifies Telegram Mini App
// init payloads, mints and validates JWT sessions, and exposes the
// middleware that turns a bearer token into a user ID in the request
// context. Services below this layer only ever see resolved IDs.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dichenko/myshadow/internal/apperror"
)

const issuer = "myshadow"

// TokenService signs and validates session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

type claims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Session is what a validated token resolves to.
type Session struct {
	UserID uint64
	Admin  bool
}

// GenerateUser mints a session token for a regular user.
func (s *TokenService) GenerateUser(userID uint64) (string, error) {
	return s.generate(strconv.FormatUint(userID, 10), false)
}

// GenerateAdmin mints an admin session token. Admin tokens carry no
// user ID; the admin is not a quiz participant.
func (s *TokenService) GenerateAdmin() (string, error) {
	return s.generate("admin", true)
}

func (s *TokenService) generate(subject string, admin bool) (string, error) {
	now := time.Now()
	c := claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, pinning the algorithm to HS256.
func (s *TokenService) Validate(tokenStr string) (*Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Unauthorized("token expired")
		}
		return nil, apperror.Unauthorized("invalid token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, apperror.Unauthorized("invalid token claims")
	}

	if c.Admin {
		return &Session{Admin: true}, nil
	}
	userID, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, apperror.Unauthorized("token has no subject")
	}
	return &Session{UserID: userID}, nil
}

// VerifyAdminPassword compares the configured bcrypt hash with the
// supplied password. An empty hash means admin login is disabled.
func VerifyAdminPassword(hash, password string) error {
	if hash == "" {
		return apperror.Unauthorized("admin login disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return apperror.Unauthorized("wrong password")
	}
	return nil
}
