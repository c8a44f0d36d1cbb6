// Package jwt выпускает и проверяет подписанные токены (HS256).
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iudanet/authkeeper/internal/models"
)

// MinSecretLen минимальная длина секрета HMAC в байтах
const MinSecretLen = 32

// ErrMalformedToken токен не разбирается или подпись не сходится
var ErrMalformedToken = errors.New("malformed token")

// Claims JWT claims: subject = email пользователя
type Claims struct {
	gojwt.RegisteredClaims
}

// Service provides token generation and validation.
// It does not know about revocation: that state lives in token records.
type Service struct {
	now             func() time.Time
	issuer          string
	secret          []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewService creates a new token service.
// secret must be at least MinSecretLen bytes.
func NewService(secret []byte, issuer string, accessTokenTTL, refreshTokenTTL time.Duration) (*Service, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes, got %d", MinSecretLen, len(secret))
	}
	if accessTokenTTL <= 0 || refreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	return &Service{
		now:             time.Now,
		issuer:          issuer,
		secret:          secret,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *Service) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

// GenerateAccessToken creates a short-lived token for user.
func (s *Service) GenerateAccessToken(user *models.User) (string, error) {
	token, err := s.generate(user, s.accessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to create access token: %w", err)
	}
	return token, nil
}

// GenerateRefreshToken creates a long-lived token for user.
func (s *Service) GenerateRefreshToken(user *models.User) (string, error) {
	token, err := s.generate(user, s.refreshTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to create refresh token: %w", err)
	}
	return token, nil
}

func (s *Service) generate(user *models.User, ttl time.Duration) (string, error) {
	if user == nil || user.Email == "" {
		return "", fmt.Errorf("user email is required")
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    s.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
			// jti делает уникальными токены, выпущенные в одну секунду
			ID: uuid.NewString(),
		},
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) keyFunc(token *gojwt.Token) (any, error) {
	// Проверяем что используется правильный алгоритм подписи
	if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}

// ExtractSubject returns the subject (email) of a token whose signature verifies.
// Expiry is not checked here. Returns ErrMalformedToken otherwise.
func (s *Service) ExtractSubject(tokenString string) (string, error) {
	claims := &Claims{}
	_, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	return claims.Subject, nil
}

// IsValid reports whether the signature verifies, the token has not expired
// and its subject equals user.Email.
func (s *Service) IsValid(tokenString string, user *models.User) bool {
	if user == nil {
		return false
	}

	claims := &Claims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
		gojwt.WithSubject(user.Email),
	)
	if err != nil || !token.Valid {
		return false
	}
	return true
}
