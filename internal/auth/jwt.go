// Package auth provides identity proofs for the API: password hashing,
// signed bearer tokens, the bearer-token middleware and GitHub OAuth.
//
// TOKEN FLOW:
//  1. POST /auth/sign_in with {login, password}
//  2. The server verifies the password and returns {"token": "<jwt>"}
//  3. The client sends "Authorization: Bearer <jwt>" on every other request
//  4. RequireAuth verifies the token and puts the account id in the context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<account uuid>","exp":1234567890,"iat":...,"iss":"taskflow","jti":"..."}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// Verification needs only the secret, never the database.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/xid"

	"github.com/sakif/taskflow/internal/apperror"
)

const issuer = "taskflow"

// MinSecretLength is the shortest HMAC secret NewTokenService accepts.
const MinSecretLength = 16

// Claims is the verified content of a token.
type Claims struct {
	Subject   uuid.UUID
	ExpiresAt time.Time
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret used to sign and verify tokens and is immutable
// after construction, so one instance is shared by every request.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. ttl is the lifetime Issue uses
// when called with a zero duration.
// Generate a secret with: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of s that reads time from now. Used in tests to
// move past a token's expiry without sleeping.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// TTL is the default token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. "sub" holds the account id.
type claims struct {
	jwt.RegisteredClaims
}

// Issue signs a token for accountID that expires ttl from now.
// A zero ttl means the service default; a negative one yields an already
// expired token (tests use that).
//
// Signing algorithm: HS256 (HMAC-SHA256), same key for signing and verifying.
func (s *TokenService) Issue(accountID uuid.UUID, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = s.ttl
	}
	now := s.now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
			ID:        xid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperror.Token(fmt.Errorf("auth: signing token: %w", err))
	}

	return signed, nil
}

// Verify parses and verifies a JWT string.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid
//   - Algorithm is HS256 (blocks "alg: none" and key-confusion tricks)
//   - Issuer matches
//   - exp is present and in the future
//
// Every failure is apperror.ErrInvalidCredentials. The message differs per
// cause, for logs only.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.InvalidCredentials("token expired")
		}
		return nil, apperror.InvalidCredentials("invalid token: " + err.Error())
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, apperror.InvalidCredentials("invalid token claims")
	}

	subject, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, apperror.InvalidCredentials("token subject is not an account id")
	}

	return &Claims{
		Subject:   subject,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
