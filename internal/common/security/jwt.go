package security

import (
	"context"
	"time"

	"forum_board/internal/common"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity fields embedded in every access token. The wire
// names ("sub", "is_admin", "id") and numeric-seconds "exp" are a contract
// with existing clients and must not change.
type Claims struct {
	Subject string
	UserID  string
	IsAdmin bool
}

// TokenService issues and verifies signed bearer tokens. A token is valid
// iff its signature verifies, it has not expired, it carries a subject, and
// it is not in the revocation store.
type TokenService struct {
	auth    *jwtauth.JWTAuth
	ttl     time.Duration
	revoked RevocationStore
}

func NewTokenService(algorithm string, secret []byte, ttl time.Duration, revoked RevocationStore) *TokenService {
	return &TokenService{
		auth:    jwtauth.New(algorithm, secret, nil),
		ttl:     ttl,
		revoked: revoked,
	}
}

// Auth exposes the underlying keyset, e.g. for route-level verifiers.
func (s *TokenService) Auth() *jwtauth.JWTAuth {
	return s.auth
}

func (s *TokenService) Issue(c Claims) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      c.Subject,
		"is_admin": c.IsAdmin,
		"id":       c.UserID,
		"exp":      now.Add(s.ttl).Unix(),
		"iat":      now.Unix(),
	}
	_, tokenString, err := s.auth.Encode(claims)
	return tokenString, err
}

func (s *TokenService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	revoked, err := s.revoked.IsRevoked(ctx, tokenString)
	if err != nil {
		return nil, common.Errorf("revocation lookup failed: %w", err)
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}

	token, err := jwtauth.VerifyToken(s.auth, tokenString)
	if err != nil {
		return nil, common.ErrTokenInvalid
	}

	sub := token.Subject()
	if sub == "" {
		// A token without a subject identifies nobody.
		return nil, common.ErrTokenInvalid
	}

	claims := &Claims{Subject: sub}
	if v, ok := token.Get("is_admin"); ok {
		if isAdmin, ok := v.(bool); ok {
			claims.IsAdmin = isAdmin
		}
	}
	if v, ok := token.Get("id"); ok {
		if id, ok := v.(string); ok {
			claims.UserID = id
		}
	}
	return claims, nil
}

// Revoke blacklists a token until its natural expiry. Idempotent; revoking
// an already-revoked or unparseable token is not an error.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	ttl := time.Minute
	if token, err := jwtauth.VerifyToken(s.auth, tokenString); err == nil {
		if remaining := time.Until(token.Expiration()); remaining > ttl {
			ttl = remaining
		}
	}
	return s.revoked.Revoke(ctx, tokenString, ttl)
}
