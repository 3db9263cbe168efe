package jwt

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidClaim = errors.New("invalid token claims")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims are carried by every admin session token
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issued is a freshly signed token with the times embedded in it
type Issued struct {
	Token     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager signs, validates and revokes HS256 session tokens.
// Revocations live in memory until the token would have expired anyway.
type TokenManager struct {
	secret  []byte
	issuer  string
	ttl     time.Duration
	now     func() time.Time
	revoked *gocache.Cache
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret:  []byte(secret),
		issuer:  issuer,
		ttl:     ttl,
		now:     time.Now,
		revoked: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// Issue signs a token for subject with the given role
func (tm *TokenManager) Issue(subject, role string) (Issued, error) {
	// JWT NumericDate has second precision
	now := tm.now().Truncate(time.Second)
	issued := Issued{
		ID:        uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(tm.ttl),
	}

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        issued.ID,
			Subject:   subject,
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(issued.IssuedAt),
			NotBefore: jwt.NewNumericDate(issued.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(issued.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return Issued{}, fmt.Errorf("failed to sign token: %w", err)
	}
	issued.Token = signed

	return issued, nil
}

// Validate parses token and checks signature, issuer, lifetime and revocation
func (tm *TokenManager) Validate(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithIssuer(tm.issuer), jwt.WithTimeFunc(tm.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidClaim
	}

	if _, revoked := tm.revoked.Get(claims.ID); revoked {
		return nil, ErrRevokedToken
	}

	return claims, nil
}

// Revoke rejects the token with these claims from now on
func (tm *TokenManager) Revoke(claims *Claims) {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	remaining := claims.ExpiresAt.Sub(tm.now())
	if remaining <= 0 {
		return
	}
	tm.revoked.Set(claims.ID, struct{}{}, remaining)
}

// TTL returns the lifetime of issued tokens
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// EqualSecret compares two secrets in constant time
func EqualSecret(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
