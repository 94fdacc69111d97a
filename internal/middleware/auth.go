// Package middleware provides request context, logging, authentication,
// rate limiting, tracing and metrics middleware for the API.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/redis/go-redis/v9"
)

// Token issuer and audience stamped on every access token.
const (
	TokenIssuer   = "jharkhand-portal-api"
	TokenAudience = "jharkhand-portal-client"
)

var (
	ErrMissingToken = errors.New("authorization required")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// TokenClaims is the subset of JWT claims the API relies on.
type TokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// IssueToken signs an HS256 access token for userID.
func IssueToken(secret string, userID uint, ttl time.Duration) (string, *TokenClaims, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    TokenIssuer,
		Audience:  jwt.ClaimStrings{TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, &TokenClaims{UserID: userID, JTI: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// ParseToken validates signature, expiry, issuer and audience.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}
	out := &TokenClaims{UserID: uint(userID), JTI: claims.ID}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

// RevokeToken blacklists jti until the token would have expired anyway.
func RevokeToken(ctx context.Context, rdb *redis.Client, claims *TokenClaims) error {
	if rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, blacklistKey(claims.JTI), "1", ttl).Err()
}

// Authenticate resolves the request's token. Revocation is checked only
// when a Redis client is available.
func Authenticate(c *fiber.Ctx, secret string, rdb *redis.Client) (*TokenClaims, error) {
	raw := BearerToken(c)
	if raw == "" {
		return nil, ErrMissingToken
	}
	claims, err := ParseToken(secret, raw)
	if err != nil {
		return nil, err
	}
	if rdb != nil && claims.JTI != "" {
		n, err := rdb.Exists(c.UserContext(), blacklistKey(claims.JTI)).Result()
		if err == nil && n > 0 {
			return nil, ErrRevokedToken
		}
	}
	return claims, nil
}

func setUser(c *fiber.Ctx, claims *TokenClaims) {
	c.Locals("userID", claims.UserID)
	c.Locals("claims", claims)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))
}

// AuthRequired rejects requests without a valid, unrevoked access token.
func AuthRequired(secret string, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := Authenticate(c, secret, rdb)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(err.Error()))
		}
		setUser(c, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(secret string, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := Authenticate(c, secret, rdb); err == nil {
			setUser(c, claims)
		}
		return c.Next()
	}
}
