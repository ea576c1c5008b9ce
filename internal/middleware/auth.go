// Package middleware provides authentication, logging, tracing and rate limiting for the HTTP server.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"timebank/internal/config"
	"timebank/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

var (
	cfg *config.Config
	rdb *redis.Client
)

// InitMiddleware initializes authentication middleware with the given config
// and the redis client used for token revocation. rc may be nil.
func InitMiddleware(c *config.Config, rc *redis.Client) {
	cfg = c
	rdb = rc
}

// ErrTokenRevoked is returned for tokens revoked by logout.
var ErrTokenRevoked = errors.New("token revoked")

// AuthClaims is the subset of JWT claims the API relies on.
type AuthClaims struct {
	UserID    uint
	TokenID   string
	ExpiresAt time.Time
}

func revokedKey(jti string) string {
	return "jwt:revoked:" + jti
}

// RevokeToken marks jti as revoked until expiresAt.
func RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if rdb == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := rdb.Set(ctx, revokedKey(jti), "1", ttl).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("revoke").Inc()
		return err
	}
	return nil
}

// ParseToken validates signature, expiry, issuer and audience, then checks revocation.
func ParseToken(ctx context.Context, tokenString string) (*AuthClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}
	if cfg.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(cfg.JWTAudience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("invalid token structure - missing subject")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, errors.New("invalid user ID in token")
	}

	out := &AuthClaims{UserID: uint(userID)}
	if jti, ok := claims["jti"].(string); ok {
		out.TokenID = jti
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	if rdb != nil && out.TokenID != "" {
		n, err := rdb.Exists(ctx, revokedKey(out.TokenID)).Result()
		if err != nil {
			observability.RedisErrorRate.WithLabelValues("revocation_check").Inc()
			Logger.WarnContext(ctx, "token revocation check failed", slog.String("error", err.Error()))
		} else if n > 0 {
			return nil, ErrTokenRevoked
		}
	}
	return out, nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header required")
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", errors.New("invalid authorization header format")
	}
	return token, nil
}

func authenticate(c *fiber.Ctx, token string) error {
	claims, err := ParseToken(c.UserContext(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Locals("userID", claims.UserID)
	c.Locals("claims", claims)
	c.SetUserContext(WithUserID(c.UserContext(), claims.UserID))
	return c.Next()
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	token, err := bearerToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return authenticate(c, token)
}

// WebSocketAuthRequired accepts the token from the `token` query parameter,
// falling back to the Authorization header.
func WebSocketAuthRequired(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		var err error
		if token, err = bearerToken(c); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token required",
			})
		}
	}
	return authenticate(c, token)
}
