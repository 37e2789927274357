// Package middleware provides request-scoped logging, session and rate limiting middleware.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionCookie holds the signed session token.
	SessionCookie = "blogicum_session"
	// SessionTTL is how long a login stays valid.
	SessionTTL = 14 * 24 * time.Hour

	// LocalUserID is the fiber.Ctx local holding the authenticated user's ID (uint).
	LocalUserID = "userID"
	// LocalUsername is the fiber.Ctx local holding the authenticated user's username.
	LocalUsername = "username"
	localClaims   = "sessionClaims"

	tokenIssuer   = "blogicum"
	tokenAudience = "blogicum-web"
)

// ErrSessionRevoked is returned by Parse for tokens invalidated by logout.
var ErrSessionRevoked = errors.New("session has been revoked")

// SessionClaims is the JWT payload of a session cookie.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Sessions issues and validates cookie-borne JWT sessions. Logout revokes the token's
// jti in Redis under blacklist:<jti>; without Redis, logout only clears the cookie.
type Sessions struct {
	secret []byte
	rdb    *redis.Client
	secure bool
	now    func() time.Time
}

// NewSessions creates a session manager signing with secret.
func NewSessions(secret string, rdb *redis.Client, secureCookie bool) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		rdb:    rdb,
		secure: secureCookie,
		now:    time.Now,
	}
}

// Issue signs a new session token for the user.
func (s *Sessions) Issue(userID uint, username string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(SessionTTL)
	claims := SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, exp, nil
}

// Parse validates a session token and returns its claims.
func (s *Sessions) Parse(ctx context.Context, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}

	if claims.ID != "" && s.rdb != nil {
		revoked, err := s.rdb.Exists(ctx, "blacklist:"+claims.ID).Result()
		if err == nil && revoked > 0 {
			return nil, ErrSessionRevoked
		}
	}
	return claims, nil
}

// UserID returns the numeric subject of the claims.
func (c *SessionClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, err)
	}
	return uint(id), nil
}

// Start logs the user in by setting a fresh session cookie.
func (s *Sessions) Start(c *fiber.Ctx, userID uint, username string) error {
	token, exp, err := s.Issue(userID, username)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(LocalUserID, userID)
	c.Locals(LocalUsername, username)
	return nil
}

// End revokes the current session, if any, and clears the cookie.
func (s *Sessions) End(c *fiber.Ctx) {
	if claims, ok := c.Locals(localClaims).(*SessionClaims); ok && claims.ID != "" && s.rdb != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if ttl > 0 {
			if err := s.rdb.Set(c.UserContext(), "blacklist:"+claims.ID, "1", ttl).Err(); err != nil {
				Logger.WarnContext(c.UserContext(), "failed to revoke session", "error", err)
			}
		}
	}
	s.clearCookie(c)
	c.Locals(LocalUserID, nil)
	c.Locals(LocalUsername, nil)
}

func (s *Sessions) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Load resolves the session cookie into request locals. Anonymous requests pass through
// untouched; an invalid cookie is cleared.
func (s *Sessions) Load() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return c.Next()
		}

		claims, err := s.Parse(c.UserContext(), token)
		if err != nil {
			s.clearCookie(c)
			return c.Next()
		}
		userID, err := claims.UserID()
		if err != nil {
			s.clearCookie(c)
			return c.Next()
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(localClaims, claims)
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID, if any.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id != 0
}

// LoginRequired redirects anonymous requests to loginPath, remembering the original URL in ?next=.
func LoginRequired(loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUserID(c); ok {
			return c.Next()
		}
		target := loginPath + "?next=" + url.QueryEscape(c.OriginalURL())
		return c.Redirect(target, fiber.StatusSeeOther)
	}
}
