package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/opportunity-map-go/internal/logging"
	"github.com/jengzang/opportunity-map-go/pkg/response"
)

// ContextKeySubject is the gin context key holding the token subject
const ContextKeySubject = "auth.subject"

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("authorization header must be a bearer token")
)

// Auth verifies HS256 bearer tokens. With an empty secret every request passes.
type Auth struct {
	secret []byte
	issuer string
	logger logging.Logger
}

// NewAuth creates the auth middleware
func NewAuth(secret, issuer string, logger logging.Logger) *Auth {
	return &Auth{
		secret: []byte(secret),
		issuer: issuer,
		logger: logger.Named("auth"),
	}
}

// Enabled reports whether tokens are checked
func (a *Auth) Enabled() bool {
	return len(a.secret) > 0
}

// Required rejects requests without a valid token
func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled() {
			c.Next()
			return
		}

		raw, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			a.reject(c, err)
			return
		}

		claims, err := a.Verify(raw)
		if err != nil {
			a.reject(c, err)
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

// Verify parses and validates a token
func (a *Auth) Verify(raw string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// Sign issues a token for subject. Used by tooling and tests.
func (a *Auth) Sign(claims jwt.RegisteredClaims) (string, error) {
	if claims.Issuer == "" {
		claims.Issuer = a.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Auth) reject(c *gin.Context, err error) {
	a.logger.Warn("authentication failed",
		logging.String("path", c.Request.URL.Path),
		logging.String("ip", c.ClientIP()),
		logging.Err(err),
	)
	c.Header("WWW-Authenticate", "Bearer")
	response.Unauthorized(c, "Authentication required")
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingAuthHeader
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrInvalidAuthFormat
	}
	return strings.TrimPrefix(header, "Bearer "), nil
}
