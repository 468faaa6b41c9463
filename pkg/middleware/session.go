package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a session token. The identity fields
// are repackaged verbatim from the RétroBus identity API at login and
// trusted on every later request; the gateway never mutates them.
type SessionClaims struct {
	jwt.RegisteredClaims
	// ID is the opaque user identifier assigned by the identity API.
	ID string `json:"id"`
	// Email is the user's address, normalized at login.
	Email string `json:"email"`
	// Name is the user's display name.
	Name string `json:"name"`
	// Role is the user's category. Opaque to the gateway; it rides in
	// the token but is withheld from login response bodies.
	Role string `json:"role"`
}

// tokenIssuer identifies tokens minted by this service.
const tokenIssuer = "retrobus-mail"

// contextKeySession is the gin context key the guard stores verified
// claims under.
const contextKeySession = "session"

// GenerateSessionToken mints a signed session token carrying the given
// identity, expiring after expiry from now.
func GenerateSessionToken(secret string, expiry time.Duration, id, email, name, role string) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    tokenIssuer,
		},
		ID:    id,
		Email: email,
		Name:  name,
		Role:  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// VerifySessionToken checks the signature and expiry of a session token
// and returns the embedded claims. Verification is purely local: the
// secret is the only input besides the token and the clock.
func VerifySessionToken(secret, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to verify session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("session token is not valid")
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The second return is false when the header is absent or
// carries no token.
func BearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// RequireSession returns a gin middleware that verifies the bearer
// token on the request and attaches the claims to the context. On any
// failure it responds 401 and the wrapped handler never runs. Expired
// and tampered tokens produce the same response on purpose.
func RequireSession(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "No token provided",
			})
			return
		}

		claims, err := VerifySessionToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(contextKeySession, claims)
		c.Next()
	}
}

// CurrentSession returns the claims RequireSession attached to the
// context, or nil when the request is unauthenticated.
func CurrentSession(c *gin.Context) *SessionClaims {
	v, ok := c.Get(contextKeySession)
	if !ok {
		return nil
	}
	claims, ok := v.(*SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
