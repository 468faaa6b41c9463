package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/retrobus-essonne/mail-api/internal/identity"
	"github.com/retrobus-essonne/mail-api/pkg/middleware"
)

// validate checks credential fields after normalization. It is the
// same engine gin's binding uses, called directly so trimming and
// case-folding happen first.
var validate = validator.New()

// loginRequest is the login request body. Validation runs after
// normalization, not through binding tags.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin returns the handler for POST /api/auth/login.
//
// Malformed credentials are rejected locally; the identity API is only
// consulted for well-formed ones. On success a session token is minted
// carrying the identity claims. The role claim rides in the token but
// is withheld from the response body.
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Validation failed",
				"fields": []string{"email", "password"},
			})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		password := strings.TrimSpace(req.Password)

		var fields []string
		if err := validate.Var(email, "required,email"); err != nil {
			fields = append(fields, "email")
		}
		if password == "" {
			fields = append(fields, "password")
		}
		if len(fields) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Validation failed",
				"fields": fields,
			})
			return
		}

		user, err := s.identity.Login(c.Request.Context(), email, password)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			log.Printf("auth error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			return
		}

		token, err := middleware.GenerateSessionToken(
			s.cfg.Auth.JWTSecret, s.cfg.Auth.JWTExpiry,
			user.ID, user.Email, user.Name, user.Role,
		)
		if err != nil {
			log.Printf("token generation error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   token,
			"user": gin.H{
				"id":    user.ID,
				"email": user.Email,
				"name":  user.Name,
			},
		})
	}
}

// handleVerify returns the handler for POST /api/auth/verify.
//
// Expired and tampered tokens get the same answer; callers learn that
// the token is unusable, not why.
func (s *Server) handleVerify() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := middleware.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		claims, err := middleware.VerifySessionToken(s.cfg.Auth.JWTSecret, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"valid": true, "user": claims})
	}
}

// handleProfile returns the handler for GET /api/auth/profile. The
// session guard runs first, so the claims are always present here.
func (s *Server) handleProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentSession(c)})
	}
}
