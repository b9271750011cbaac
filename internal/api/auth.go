package api

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"voicecounsel/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const tokenLifetime = 24 * time.Hour

// adminClaims are the JWT claims issued to a logged-in admin. The
// admin flag lives server-side in a signed token, never in client
// storage.
type adminClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// login checks the admin password and issues a bearer token.
func (h *Handler) login(c *gin.Context) {
	if h.cfg.AdminPassword == "" {
		utils.Error(c, http.StatusServiceUnavailable, "admin auth is not configured")
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "password is required")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.AdminPassword)) != 1 {
		utils.Error(c, http.StatusUnauthorized, "invalid password")
		return
	}

	now := time.Now()
	claims := &adminClaims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		log.Printf("[Auth] Failed to sign token: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	utils.Success(c, gin.H{
		"token":     signed,
		"expiresAt": claims.ExpiresAt.Time,
	})
}

// requireAdmin guards the settings endpoints with a bearer token check.
func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.Error(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		claims := &adminClaims{}
		token, err := jwt.ParseWithClaims(
			strings.TrimPrefix(header, "Bearer "),
			claims,
			func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(h.cfg.JWTSecret), nil
			},
		)
		if err != nil || !token.Valid || !claims.Admin {
			utils.Error(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Next()
	}
}
