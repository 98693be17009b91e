package handlers

import (
	"net/http"
	"time"

	"github.com/clawboard/clawboard/internal/auth"
	"github.com/gin-gonic/gin"
)

// boardTokenTTL bounds how long an exchanged token stays valid.
const boardTokenTTL = 24 * time.Hour

type AuthHandler struct {
	creds      *auth.Credentials
	jwtManager *auth.JWTManager
}

func NewAuthHandler(creds *auth.Credentials, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{creds: creds, jwtManager: jwtManager}
}

type AuthRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
	Client string `json:"client"`
}

// PostAuth handles POST /v1/auth: exchanges the shared API key for a signed
// short-lived board token, so long-running clients do not have to keep the
// key in every request.
func (h *AuthHandler) PostAuth(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if !h.creds.VerifyKey(req.APIKey) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.jwtManager.CreateToken(req.Client, boardTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
