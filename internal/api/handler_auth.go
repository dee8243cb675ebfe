package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parking-backend/internal/auth"
	"parking-backend/internal/store"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login handles POST /api/auth/login. A failed lookup and a failed password
// check produce the same response.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := h.store.AdminByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrAdminNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		writeError(c, err)
		return
	}

	if !auth.CheckPassword(req.Password, admin.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	token, expiresAt, err := h.auth.IssueToken(admin)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		Username:  admin.Username,
		ExpiresAt: expiresAt,
	})
}
