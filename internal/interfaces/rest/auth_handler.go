package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/doulacrm/backend/internal/application/services"
	"github.com/doulacrm/backend/pkg/errors"
)

type AuthHandler struct {
	svc *services.ServiceManager
}

func NewAuthHandler(svc *services.ServiceManager) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a signed token with the session
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMe returns the session encoded in the caller's token
func (h *AuthHandler) GetMe(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondAppError(c, errors.NewUnauthorizedError("not authenticated"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
