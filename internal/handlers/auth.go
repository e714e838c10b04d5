package handlers

import (
	"net/http"

	"breadit/internal/middleware"
	"breadit/internal/models"
	"breadit/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	accounts *services.AccountService
	logger   *zap.Logger
}

func NewAuthHandler(accounts *services.AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: loggerOrNop(logger)}
}

// Register creates the account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.Credentials
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !h.startSession(c, user) {
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.Credentials
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.accounts.Authenticate(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !h.startSession(c, user) {
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.logger.Warn("clear session failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.accounts.Get(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) startSession(c *gin.Context, user *models.User) bool {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		h.logger.Error("save session failed", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "Could not sign in"})
		return false
	}
	return true
}
