package handlers

import (
	"net/http"

	"breadit/internal/middleware"
	"breadit/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	users  *services.UserService
	logger *zap.Logger
}

func NewUserHandler(users *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: loggerOrNop(logger)}
}

type usernameRequest struct {
	Name string `json:"name"`
}

func (h *UserHandler) ChangeUsername(c *gin.Context) {
	var req usernameRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.ChangeUsername(c.Request.Context(), middleware.ViewerID(c), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
