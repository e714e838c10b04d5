package handlers

import (
	"net/http"

	"breadit/internal/middleware"
	"breadit/internal/models"
	"breadit/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VoteHandler struct {
	votes  *services.VoteService
	logger *zap.Logger
}

func NewVoteHandler(votes *services.VoteService, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{votes: votes, logger: loggerOrNop(logger)}
}

type postVoteRequest struct {
	PostID   string          `json:"postId"`
	VoteType models.VoteType `json:"voteType"`
}

type commentVoteRequest struct {
	CommentID string          `json:"commentId"`
	VoteType  models.VoteType `json:"voteType"`
}

// VotePost applies an up or down vote on a post. Repeating the same vote
// removes it.
func (h *VoteHandler) VotePost(c *gin.Context) {
	var req postVoteRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.votes.VotePost(c.Request.Context(), middleware.ViewerID(c), req.PostID, req.VoteType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *VoteHandler) VoteComment(c *gin.Context) {
	var req commentVoteRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.votes.VoteComment(c.Request.Context(), middleware.ViewerID(c), req.CommentID, req.VoteType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
