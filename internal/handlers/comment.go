package handlers

import (
	"net/http"

	"breadit/internal/middleware"
	"breadit/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *services.CommentService
	logger   *zap.Logger
}

func NewCommentHandler(comments *services.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: loggerOrNop(logger)}
}

type createCommentRequest struct {
	PostID    string  `json:"postId"`
	Text      string  `json:"text"`
	ReplyToID *string `json:"replyToId"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	viewer := middleware.ViewerID(c)
	comment, err := h.comments.CreateComment(c.Request.Context(), viewer, services.CommentInput{
		PostID:    req.PostID,
		Text:      req.Text,
		ReplyToID: req.ReplyToID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, services.ViewComment(*comment, viewer))
}

// Threads lists a post's comments grouped under their top-level ancestor.
func (h *CommentHandler) Threads(c *gin.Context) {
	comments, err := h.comments.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": services.BuildThreads(comments, middleware.ViewerID(c))})
}
