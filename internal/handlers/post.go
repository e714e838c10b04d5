package handlers

import (
	"net/http"

	"breadit/internal/middleware"
	"breadit/internal/models"
	"breadit/internal/services"
	"breadit/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler struct {
	posts    *services.PostService
	feed     *services.FeedService
	pageSize int
	logger   *zap.Logger
}

func NewPostHandler(posts *services.PostService, feed *services.FeedService, pageSize int, logger *zap.Logger) *PostHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &PostHandler{posts: posts, feed: feed, pageSize: pageSize, logger: loggerOrNop(logger)}
}

type createPostRequest struct {
	Title        string          `json:"title"`
	Content      models.RichText `json:"content"`
	SubbreaditID string          `json:"subbreaditId"`
}

type feedResponse struct {
	Posts      []services.PostView `json:"posts"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// List serves one page of the feed. feed=subscribed narrows it to the
// viewer's communities.
func (h *PostHandler) List(c *gin.Context) {
	page, ok := utils.PositiveInt(c.Query("page"), 1)
	if !ok {
		badRequest(c, "page must be a positive integer")
		return
	}
	limit, ok := utils.PositiveInt(c.Query("limit"), h.pageSize)
	if !ok {
		badRequest(c, "limit must be a positive integer")
		return
	}

	viewer := middleware.ViewerID(c)
	q := services.FeedQuery{
		Page:           page,
		PageSize:       limit,
		SubbreaditName: c.Query("subbreaditName"),
		Cursor:         c.Query("cursor"),
	}
	switch c.Query("feed") {
	case "", "all":
	case "subscribed":
		if viewer == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "sign in to see your feed"})
			return
		}
		q.SubscribedBy = viewer
	default:
		badRequest(c, "feed must be all or subscribed")
		return
	}

	result, err := h.feed.ListPosts(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, feedResponse{
		Posts:      services.ViewPosts(result.Posts, viewer),
		NextCursor: result.NextCursor,
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, services.ViewPost(*post, middleware.ViewerID(c)))
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.posts.CreatePost(c.Request.Context(), middleware.ViewerID(c), services.PostInput{
		Title:        req.Title,
		Content:      req.Content,
		SubbreaditID: req.SubbreaditID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, services.ViewPost(*post, middleware.ViewerID(c)))
}
