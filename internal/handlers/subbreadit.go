package handlers

import (
	"net/http"

	"breadit/internal/middleware"
	"breadit/internal/models"
	"breadit/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubbreaditHandler struct {
	communities   *services.CommunityService
	subscriptions *services.SubscriptionService
	logger        *zap.Logger
}

func NewSubbreaditHandler(communities *services.CommunityService, subscriptions *services.SubscriptionService, logger *zap.Logger) *SubbreaditHandler {
	return &SubbreaditHandler{communities: communities, subscriptions: subscriptions, logger: loggerOrNop(logger)}
}

type createSubbreaditRequest struct {
	Name string `json:"name"`
}

type subscriptionRequest struct {
	SubbreaditID string `json:"subbreaditId"`
}

type subbreaditResponse struct {
	models.Subbreadit
	IsSubscribed bool `json:"is_subscribed"`
	IsCreator    bool `json:"is_creator"`
}

func (h *SubbreaditHandler) Create(c *gin.Context) {
	var req createSubbreaditRequest
	if !bindJSON(c, &req) {
		return
	}
	community, err := h.communities.Create(c.Request.Context(), middleware.ViewerID(c), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, subbreaditResponse{Subbreadit: *community, IsSubscribed: true, IsCreator: true})
}

// Show returns the community with the viewer's membership.
func (h *SubbreaditHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := middleware.ViewerID(c)
	community, err := h.communities.GetByName(ctx, c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	subscribed, err := h.subscriptions.IsSubscribed(ctx, viewer, community.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, subbreaditResponse{
		Subbreadit:   *community,
		IsSubscribed: subscribed,
		IsCreator:    viewer != "" && community.CreatorID != nil && *community.CreatorID == viewer,
	})
}

func (h *SubbreaditHandler) Subscribe(c *gin.Context) {
	var req subscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	name, err := h.subscriptions.Subscribe(c.Request.Context(), middleware.ViewerID(c), req.SubbreaditID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name})
}

func (h *SubbreaditHandler) Unsubscribe(c *gin.Context) {
	var req subscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	name, err := h.subscriptions.Unsubscribe(c.Request.Context(), middleware.ViewerID(c), req.SubbreaditID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name})
}

func (h *SubbreaditHandler) Subscribed(c *gin.Context) {
	communities, err := h.subscriptions.Subscribed(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subbreadits": communities})
}

func (h *SubbreaditHandler) Search(c *gin.Context) {
	found, err := h.communities.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subbreadits": found})
}
