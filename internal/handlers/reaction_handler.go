package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bloggingapp/engagement-backend/internal/models"
	"github.com/bloggingapp/engagement-backend/internal/services"
)

// ReactionHandler handles HTTP requests related to reactions
type ReactionHandler struct {
	reactionService *services.ReactionService
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactionService *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/reactions", h.ReactToPost)
	g.DELETE("/posts/:post_id/reactions", h.RemovePostReaction)
	g.GET("/posts/:post_id/reactions", h.GetPostReactions)
	g.POST("/comments/:comment_id/reactions", h.ReactToComment)
	g.DELETE("/comments/:comment_id/reactions", h.RemoveCommentReaction)
	g.GET("/comments/:comment_id/reactions", h.GetCommentReactions)
}

// ReactToPost records or replaces the caller's reaction on a post
func (h *ReactionHandler) ReactToPost(c echo.Context) error {
	return h.upsert(c, c.Param("post_id"), models.TargetPost)
}

// RemovePostReaction removes the caller's reaction from a post
func (h *ReactionHandler) RemovePostReaction(c echo.Context) error {
	return h.remove(c, c.Param("post_id"), models.TargetPost)
}

// GetPostReactions returns the reaction summary for a post
func (h *ReactionHandler) GetPostReactions(c echo.Context) error {
	return h.summary(c, c.Param("post_id"), models.TargetPost)
}

// ReactToComment records or replaces the caller's reaction on a comment
func (h *ReactionHandler) ReactToComment(c echo.Context) error {
	return h.upsert(c, c.Param("comment_id"), models.TargetComment)
}

// RemoveCommentReaction removes the caller's reaction from a comment
func (h *ReactionHandler) RemoveCommentReaction(c echo.Context) error {
	return h.remove(c, c.Param("comment_id"), models.TargetComment)
}

// GetCommentReactions returns the reaction summary for a comment
func (h *ReactionHandler) GetCommentReactions(c echo.Context) error {
	return h.summary(c, c.Param("comment_id"), models.TargetComment)
}

func (h *ReactionHandler) upsert(c echo.Context, targetID string, targetType models.TargetType) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpsertReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	summary, err := h.reactionService.Upsert(c.Request().Context(), currentUserID, targetID, targetType, models.ReactionKind(req.Kind))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, summary)
}

func (h *ReactionHandler) remove(c echo.Context, targetID string, targetType models.TargetType) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.reactionService.Remove(c.Request().Context(), currentUserID, targetID, targetType); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReactionHandler) summary(c echo.Context, targetID string, targetType models.TargetType) error {
	var viewerID *uint
	if id := getUserIDFromContext(c); id != 0 {
		viewerID = &id
	}

	summary, err := h.reactionService.Summary(c.Request().Context(), targetID, targetType, viewerID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
