package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bloggingapp/engagement-backend/internal/models"
	"github.com/bloggingapp/engagement-backend/internal/services"
)

// CommentHandler handles HTTP requests related to comments and their
// moderation
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPost)
	g.GET("/comments/:id/replies", h.GetDirectReplies)
	g.POST("/comments/:id/moderate", h.ModerateComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.commentService.Create(c.Request().Context(), currentUserID, postID, req.Content, req.ParentCommentID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPost retrieves the visible comments for a post
func (h *CommentHandler) GetCommentsByPost(c echo.Context) error {
	comments, err := h.commentService.ListForPost(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

// GetDirectReplies retrieves the immediate replies of a comment
func (h *CommentHandler) GetDirectReplies(c echo.Context) error {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	replies, err := h.commentService.DirectReplies(c.Request().Context(), uint(commentID))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, replies)
}

// ModerateComment applies a moderation action as the post author
func (h *CommentHandler) ModerateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.ModerateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err = h.commentService.Moderate(c.Request().Context(), uint(commentID), currentUserID, models.ModerationAction(req.Action), req.Reason)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
