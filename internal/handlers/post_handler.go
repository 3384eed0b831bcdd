package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bloggingapp/engagement-backend/internal/models"
	"github.com/bloggingapp/engagement-backend/internal/repositories"
	"github.com/bloggingapp/engagement-backend/internal/services"
)

// PostHandler exposes the minimal post surface engagement needs: creating
// a post (which triggers the new-post fan-out) and reading one. Full post
// authoring lives elsewhere.
type PostHandler struct {
	postRepository repositories.PostRepository
	factory        *services.NotificationFactory
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, factory *services.NotificationFactory) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		factory:        factory,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
}

// CreatePost creates a new post and fans the new-post notification out to
// the author's followers. The fan-out can never fail the creation.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		AuthorID: currentUserID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.factory.PostPublished(c.Request().Context(), post)

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, post)
}
