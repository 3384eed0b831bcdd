package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/bloggingapp/engagement-backend/internal/models"
	"github.com/bloggingapp/engagement-backend/internal/repositories"
)

// SettingsHandler handles notification settings reads and updates. The
// recipient number validation lives here, at the configuration boundary;
// the dispatcher trusts whatever is stored.
type SettingsHandler struct {
	settingsRepository repositories.NotificationSettingsRepository
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsRepo repositories.NotificationSettingsRepository) *SettingsHandler {
	return &SettingsHandler{settingsRepository: settingsRepo}
}

// RegisterSettingsRoutes registers notification settings routes
func (h *SettingsHandler) RegisterSettingsRoutes(g *echo.Group) {
	g.GET("/notification-settings", h.GetSettings)
	g.PUT("/notification-settings", h.UpdateSettings)
}

// GetSettings returns the caller's notification settings
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	settings, err := h.settingsRepository.GetByUserID(currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, &models.NotificationSettings{UserID: currentUserID})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings updates the caller's notification settings. A malformed
// recipient number is rejected here with 400 and never stored.
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateNotificationSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	settings, err := h.settingsRepository.GetByUserID(currentUserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		settings = &models.NotificationSettings{UserID: currentUserID}
	}

	if req.WhatsAppNumber != nil {
		settings.WhatsAppNumber = *req.WhatsAppNumber
	}
	if req.WhatsAppEnabled != nil {
		settings.WhatsAppEnabled = *req.WhatsAppEnabled
	}
	if settings.WhatsAppEnabled && settings.WhatsAppNumber == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot enable WhatsApp notifications without a number")
	}
	settings.UpdatedAt = time.Now()

	if err := h.settingsRepository.Upsert(settings); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, settings)
}
