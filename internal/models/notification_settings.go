package models

import "time"

// NotificationSettings holds a user's outbound notification preferences
// (PostgreSQL). The WhatsApp number is validated at this boundary, before
// it ever reaches the dispatcher: leading '+' followed by 7-15 digits.
type NotificationSettings struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"uniqueIndex"`
	WhatsAppNumber  string    `json:"whatsapp_number" gorm:"size:20"`
	WhatsAppEnabled bool      `json:"whatsapp_enabled" gorm:"default:false"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OutboundEnabled reports whether outbound messages may be sent to this user.
func (s *NotificationSettings) OutboundEnabled() bool {
	return s.WhatsAppEnabled && s.WhatsAppNumber != ""
}

// UpdateNotificationSettingsRequest defines the request body for updating
// notification settings
type UpdateNotificationSettingsRequest struct {
	WhatsAppNumber  *string `json:"whatsapp_number,omitempty" validate:"omitempty,whatsapp_number"`
	WhatsAppEnabled *bool   `json:"whatsapp_enabled,omitempty"`
}
