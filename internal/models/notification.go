package models

import "time"

// NotificationType classifies an in-app notification
type NotificationType string

const (
	NotificationFollow       NotificationType = "follow"
	NotificationPostLike     NotificationType = "post_like"
	NotificationPostComment  NotificationType = "post_comment"
	NotificationCommentReply NotificationType = "comment_reply"
	NotificationMention      NotificationType = "mention"
)

// Notification represents a persisted in-app notification (PostgreSQL)
type Notification struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	RecipientID      uint             `json:"recipient_id" gorm:"index"`
	Type             NotificationType `json:"type" gorm:"size:30;index"`
	Title            string           `json:"title" gorm:"size:100"`
	Message          string           `json:"message"`
	ActorID          uint             `json:"actor_id" gorm:"index"` // user whose action triggered the notification
	RelatedPostID    string           `json:"related_post_id,omitempty"`
	RelatedCommentID *uint            `json:"related_comment_id,omitempty"`
	IsRead           bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt        time.Time        `json:"created_at" gorm:"index"`
	ReadAt           *time.Time       `json:"read_at,omitempty"`
}
