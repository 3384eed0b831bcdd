package models

import "time"

// ModerationState is the moderation status of a comment. Deleted is
// terminal: the content is discarded and no further transitions exist.
type ModerationState string

const (
	CommentVisible ModerationState = "visible"
	CommentHidden  ModerationState = "hidden"
	CommentDeleted ModerationState = "deleted"
)

// ModerationAction is a moderation request from the post author.
type ModerationAction string

const (
	ModerationHide    ModerationAction = "hide"
	ModerationApprove ModerationAction = "approve"
	ModerationDelete  ModerationAction = "delete"
)

// Comment represents a threaded comment on a post (PostgreSQL). The thread
// root is the post that anchors the tree; every reply, however nested,
// carries the same thread root.
type Comment struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	AuthorID         uint            `json:"author_id" gorm:"index"`
	ThreadRootID     string          `json:"thread_root_id" gorm:"index"` // ID of the anchoring post (MongoDB ObjectID as string)
	ParentCommentID  *uint           `json:"parent_comment_id,omitempty" gorm:"index"`
	Content          string          `json:"content"`
	ModerationState  ModerationState `json:"moderation_state" gorm:"size:20;default:visible;index"`
	ModerationReason *string         `json:"moderation_reason,omitempty" gorm:"size:255"`
	ModeratedBy      *uint           `json:"moderated_by,omitempty"`
	ModeratedAt      *time.Time      `json:"moderated_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at" gorm:"index"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content         string `json:"content" validate:"required,min=1,max=500"`
	ParentCommentID *uint  `json:"parent_comment_id,omitempty"`
}

// ModerateCommentRequest defines the request body for moderating a comment
type ModerateCommentRequest struct {
	Action string `json:"action" validate:"required,oneof=hide approve delete"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=255"`
}
