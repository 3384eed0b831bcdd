package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloggingapp/engagement-backend/internal/models"
	"github.com/bloggingapp/engagement-backend/internal/repositories"
)

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// CommentService owns threaded comments and their moderation state
// machine: create -> visible; hide <-> approve; delete is terminal.
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	users    repositories.UserRepository
	factory  *NotificationFactory
	logger   *zap.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	users repositories.UserRepository,
	factory *NotificationFactory,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		users:    users,
		factory:  factory,
		logger:   logger,
	}
}

// Create submits a new comment under a post. When parentID is given the
// parent must anchor to the same thread root, otherwise ErrInvalidParent.
// The comment starts visible. Notifications are a side effect and can
// never fail the creation.
func (s *CommentService) Create(ctx context.Context, authorID uint, threadRootID, content string, parentID *uint) (*models.Comment, error) {
	post, err := s.posts.GetPostByID(ctx, threadRootID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, fmt.Errorf("post %s: %w", threadRootID, ErrNotFound)
		}
		return nil, err
	}

	var parent *models.Comment
	if parentID != nil {
		parent, err = s.comments.GetCommentByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("parent comment %d: %w", *parentID, ErrNotFound)
			}
			return nil, err
		}
		if parent.ModerationState == models.CommentDeleted {
			return nil, fmt.Errorf("parent comment %d: %w", *parentID, ErrNotFound)
		}
		if parent.ThreadRootID != threadRootID {
			return nil, fmt.Errorf("parent comment %d anchors to post %s, not %s: %w",
				*parentID, parent.ThreadRootID, threadRootID, ErrInvalidParent)
		}
	}

	comment := &models.Comment{
		AuthorID:        authorID,
		ThreadRootID:    threadRootID,
		ParentCommentID: parentID,
		Content:         content,
		ModerationState: models.CommentVisible,
	}
	if err := s.comments.CreateComment(comment); err != nil {
		return nil, err
	}

	if err := s.posts.IncrementCommentsCount(ctx, threadRootID); err != nil {
		s.logger.Warn("failed to bump post comment counter", zap.String("post_id", threadRootID), zap.Error(err))
	}

	if parent != nil {
		s.factory.CommentReplied(ctx, parent, comment)
	} else {
		s.factory.PostCommented(ctx, post, comment)
	}
	s.notifyMentions(ctx, post, comment)

	return comment, nil
}

// notifyMentions scans the comment for @username references and notifies
// each mentioned user once.
func (s *CommentService) notifyMentions(ctx context.Context, post *models.Post, comment *models.Comment) {
	seen := make(map[string]bool)
	for _, match := range mentionPattern.FindAllStringSubmatch(comment.Content, -1) {
		username := match[1]
		if seen[username] {
			continue
		}
		seen[username] = true

		mentioned, err := s.users.GetUserByUsername(username)
		if err != nil {
			continue // not every @word is a user
		}
		s.factory.Mentioned(ctx, post, comment, mentioned.ID)
	}
}

// DirectReplies returns the immediate children of a comment, ordered by
// creation time. One level only, not recursive.
func (s *CommentService) DirectReplies(ctx context.Context, commentID uint) ([]models.Comment, error) {
	if _, err := s.getLive(commentID); err != nil {
		return nil, err
	}
	return s.comments.GetDirectReplies(commentID)
}

// ListForPost returns the visible comments anchored to a post, oldest
// first. Hidden and deleted comments are filtered out.
func (s *CommentService) ListForPost(ctx context.Context, threadRootID string) ([]models.Comment, error) {
	if _, err := s.posts.GetPostByID(ctx, threadRootID); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, fmt.Errorf("post %s: %w", threadRootID, ErrNotFound)
		}
		return nil, err
	}

	all, err := s.comments.GetCommentsByThreadRoot(threadRootID)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Comment, 0, len(all))
	for _, c := range all {
		if c.ModerationState == models.CommentVisible {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// Moderate applies a moderation action to a comment. Only the author of
// the comment's thread root post may moderate. Delete discards the
// content and is terminal: any later Moderate on the comment fails with
// ErrNotFound.
func (s *CommentService) Moderate(ctx context.Context, commentID, actorID uint, action models.ModerationAction, reason string) error {
	comment, err := s.getLive(commentID)
	if err != nil {
		return err
	}

	post, err := s.posts.GetPostByID(ctx, comment.ThreadRootID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return fmt.Errorf("post %s: %w", comment.ThreadRootID, ErrNotFound)
		}
		return err
	}
	if post.AuthorID != actorID {
		return fmt.Errorf("user %d is not the author of post %s: %w", actorID, post.ID.Hex(), ErrUnauthorized)
	}

	switch action {
	case models.ModerationHide:
		comment.ModerationState = models.CommentHidden
	case models.ModerationApprove:
		comment.ModerationState = models.CommentVisible
	case models.ModerationDelete:
		comment.ModerationState = models.CommentDeleted
		comment.Content = ""
	default:
		return fmt.Errorf("unknown moderation action %q: %w", action, ErrValidation)
	}

	now := time.Now()
	comment.ModeratedBy = &actorID
	comment.ModeratedAt = &now
	if reason != "" {
		comment.ModerationReason = &reason
	} else {
		comment.ModerationReason = nil
	}

	if err := s.comments.UpdateComment(comment); err != nil {
		return err
	}

	s.logger.Info("comment moderated",
		zap.Uint("comment_id", commentID),
		zap.Uint("moderator_id", actorID),
		zap.String("action", string(action)))
	return nil
}

// getLive loads a comment, treating deleted ones as gone.
func (s *CommentService) getLive(commentID uint) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment %d: %w", commentID, ErrNotFound)
		}
		return nil, err
	}
	if comment.ModerationState == models.CommentDeleted {
		return nil, fmt.Errorf("comment %d: %w", commentID, ErrNotFound)
	}
	return comment, nil
}
