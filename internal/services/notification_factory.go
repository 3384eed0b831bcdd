package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloggingapp/engagement-backend/internal/models"
	"github.com/bloggingapp/engagement-backend/internal/repositories"
)

// Outbound is the dispatcher surface the factory needs. Implemented by
// notify.Dispatcher; every call is fire-and-forget.
type Outbound interface {
	NotifyNewPost(authorName, postTitle, to string)
	NotifyNewComment(commenterName, postTitle, commentPreview, to string)
	NotifyMention(mentionedBy, postTitle, to string)
}

// NotificationFactory creates persisted in-app notifications from
// engagement events and, when the recipient opted in, hands the outbound
// copy to the dispatcher. Self-notifications are suppressed, and no
// failure here ever reaches the triggering operation: everything is
// logged and swallowed.
type NotificationFactory struct {
	notifications repositories.NotificationRepository
	settings      repositories.NotificationSettingsRepository
	users         repositories.UserRepository
	follows       repositories.FollowRepository
	posts         repositories.PostRepository
	outbound      Outbound
	logger        *zap.Logger
}

// NewNotificationFactory creates a new NotificationFactory
func NewNotificationFactory(
	notifications repositories.NotificationRepository,
	settings repositories.NotificationSettingsRepository,
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	posts repositories.PostRepository,
	outbound Outbound,
	logger *zap.Logger,
) *NotificationFactory {
	return &NotificationFactory{
		notifications: notifications,
		settings:      settings,
		users:         users,
		follows:       follows,
		posts:         posts,
		outbound:      outbound,
		logger:        logger,
	}
}

// FollowerAdded notifies a user that someone started following them
func (f *NotificationFactory) FollowerAdded(ctx context.Context, followedID, followerID uint) {
	if followedID == followerID {
		return
	}
	follower, err := f.users.GetUserByID(followerID)
	if err != nil {
		f.logger.Warn("follow notification skipped, actor lookup failed", zap.Uint("actor_id", followerID), zap.Error(err))
		return
	}

	f.persist(&models.Notification{
		RecipientID: followedID,
		Type:        models.NotificationFollow,
		Title:       "New Follower",
		Message:     fmt.Sprintf("%s (@%s) started following you", follower.DisplayName, follower.Username),
		ActorID:     followerID,
	})
}

// PostLiked notifies a post author that someone reacted to their post
func (f *NotificationFactory) PostLiked(ctx context.Context, postID string, actorID uint) {
	post, actor, ok := f.loadPostAndActor(ctx, postID, actorID)
	if !ok || post.AuthorID == actorID {
		return
	}

	f.persist(&models.Notification{
		RecipientID:   post.AuthorID,
		Type:          models.NotificationPostLike,
		Title:         "Post Liked",
		Message:       fmt.Sprintf("%s liked your post %q", actor.DisplayName, titlePreview(post.Title)),
		ActorID:       actorID,
		RelatedPostID: postID,
	})
}

// PostCommented notifies a post author about a new top-level comment
func (f *NotificationFactory) PostCommented(ctx context.Context, post *models.Post, comment *models.Comment) {
	if post.AuthorID == comment.AuthorID {
		return
	}
	commenter, err := f.users.GetUserByID(comment.AuthorID)
	if err != nil {
		f.logger.Warn("comment notification skipped, actor lookup failed", zap.Uint("actor_id", comment.AuthorID), zap.Error(err))
		return
	}

	f.persist(&models.Notification{
		RecipientID:      post.AuthorID,
		Type:             models.NotificationPostComment,
		Title:            "New Comment",
		Message:          fmt.Sprintf("%s commented on your post %q", commenter.DisplayName, titlePreview(post.Title)),
		ActorID:          comment.AuthorID,
		RelatedPostID:    post.ID.Hex(),
		RelatedCommentID: &comment.ID,
	})

	if to, ok := f.outboundRecipient(post.AuthorID); ok {
		f.outbound.NotifyNewComment(commenter.DisplayName, post.Title, comment.Content, to)
	}
}

// CommentReplied notifies a comment author that someone replied to them
func (f *NotificationFactory) CommentReplied(ctx context.Context, parent, reply *models.Comment) {
	if parent.AuthorID == reply.AuthorID {
		return
	}
	replier, err := f.users.GetUserByID(reply.AuthorID)
	if err != nil {
		f.logger.Warn("reply notification skipped, actor lookup failed", zap.Uint("actor_id", reply.AuthorID), zap.Error(err))
		return
	}

	f.persist(&models.Notification{
		RecipientID:      parent.AuthorID,
		Type:             models.NotificationCommentReply,
		Title:            "Comment Reply",
		Message:          fmt.Sprintf("%s replied to your comment", replier.DisplayName),
		ActorID:          reply.AuthorID,
		RelatedPostID:    parent.ThreadRootID,
		RelatedCommentID: &reply.ID,
	})
}

// Mentioned notifies a user that a comment mentions them
func (f *NotificationFactory) Mentioned(ctx context.Context, post *models.Post, comment *models.Comment, recipientID uint) {
	if recipientID == comment.AuthorID {
		return
	}
	author, err := f.users.GetUserByID(comment.AuthorID)
	if err != nil {
		f.logger.Warn("mention notification skipped, actor lookup failed", zap.Uint("actor_id", comment.AuthorID), zap.Error(err))
		return
	}

	f.persist(&models.Notification{
		RecipientID:      recipientID,
		Type:             models.NotificationMention,
		Title:            "You Were Mentioned",
		Message:          fmt.Sprintf("%s mentioned you in a comment on %q", author.DisplayName, titlePreview(post.Title)),
		ActorID:          comment.AuthorID,
		RelatedPostID:    post.ID.Hex(),
		RelatedCommentID: &comment.ID,
	})

	if to, ok := f.outboundRecipient(recipientID); ok {
		f.outbound.NotifyMention(author.DisplayName, post.Title, to)
	}
}

// PostPublished fans a new-post notification out to the author's
// followers who enabled the outbound channel.
func (f *NotificationFactory) PostPublished(ctx context.Context, post *models.Post) {
	author, err := f.users.GetUserByID(post.AuthorID)
	if err != nil {
		f.logger.Warn("new post fan-out skipped, author lookup failed", zap.Uint("author_id", post.AuthorID), zap.Error(err))
		return
	}

	followerIDs, err := f.follows.GetFollowerIDs(post.AuthorID)
	if err != nil {
		f.logger.Warn("new post fan-out skipped, follower lookup failed", zap.Uint("author_id", post.AuthorID), zap.Error(err))
		return
	}

	for _, followerID := range followerIDs {
		if to, ok := f.outboundRecipient(followerID); ok {
			f.outbound.NotifyNewPost(author.DisplayName, post.Title, to)
		}
	}
}

func (f *NotificationFactory) loadPostAndActor(ctx context.Context, postID string, actorID uint) (*models.Post, *models.User, bool) {
	post, err := f.posts.GetPostByID(ctx, postID)
	if err != nil {
		f.logger.Warn("notification skipped, post lookup failed", zap.String("post_id", postID), zap.Error(err))
		return nil, nil, false
	}
	actor, err := f.users.GetUserByID(actorID)
	if err != nil {
		f.logger.Warn("notification skipped, actor lookup failed", zap.Uint("actor_id", actorID), zap.Error(err))
		return nil, nil, false
	}
	return post, actor, true
}

func (f *NotificationFactory) persist(notification *models.Notification) {
	if err := f.notifications.CreateNotification(notification); err != nil {
		f.logger.Error("failed to persist in-app notification",
			zap.Uint("recipient_id", notification.RecipientID),
			zap.String("type", string(notification.Type)),
			zap.Error(err))
		return
	}
	f.logger.Info("in-app notification created",
		zap.Uint("recipient_id", notification.RecipientID),
		zap.String("type", string(notification.Type)))
}

// outboundRecipient resolves the recipient's number when outbound
// notifications are enabled for them.
func (f *NotificationFactory) outboundRecipient(userID uint) (string, bool) {
	settings, err := f.settings.GetByUserID(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			f.logger.Warn("notification settings lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		}
		return "", false
	}
	if !settings.OutboundEnabled() {
		return "", false
	}
	return settings.WhatsAppNumber, true
}

// titlePreview bounds the title to 50 characters, counted in runes.
func titlePreview(title string) string {
	runes := []rune(title)
	if len(runes) <= 50 {
		return title
	}
	return string(runes[:50]) + "..."
}
