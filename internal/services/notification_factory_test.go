package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloggingapp/engagement-backend/internal/models"
)

func TestFollowerAddedCreatesUnreadNotification(t *testing.T) {
	env := newTestEnv(alice, bob)

	env.factory.FollowerAdded(context.Background(), bob.ID, alice.ID)

	rows := env.notifications.all()
	require.Len(t, rows, 1)
	assert.Equal(t, bob.ID, rows[0].RecipientID)
	assert.Equal(t, models.NotificationFollow, rows[0].Type)
	assert.Equal(t, alice.ID, rows[0].ActorID)
	assert.False(t, rows[0].IsRead)
	assert.Contains(t, rows[0].Message, "@alice")
}

func TestCreatorsSuppressSelfNotification(t *testing.T) {
	env := newTestEnv(alice)
	ctx := context.Background()

	post := env.posts.addPost(alice.ID, "Alice's Post")
	ownComment := &models.Comment{ID: 1, AuthorID: alice.ID, ThreadRootID: post.ID.Hex(), Content: "note to self"}

	env.factory.FollowerAdded(ctx, alice.ID, alice.ID)
	env.factory.PostLiked(ctx, post.ID.Hex(), alice.ID)
	env.factory.PostCommented(ctx, post, ownComment)
	env.factory.CommentReplied(ctx, ownComment, ownComment)
	env.factory.Mentioned(ctx, post, ownComment, alice.ID)

	assert.Empty(t, env.notifications.all())
	assert.Empty(t, env.outbound.recorded())
}

func TestPostLikedNotifiesAuthor(t *testing.T) {
	env := newTestEnv(alice, bob)

	post := env.posts.addPost(bob.ID, "Bob's Post")
	env.factory.PostLiked(context.Background(), post.ID.Hex(), alice.ID)

	rows := env.notifications.all()
	require.Len(t, rows, 1)
	assert.Equal(t, bob.ID, rows[0].RecipientID)
	assert.Equal(t, models.NotificationPostLike, rows[0].Type)
	assert.Equal(t, post.ID.Hex(), rows[0].RelatedPostID)
}

func TestPostCommentedOutboundOnlyWhenEnabled(t *testing.T) {
	env := newTestEnv(alice, bob)
	ctx := context.Background()

	post := env.posts.addPost(bob.ID, "Bob's Post")
	comment := &models.Comment{ID: 7, AuthorID: alice.ID, ThreadRootID: post.ID.Hex(), Content: "great read"}

	// Bob never opted in: in-app only.
	env.factory.PostCommented(ctx, post, comment)
	require.Len(t, env.notifications.all(), 1)
	assert.Empty(t, env.outbound.recorded())

	env.settings.enable(bob.ID, "+12025550101")
	env.factory.PostCommented(ctx, post, comment)

	calls := env.outbound.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "new_comment", calls[0].kind)
	assert.Equal(t, "+12025550101", calls[0].to)
	assert.Equal(t, []string{"Alice", "Bob's Post", "great read"}, calls[0].args)
}

func TestPostCommentedOutboundSkippedWhenDisabled(t *testing.T) {
	env := newTestEnv(alice, bob)

	post := env.posts.addPost(bob.ID, "Bob's Post")
	comment := &models.Comment{ID: 7, AuthorID: alice.ID, ThreadRootID: post.ID.Hex(), Content: "hi"}

	// Number on file but the toggle is off.
	env.settings.Upsert(&models.NotificationSettings{
		UserID:          bob.ID,
		WhatsAppNumber:  "+12025550101",
		WhatsAppEnabled: false,
	})
	env.factory.PostCommented(context.Background(), post, comment)

	assert.Len(t, env.notifications.all(), 1)
	assert.Empty(t, env.outbound.recorded())
}

func TestCommentRepliedNotifiesParentAuthor(t *testing.T) {
	env := newTestEnv(alice, bob)

	parent := &models.Comment{ID: 1, AuthorID: alice.ID, ThreadRootID: "p1", Content: "parent"}
	reply := &models.Comment{ID: 2, AuthorID: bob.ID, ThreadRootID: "p1", Content: "reply"}
	env.factory.CommentReplied(context.Background(), parent, reply)

	rows := env.notifications.all()
	require.Len(t, rows, 1)
	assert.Equal(t, alice.ID, rows[0].RecipientID)
	assert.Equal(t, models.NotificationCommentReply, rows[0].Type)
	require.NotNil(t, rows[0].RelatedCommentID)
	assert.Equal(t, reply.ID, *rows[0].RelatedCommentID)
}

func TestMentionedDispatchesOutboundToRecipient(t *testing.T) {
	env := newTestEnv(alice, bob, carol)

	post := env.posts.addPost(bob.ID, "Bob's Post")
	comment := &models.Comment{ID: 3, AuthorID: alice.ID, ThreadRootID: post.ID.Hex(), Content: "cc @carol"}
	env.settings.enable(carol.ID, "+12025550103")

	env.factory.Mentioned(context.Background(), post, comment, carol.ID)

	rows := env.notifications.all()
	require.Len(t, rows, 1)
	assert.Equal(t, carol.ID, rows[0].RecipientID)
	assert.Equal(t, models.NotificationMention, rows[0].Type)

	calls := env.outbound.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "mention", calls[0].kind)
	assert.Equal(t, "+12025550103", calls[0].to)
}

func TestPostPublishedFansOutToOptedInFollowers(t *testing.T) {
	env := newTestEnv(alice, bob, carol)

	require.NoError(t, env.follows.CreateFollow(&models.Follow{FollowerID: bob.ID, FollowingID: alice.ID}))
	require.NoError(t, env.follows.CreateFollow(&models.Follow{FollowerID: carol.ID, FollowingID: alice.ID}))
	env.settings.enable(carol.ID, "+12025550103") // bob stays in-app only

	post := env.posts.addPost(alice.ID, "Fresh Off The Press")
	env.factory.PostPublished(context.Background(), post)

	calls := env.outbound.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "new_post", calls[0].kind)
	assert.Equal(t, "+12025550103", calls[0].to)
	assert.Equal(t, []string{"Alice", "Fresh Off The Press"}, calls[0].args)
}

func TestTitlePreviewTruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("t", 80)
	preview := titlePreview(long)
	assert.Len(t, preview, 53)
	assert.True(t, strings.HasSuffix(preview, "..."))

	assert.Equal(t, "short", titlePreview("short"))

	// Characters, not bytes: 60 two-byte runes keep 50 of them.
	wide := strings.Repeat("ñ", 60)
	widePreview := titlePreview(wide)
	assert.True(t, utf8.ValidString(widePreview))
	assert.Equal(t, strings.Repeat("ñ", 50)+"...", widePreview)
}
