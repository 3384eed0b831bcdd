package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloggingapp/engagement-backend/internal/models"
	"github.com/bloggingapp/engagement-backend/internal/repositories"
)

// In-memory fakes for the repository interfaces. The reaction fake
// enforces the same unique (actor, target) constraint the real schema
// does, so the conflict-recovery path is exercised for real.

type fakeReactionRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[string]*models.Reaction

	// raceKind, when set, makes the next Create lose an insert race: the
	// competing row appears with this kind and Create reports a duplicate.
	raceKind *models.ReactionKind
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{rows: make(map[string]*models.Reaction)}
}

func reactionKey(actorID uint, targetID string, targetType models.TargetType) string {
	return fmt.Sprintf("%d|%s|%s", actorID, targetID, targetType)
}

func (r *fakeReactionRepo) Create(reaction *models.Reaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reactionKey(reaction.ActorID, reaction.TargetID, reaction.TargetType)

	if r.raceKind != nil {
		kind := *r.raceKind
		r.raceKind = nil
		r.nextID++
		now := time.Now()
		r.rows[key] = &models.Reaction{
			ID:         r.nextID,
			ActorID:    reaction.ActorID,
			TargetID:   reaction.TargetID,
			TargetType: reaction.TargetType,
			Kind:       kind,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return repositories.ErrDuplicateReaction
	}

	if _, exists := r.rows[key]; exists {
		return repositories.ErrDuplicateReaction
	}

	r.nextID++
	reaction.ID = r.nextID
	reaction.CreatedAt = time.Now()
	reaction.UpdatedAt = reaction.CreatedAt
	clone := *reaction
	r.rows[key] = &clone
	return nil
}

func (r *fakeReactionRepo) UpdateKind(id uint, kind models.ReactionKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			row.Kind = kind
			row.UpdatedAt = time.Now()
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeReactionRepo) GetByActorAndTarget(actorID uint, targetID string, targetType models.TargetType) (*models.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[reactionKey(actorID, targetID, targetType)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeReactionRepo) DeleteByActorAndTarget(actorID uint, targetID string, targetType models.TargetType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := reactionKey(actorID, targetID, targetType)
	if _, ok := r.rows[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, key)
	return nil
}

func (r *fakeReactionRepo) CountByTarget(targetID string, targetType models.TargetType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if row.TargetID == targetID && row.TargetType == targetType {
			count++
		}
	}
	return count, nil
}

func (r *fakeReactionRepo) CountByKind(targetID string, targetType models.TargetType) (map[models.ReactionKind]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[models.ReactionKind]int64)
	for _, row := range r.rows {
		if row.TargetID == targetID && row.TargetType == targetType {
			counts[row.Kind]++
		}
	}
	return counts, nil
}

// rowsFor counts stored reactions for one (actor, target) pair.
func (r *fakeReactionRepo) rowsFor(actorID uint, targetID string, targetType models.TargetType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if row.ActorID == actorID && row.TargetID == targetID && row.TargetType == targetType {
			n++
		}
	}
	return n
}

type fakeCommentRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Comment
	clock  time.Time
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{rows: make(map[uint]*models.Comment), clock: time.Now()}
}

func (r *fakeCommentRepo) CreateComment(comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	comment.ID = r.nextID
	r.clock = r.clock.Add(time.Millisecond) // strictly increasing creation order
	comment.CreatedAt = r.clock
	clone := *comment
	r.rows[comment.ID] = &clone
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(id uint) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeCommentRepo) GetCommentsByThreadRoot(threadRootID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, row := range r.rows {
		if row.ThreadRootID == threadRootID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCommentRepo) GetDirectReplies(parentID uint) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, row := range r.rows {
		if row.ParentCommentID != nil && *row.ParentCommentID == parentID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCommentRepo) UpdateComment(comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[comment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *comment
	r.rows[comment.ID] = &clone
	return nil
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*models.Post)}
}

func (r *fakePostRepo) addPost(authorID uint, title string) *models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	post := &models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		Title:     title,
		CreatedAt: time.Now(),
	}
	r.posts[post.ID.Hex()] = post
	return post
}

func (r *fakePostRepo) CreatePost(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	r.posts[post.ID.Hex()] = post
	return nil
}

func (r *fakePostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	clone := *post
	return &clone, nil
}

func (r *fakePostRepo) IncrementReactionsCount(ctx context.Context, postID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[postID]; ok {
		post.ReactionsCount += delta
	}
	return nil
}

func (r *fakePostRepo) IncrementCommentsCount(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[postID]; ok {
		post.CommentsCount++
	}
	return nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetUserByUsername(username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeNotificationRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   []models.Notification
}

func (r *fakeNotificationRepo) CreateNotification(notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	notification.ID = r.nextID
	notification.CreatedAt = time.Now()
	r.rows = append(r.rows, *notification)
	return nil
}

func (r *fakeNotificationRepo) GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.rows {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) GetUnreadCount(recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.rows {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAsRead(recipientID, notificationID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == notificationID && r.rows[i].RecipientID == recipientID {
			now := time.Now()
			r.rows[i].IsRead = true
			r.rows[i].ReadAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeNotificationRepo) MarkAllAsRead(recipientID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for i := range r.rows {
		if r.rows[i].RecipientID == recipientID && !r.rows[i].IsRead {
			r.rows[i].IsRead = true
			r.rows[i].ReadAt = &now
		}
	}
	return nil
}

func (r *fakeNotificationRepo) all() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notification, len(r.rows))
	copy(out, r.rows)
	return out
}

type fakeSettingsRepo struct {
	mu   sync.Mutex
	rows map[uint]*models.NotificationSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{rows: make(map[uint]*models.NotificationSettings)}
}

func (r *fakeSettingsRepo) GetByUserID(userID uint) (*models.NotificationSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings, ok := r.rows[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *settings
	return &clone, nil
}

func (r *fakeSettingsRepo) Upsert(settings *models.NotificationSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *settings
	r.rows[settings.UserID] = &clone
	return nil
}

func (r *fakeSettingsRepo) enable(userID uint, number string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[userID] = &models.NotificationSettings{
		UserID:          userID,
		WhatsAppNumber:  number,
		WhatsAppEnabled: true,
	}
}

type fakeFollowRepo struct {
	mu      sync.Mutex
	follows []models.Follow
}

func (r *fakeFollowRepo) CreateFollow(follow *models.Follow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.follows = append(r.follows, *follow)
	return nil
}

func (r *fakeFollowRepo) DeleteFollow(followerID, followingID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			r.follows = append(r.follows[:i], r.follows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeFollowRepo) IsFollowing(followerID, followingID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFollowRepo) GetFollowerIDs(userID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, f := range r.follows {
		if f.FollowingID == userID {
			ids = append(ids, f.FollowerID)
		}
	}
	return ids, nil
}

type outboundCall struct {
	kind string // new_post, new_comment, mention
	to   string
	args []string
}

// fakeOutbound records dispatcher calls synchronously.
type fakeOutbound struct {
	mu    sync.Mutex
	calls []outboundCall
}

func (o *fakeOutbound) NotifyNewPost(authorName, postTitle, to string) {
	o.record(outboundCall{kind: "new_post", to: to, args: []string{authorName, postTitle}})
}

func (o *fakeOutbound) NotifyNewComment(commenterName, postTitle, commentPreview, to string) {
	o.record(outboundCall{kind: "new_comment", to: to, args: []string{commenterName, postTitle, commentPreview}})
}

func (o *fakeOutbound) NotifyMention(mentionedBy, postTitle, to string) {
	o.record(outboundCall{kind: "mention", to: to, args: []string{mentionedBy, postTitle}})
}

func (o *fakeOutbound) record(call outboundCall) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, call)
}

func (o *fakeOutbound) recorded() []outboundCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]outboundCall, len(o.calls))
	copy(out, o.calls)
	return out
}

// testEnv bundles the fakes and the services under test.
type testEnv struct {
	reactions     *fakeReactionRepo
	comments      *fakeCommentRepo
	posts         *fakePostRepo
	users         *fakeUserRepo
	notifications *fakeNotificationRepo
	settings      *fakeSettingsRepo
	follows       *fakeFollowRepo
	outbound      *fakeOutbound

	factory     *NotificationFactory
	reactionSvc *ReactionService
	commentSvc  *CommentService
}

func newTestEnv(users ...*models.User) *testEnv {
	env := &testEnv{
		reactions:     newFakeReactionRepo(),
		comments:      newFakeCommentRepo(),
		posts:         newFakePostRepo(),
		users:         newFakeUserRepo(users...),
		notifications: &fakeNotificationRepo{},
		settings:      newFakeSettingsRepo(),
		follows:       &fakeFollowRepo{},
		outbound:      &fakeOutbound{},
	}

	logger := zap.NewNop()
	env.factory = NewNotificationFactory(env.notifications, env.settings, env.users, env.follows, env.posts, env.outbound, logger)
	env.reactionSvc = NewReactionService(env.reactions, env.comments, env.posts, env.factory, nil, logger)
	env.commentSvc = NewCommentService(env.comments, env.posts, env.users, env.factory, logger)
	return env
}
