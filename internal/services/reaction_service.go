package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloggingapp/engagement-backend/internal/models"
	"github.com/bloggingapp/engagement-backend/internal/repositories"
)

const summaryCacheTTL = 5 * time.Minute

// ReactionService owns reaction aggregation: one reaction per
// (actor, target), enforced by the storage layer's unique constraint.
type ReactionService struct {
	reactions repositories.ReactionRepository
	comments  repositories.CommentRepository
	posts     repositories.PostRepository
	factory   *NotificationFactory
	cache     *redis.Client // optional; nil disables summary caching
	logger    *zap.Logger
}

// NewReactionService creates a new ReactionService. cache may be nil.
func NewReactionService(
	reactions repositories.ReactionRepository,
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	factory *NotificationFactory,
	cache *redis.Client,
	logger *zap.Logger,
) *ReactionService {
	return &ReactionService{
		reactions: reactions,
		comments:  comments,
		posts:     posts,
		factory:   factory,
		cache:     cache,
		logger:    logger,
	}
}

// Upsert records or replaces the actor's reaction on a target and returns
// the recomputed aggregate. If the actor already reacted, the kind is
// updated in place. An insert that loses a concurrent race surfaces the
// unique-constraint violation, which is recovered internally by retrying
// as an update; the conflict is never visible to the caller.
func (s *ReactionService) Upsert(ctx context.Context, actorID uint, targetID string, targetType models.TargetType, kind models.ReactionKind) (*models.ReactionSummary, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown reaction kind %q: %w", kind, ErrValidation)
	}
	if err := s.checkTarget(ctx, targetID, targetType); err != nil {
		return nil, err
	}

	existing, err := s.reactions.GetByActorAndTarget(actorID, targetID, targetType)
	switch {
	case err == nil:
		if existing.Kind != kind {
			if err := s.reactions.UpdateKind(existing.ID, kind); err != nil {
				return nil, err
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		created, err := s.insertOrRecover(actorID, targetID, targetType, kind)
		if err != nil {
			return nil, err
		}
		if created && targetType == models.TargetPost {
			if err := s.posts.IncrementReactionsCount(ctx, targetID, 1); err != nil {
				s.logger.Warn("failed to bump post reaction counter", zap.String("post_id", targetID), zap.Error(err))
			}
			s.factory.PostLiked(ctx, targetID, actorID)
		}
	default:
		return nil, err
	}

	s.invalidateSummary(ctx, targetID, targetType)
	return s.Summary(ctx, targetID, targetType, &actorID)
}

// insertOrRecover inserts a new reaction, treating a constraint violation
// as "another insert won the race" and retrying as an update. Returns
// whether a new row was actually created.
func (s *ReactionService) insertOrRecover(actorID uint, targetID string, targetType models.TargetType, kind models.ReactionKind) (bool, error) {
	reaction := &models.Reaction{
		ActorID:    actorID,
		TargetID:   targetID,
		TargetType: targetType,
		Kind:       kind,
	}
	err := s.reactions.Create(reaction)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, repositories.ErrDuplicateReaction) {
		return false, err
	}

	winner, err := s.reactions.GetByActorAndTarget(actorID, targetID, targetType)
	if err != nil {
		return false, err
	}
	if winner.Kind != kind {
		if err := s.reactions.UpdateKind(winner.ID, kind); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Remove deletes the actor's reaction on a target. Fails with ErrNotFound
// when no reaction exists.
func (s *ReactionService) Remove(ctx context.Context, actorID uint, targetID string, targetType models.TargetType) error {
	if err := s.checkTarget(ctx, targetID, targetType); err != nil {
		return err
	}

	if err := s.reactions.DeleteByActorAndTarget(actorID, targetID, targetType); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no reaction by actor %d on %s %s: %w", actorID, targetType, targetID, ErrNotFound)
		}
		return err
	}

	if targetType == models.TargetPost {
		if err := s.posts.IncrementReactionsCount(ctx, targetID, -1); err != nil {
			s.logger.Warn("failed to bump post reaction counter", zap.String("post_id", targetID), zap.Error(err))
		}
	}

	s.invalidateSummary(ctx, targetID, targetType)
	return nil
}

// Summary returns the aggregate reaction counts for a target. viewerID,
// when given, populates the viewer's own reaction.
func (s *ReactionService) Summary(ctx context.Context, targetID string, targetType models.TargetType, viewerID *uint) (*models.ReactionSummary, error) {
	if err := s.checkTarget(ctx, targetID, targetType); err != nil {
		return nil, err
	}

	summary, err := s.loadSummary(ctx, targetID, targetType)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		reaction, err := s.reactions.GetByActorAndTarget(*viewerID, targetID, targetType)
		switch {
		case err == nil:
			kind := reaction.Kind
			summary.ViewerReaction = &kind
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}
	return summary, nil
}

// loadSummary computes the viewer-independent part of the summary, served
// from Redis when possible (cache-aside with write invalidation).
func (s *ReactionService) loadSummary(ctx context.Context, targetID string, targetType models.TargetType) (*models.ReactionSummary, error) {
	key := summaryCacheKey(targetID, targetType)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var summary models.ReactionSummary
			if err := json.Unmarshal([]byte(raw), &summary); err == nil {
				return &summary, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("reaction summary cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	total, err := s.reactions.CountByTarget(targetID, targetType)
	if err != nil {
		return nil, err
	}
	byKind, err := s.reactions.CountByKind(targetID, targetType)
	if err != nil {
		return nil, err
	}

	summary := &models.ReactionSummary{
		TargetID:   targetID,
		TargetType: targetType,
		Total:      total,
		ByKind:     byKind,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, key, raw, summaryCacheTTL).Err(); err != nil {
				s.logger.Warn("reaction summary cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return summary, nil
}

func (s *ReactionService) invalidateSummary(ctx context.Context, targetID string, targetType models.TargetType) {
	if s.cache == nil {
		return
	}
	key := summaryCacheKey(targetID, targetType)
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("reaction summary cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

// checkTarget verifies the reaction target exists and is reactable.
func (s *ReactionService) checkTarget(ctx context.Context, targetID string, targetType models.TargetType) error {
	switch targetType {
	case models.TargetPost:
		if _, err := s.posts.GetPostByID(ctx, targetID); err != nil {
			if errors.Is(err, repositories.ErrPostNotFound) {
				return fmt.Errorf("post %s: %w", targetID, ErrNotFound)
			}
			return err
		}
		return nil
	case models.TargetComment:
		id, err := strconv.ParseUint(targetID, 10, 32)
		if err != nil {
			return fmt.Errorf("comment id %q: %w", targetID, ErrNotFound)
		}
		comment, err := s.comments.GetCommentByID(uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("comment %s: %w", targetID, ErrNotFound)
			}
			return err
		}
		if comment.ModerationState == models.CommentDeleted {
			return fmt.Errorf("comment %s: %w", targetID, ErrNotFound)
		}
		return nil
	default:
		return fmt.Errorf("unknown target type %q: %w", targetType, ErrValidation)
	}
}

func summaryCacheKey(targetID string, targetType models.TargetType) string {
	return fmt.Sprintf("reactions:summary:%s:%s", targetType, targetID)
}
