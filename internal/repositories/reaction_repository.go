package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/bloggingapp/engagement-backend/internal/models"
)

// ErrDuplicateReaction is returned by Create when the unique
// (actor, target) constraint rejects the insert. Callers treat it as
// "another insert won the race" and retry as an update.
var ErrDuplicateReaction = errors.New("reaction already exists for this actor and target")

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	Create(reaction *models.Reaction) error
	UpdateKind(id uint, kind models.ReactionKind) error
	GetByActorAndTarget(actorID uint, targetID string, targetType models.TargetType) (*models.Reaction, error)
	DeleteByActorAndTarget(actorID uint, targetID string, targetType models.TargetType) error
	CountByTarget(targetID string, targetType models.TargetType) (int64, error)
	CountByKind(targetID string, targetType models.TargetType) (map[models.ReactionKind]int64, error)
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

// Create inserts a new reaction. A unique-constraint violation is
// translated to ErrDuplicateReaction; the database is the authoritative
// arbiter of whether a row already exists.
func (r *PostgresReactionRepository) Create(reaction *models.Reaction) error {
	if err := r.db.Create(reaction).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReaction
		}
		return err
	}
	return nil
}

// UpdateKind changes the kind of an existing reaction in place
func (r *PostgresReactionRepository) UpdateKind(id uint, kind models.ReactionKind) error {
	res := r.db.Model(&models.Reaction{}).Where("id = ?", id).Update("kind", kind)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByActorAndTarget retrieves the actor's reaction on a target, if any
func (r *PostgresReactionRepository) GetByActorAndTarget(actorID uint, targetID string, targetType models.TargetType) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.Where("actor_id = ? AND target_id = ? AND target_type = ?", actorID, targetID, targetType).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// DeleteByActorAndTarget removes the actor's reaction on a target
func (r *PostgresReactionRepository) DeleteByActorAndTarget(actorID uint, targetID string, targetType models.TargetType) error {
	res := r.db.Where("actor_id = ? AND target_id = ? AND target_type = ?", actorID, targetID, targetType).
		Delete(&models.Reaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByTarget returns the total number of reactions on a target
func (r *PostgresReactionRepository) CountByTarget(targetID string, targetType models.TargetType) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reaction{}).
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Count(&count).Error
	return count, err
}

// CountByKind returns reaction counts on a target grouped by kind
func (r *PostgresReactionRepository) CountByKind(targetID string, targetType models.TargetType) (map[models.ReactionKind]int64, error) {
	var rows []struct {
		Kind  models.ReactionKind
		Count int64
	}
	err := r.db.Model(&models.Reaction{}).
		Select("kind, count(*) as count").
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ReactionKind]int64, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Count
	}
	return counts, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
