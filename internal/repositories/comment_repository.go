package repositories

import (
	"gorm.io/gorm"

	"github.com/bloggingapp/engagement-backend/internal/models"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	GetCommentsByThreadRoot(threadRootID string) ([]models.Comment, error)
	GetDirectReplies(parentID uint) ([]models.Comment, error)
	UpdateComment(comment *models.Comment) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByThreadRoot retrieves all comments anchored to a post,
// oldest first
func (r *PostgresCommentRepository) GetCommentsByThreadRoot(threadRootID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("thread_root_id = ?", threadRootID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// GetDirectReplies retrieves the immediate children of a comment (one
// level only), oldest first
func (r *PostgresCommentRepository) GetDirectReplies(parentID uint) ([]models.Comment, error) {
	var replies []models.Comment
	err := r.db.Where("parent_comment_id = ?", parentID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// UpdateComment updates an existing comment in PostgreSQL
func (r *PostgresCommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Save(comment).Error
}
