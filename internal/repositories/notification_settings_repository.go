package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bloggingapp/engagement-backend/internal/models"
)

// NotificationSettingsRepository defines the interface for per-user
// outbound notification preferences
type NotificationSettingsRepository interface {
	GetByUserID(userID uint) (*models.NotificationSettings, error)
	Upsert(settings *models.NotificationSettings) error
}

type postgresNotificationSettingsRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationSettingsRepository creates the PostgreSQL-backed
// implementation
func NewPostgresNotificationSettingsRepository(db *gorm.DB) NotificationSettingsRepository {
	return &postgresNotificationSettingsRepository{db: db}
}

func (r *postgresNotificationSettingsRepository) GetByUserID(userID uint) (*models.NotificationSettings, error) {
	var settings models.NotificationSettings
	if err := r.db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *postgresNotificationSettingsRepository) Upsert(settings *models.NotificationSettings) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"whats_app_number", "whats_app_enabled", "updated_at"}),
	}).Create(settings).Error
}
