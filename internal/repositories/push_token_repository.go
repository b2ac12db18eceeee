package repositories

import (
	"context"

	"github.com/anonto42/iblue/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PushTokenRepository interface {
	Register(ctx context.Context, token *models.PushToken) error
	Unregister(ctx context.Context, userID, token string) error
	TokensForUser(ctx context.Context, userID string) ([]string, error)
	DeleteTokens(ctx context.Context, tokens []string) error
}

type PostgresPushTokenRepository struct {
	db *gorm.DB
}

func NewPostgresPushTokenRepository(db *gorm.DB) *PostgresPushTokenRepository {
	return &PostgresPushTokenRepository{db: db}
}

// Register stores token for the user. A token moving to another account is
// reassigned.
func (r *PostgresPushTokenRepository) Register(ctx context.Context, token *models.PushToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_name"}),
	}).Create(token).Error
}

func (r *PostgresPushTokenRepository) Unregister(ctx context.Context, userID, token string) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND token = ?", userID, token).Delete(&models.PushToken{}).Error
}

func (r *PostgresPushTokenRepository) TokensForUser(ctx context.Context, userID string) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).Model(&models.PushToken{}).Where("user_id = ?", userID).Pluck("token", &tokens).Error
	return tokens, err
}

func (r *PostgresPushTokenRepository) DeleteTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("token IN ?", tokens).Delete(&models.PushToken{}).Error
}
