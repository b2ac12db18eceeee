package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/iblue/backend/internal/models"
	"gorm.io/gorm"
)

type ReactionRepository interface {
	AddReaction(ctx context.Context, reaction *models.PostReaction) error
	RemoveReaction(ctx context.Context, postID, userID, emoji string) error
	CountByEmoji(ctx context.Context, postID string) ([]models.ReactionCount, error)
}

type PostgresReactionRepository struct {
	db *gorm.DB
}

func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

func (r *PostgresReactionRepository) AddReaction(ctx context.Context, reaction *models.PostReaction) error {
	err := r.db.WithContext(ctx).Create(reaction).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresReactionRepository) RemoveReaction(ctx context.Context, postID, userID, emoji string) error {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ? AND emoji = ?", postID, userID, emoji).
		Delete(&models.PostReaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReactionNotFound
	}
	return nil
}

func (r *PostgresReactionRepository) CountByEmoji(ctx context.Context, postID string) ([]models.ReactionCount, error) {
	counts := []models.ReactionCount{}
	err := r.db.WithContext(ctx).Model(&models.PostReaction{}).
		Select("emoji, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Group("emoji").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}
