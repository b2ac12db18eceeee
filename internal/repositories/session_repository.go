package repositories

import (
	"context"
	"time"

	"github.com/anonto42/iblue/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository stores presence heartbeats.
type SessionRepository interface {
	Touch(ctx context.Context, userID string, at time.Time) error
	SetOffline(ctx context.Context, userID string) error
	// ActiveSince returns users among userIDs whose last_active is at or
	// after since, or who are flagged online. Empty userIDs means everyone.
	ActiveSince(ctx context.Context, since time.Time, userIDs []string) (map[string]bool, error)
}

type PostgresSessionRepository struct {
	db *gorm.DB
}

func NewPostgresSessionRepository(db *gorm.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Touch(ctx context.Context, userID string, at time.Time) error {
	session := models.UserSession{UserID: userID, LastActive: at, IsOnline: true}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_active", "is_online", "updated_at"}),
	}).Create(&session).Error
}

func (r *PostgresSessionRepository) SetOffline(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&models.UserSession{}).
		Where("user_id = ?", userID).
		Update("is_online", false).Error
}

func (r *PostgresSessionRepository) ActiveSince(ctx context.Context, since time.Time, userIDs []string) (map[string]bool, error) {
	q := r.db.WithContext(ctx).Model(&models.UserSession{}).
		Where("last_active >= ? OR is_online = ?", since, true)
	if len(userIDs) > 0 {
		q = q.Where("user_id IN ?", userIDs)
	}
	var ids []string
	if err := q.Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	active := make(map[string]bool, len(ids))
	for _, id := range ids {
		active[id] = true
	}
	return active, nil
}
