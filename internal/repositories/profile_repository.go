package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/iblue/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile *models.Profile) error
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetProfilesByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	SearchProfiles(ctx context.Context, query string, limit int) ([]models.Profile, error)
	// GetEmailOptedIn returns every profile with email notifications enabled
	// except excludeID.
	GetEmailOptedIn(ctx context.Context, excludeID string) ([]models.Profile, error)
	// RandomProfiles returns up to n random profiles, skipping excludeIDs.
	RandomProfiles(ctx context.Context, n int, excludeIDs ...string) ([]models.Profile, error)
}

// PostgresProfileRepository implements ProfileRepository for PostgreSQL
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// UpsertProfile inserts the profile. An existing row keeps its user-edited
// fields and only gets updated_at bumped.
func (r *PostgresProfileRepository) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"updated_at": gorm.Expr("NOW()")}),
	}).Create(profile).Error
}

func (r *PostgresProfileRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) GetProfilesByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error) {
	result := make(map[string]*models.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		result[profiles[i].ID] = &profiles[i]
	}
	return result, nil
}

func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// SearchProfiles searches by display name or full name (case-insensitive)
func (r *PostgresProfileRepository) SearchProfiles(ctx context.Context, query string, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("display_name ILIKE ? OR full_name ILIKE ?", pattern, pattern).
		Order("display_name ASC").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}

func (r *PostgresProfileRepository) GetEmailOptedIn(ctx context.Context, excludeID string) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Where("email_notifications_enabled = ? AND id <> ?", true, excludeID).
		Find(&profiles).Error
	return profiles, err
}

func (r *PostgresProfileRepository) RandomProfiles(ctx context.Context, n int, excludeIDs ...string) ([]models.Profile, error) {
	var profiles []models.Profile
	q := r.db.WithContext(ctx).Order("random()").Limit(n)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	err := q.Find(&profiles).Error
	return profiles, err
}
