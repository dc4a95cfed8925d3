package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitpilot/internal/models"
)

// keepRecentRepos bounds the quick-pick list.
const keepRecentRepos = 20

type RecentRepoRepository interface {
	Touch(ctx context.Context, repo *models.Repository) error
	List(ctx context.Context, limit int) ([]models.RecentRepo, error)
	ClearAll(ctx context.Context) error
}

type recentRepoRepository struct {
	db *gorm.DB
}

func NewRecentRepoRepository(db *gorm.DB) RecentRepoRepository {
	return &recentRepoRepository{db: db}
}

// Touch upserts the repository keyed by full name, refreshing its
// last-used timestamp, then prunes entries beyond the keep limit.
func (r *recentRepoRepository) Touch(ctx context.Context, repo *models.Repository) error {
	if repo == nil || repo.FullName == "" {
		return fmt.Errorf("repository full name is required")
	}
	row := models.RecentRepo{
		Owner:         repo.Owner,
		Name:          repo.Name,
		FullName:      repo.FullName,
		DefaultBranch: repo.DefaultBranch,
		Private:       repo.Private,
		LastUsedAt:    time.Now(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "full_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"default_branch", "private", "last_used_at"}),
	}).Create(&row).Error; err != nil {
		return err
	}
	return r.prune(ctx)
}

func (r *recentRepoRepository) prune(ctx context.Context) error {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.RecentRepo{}).
		Order("last_used_at DESC").
		Offset(keepRecentRepos).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&models.RecentRepo{}, ids).Error
}

func (r *recentRepoRepository) List(ctx context.Context, limit int) ([]models.RecentRepo, error) {
	if limit <= 0 || limit > keepRecentRepos {
		limit = keepRecentRepos
	}
	var rows []models.RecentRepo
	if err := r.db.WithContext(ctx).
		Order("last_used_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *recentRepoRepository) ClearAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.RecentRepo{}).Error
}
