package repositories

import (
	"InnerCompassGo/models"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScoreRepository 当前评分，每个用户一条
type ScoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) GetScore(ctx context.Context, userID string) (models.ScoreSnapshot, error) {
	var snapshot models.ScoreSnapshot
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&snapshot).Error
	return snapshot, translate(err)
}

// ReplaceScore 整条覆盖
func (r *ScoreRepository) ReplaceScore(ctx context.Context, snapshot models.ScoreSnapshot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&snapshot).Error
}
