package repositories

import (
	"InnerCompassGo/models"
	"context"

	"gorm.io/gorm"
)

// TaskRepository 推荐任务读写
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListTasks 用户全部任务，包括已被替换的批次，用于计算完成率
func (r *TaskRepository) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("assigned_at desc").
		Find(&tasks).Error
	return tasks, err
}

// CurrentBatch 当前未被替换的批次
func (r *TaskRepository) CurrentBatch(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND superseded = ?", userID, false).
		Order("assigned_at desc, id").
		Find(&tasks).Error
	return tasks, err
}

// ReplaceBatch 在同一事务中将旧批次标记为 superseded 并写入新批次
func (r *TaskRepository) ReplaceBatch(ctx context.Context, userID string, tasks []models.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("user_id = ? AND superseded = ?", userID, false).
			Update("superseded", true).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}
		return tx.Create(&tasks).Error
	})
}

// ToggleTask 切换完成状态，只能修改自己的任务
func (r *TaskRepository) ToggleTask(ctx context.Context, userID, taskID string) (models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
			return translate(err)
		}
		task.IsCompleted = !task.IsCompleted
		return tx.Model(&task).Update("is_completed", task.IsCompleted).Error
	})
	return task, err
}
