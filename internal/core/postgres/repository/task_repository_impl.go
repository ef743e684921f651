package repository

import (
	"context"
	"time"

	"renotimeline/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) FindDueBetween(ctx context.Context, projectID uuid.UUID, start, end time.Time,
	priorities []domain.Priority) ([]domain.Task, error) {

	var tasks []domain.Task
	query := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Where("due_date >= ? AND due_date < ?", start, end).
		Where("status != ?", domain.TaskDone)

	if len(priorities) > 0 {
		query = query.Where("priority IN ?", priorities)
	}

	err := query.Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) FindOverdue(ctx context.Context, before time.Time) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date < ?", before).
		Where("status != ?", domain.TaskDone).
		Find(&tasks).Error

	return tasks, err
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}
