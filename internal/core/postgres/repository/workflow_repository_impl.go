package repository

import (
	"context"
	"time"

	"renotimeline/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new instance of WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) *workflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) ListActiveByTrigger(ctx context.Context, trigger domain.TriggerType) ([]domain.WorkflowDefinition, error) {
	var definitions []domain.WorkflowDefinition
	err := r.db.WithContext(ctx).
		Where("trigger_type = ? AND is_active = ?", trigger, true).
		Order("created_at ASC").
		Find(&definitions).Error

	return definitions, err
}

func (r *workflowRepository) UpdateLastExecuted(ctx context.Context, workflowID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.WorkflowDefinition{}).
		Where("id = ?", workflowID).
		Update("last_executed", at).Error
}
