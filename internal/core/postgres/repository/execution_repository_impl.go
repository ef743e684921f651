package repository

import (
	"context"

	"renotimeline/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type executionRepository struct {
	db *gorm.DB
}

// NewExecutionRepository creates a new instance of ExecutionRepository
func NewExecutionRepository(db *gorm.DB) *executionRepository {
	return &executionRepository{db: db}
}

func (r *executionRepository) Create(ctx context.Context, execution *domain.WorkflowExecution) error {
	return r.db.WithContext(ctx).Create(execution).Error
}

func (r *executionRepository) Finalize(ctx context.Context, executionID uuid.UUID, status domain.ExecutionStatus,
	executedActions datatypes.JSON, errorMessage string) error {

	result := r.db.WithContext(ctx).
		Model(&domain.WorkflowExecution{}).
		Where("id = ? AND status = ?", executionID, domain.ExecutionPending).
		Updates(map[string]interface{}{
			"status":           status,
			"executed_actions": executedActions,
			"error_message":    errorMessage,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound // Execution was already finalized
	}

	return nil
}
