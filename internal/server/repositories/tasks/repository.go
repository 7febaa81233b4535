package tasks

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/models"
)

// Repository is the Task Store. Ownership is enforced by callers; the store
// only looks tasks up by owner or by id.
type Repository interface {
	FindByOwner(ctx context.Context, ownerID string) ([]models.Task, error)
	FindByID(ctx context.Context, id string) (*models.Task, error)
	Insert(ctx context.Context, task *models.Task) (*models.Task, error)
	UpdateByID(ctx context.Context, task *models.Task) error
	DeleteByID(ctx context.Context, id string) error
}
