// Package services contains server-side business logic. This file implements
// TaskService: ownership checks, allow-listed updates and creation defaults.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtasks/internal/view"
)

// TaskService manages the tasks of authenticated owners.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

// NewTaskService constructs a TaskService over db.
func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m, now: time.Now}
}

// List returns every task of ownerID, newest first.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]models.Task, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthenticated
	}
	tasks, err := s.repomanager.Tasks(s.db).FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return tasks, nil
}

// View lists the owner's tasks through the view engine.
func (s *TaskService) View(ctx context.Context, ownerID string, q view.Query) ([]models.Task, error) {
	tasks, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return view.Apply(tasks, q, s.now()), nil
}

// Stats summarises the owner's full, unfiltered task list.
func (s *TaskService) Stats(ctx context.Context, ownerID string) (view.Stats, error) {
	tasks, err := s.List(ctx, ownerID)
	if err != nil {
		return view.Stats{}, err
	}
	return view.ComputeStats(tasks, s.now()), nil
}

// Create validates in, applies defaults and stores a new task for ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, in models.NewTask) (*models.Task, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthenticated
	}
	n, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	now := s.now()
	task := &models.Task{
		Text:      n.Text,
		Priority:  n.Priority,
		Tags:      n.Tags,
		DueDate:   n.DueDate,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repomanager.Tasks(s.db).Insert(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return created, nil
}

// Update applies the allow-listed fields of patch to the task. The
// ownership check and the write share one transaction.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthenticated
	}

	return dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Task, error) {
		repo := s.repomanager.Tasks(tx)

		task, err := s.owned(ctx, repo.FindByID, ownerID, taskID)
		if err != nil {
			return nil, err
		}
		if err := patch.Validate(); err != nil {
			return nil, err
		}

		patch.ApplyTo(task)
		task.UpdatedAt = s.now()
		if task.UpdatedAt.Before(task.CreatedAt) {
			task.UpdatedAt = task.CreatedAt
		}

		if err := repo.UpdateByID(ctx, task); err != nil {
			return nil, fmt.Errorf("error updating task: %w", err)
		}
		return task, nil
	})
}

// Delete removes the task and returns it as it was before deletion.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthenticated
	}

	return dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Task, error) {
		repo := s.repomanager.Tasks(tx)

		task, err := s.owned(ctx, repo.FindByID, ownerID, taskID)
		if err != nil {
			return nil, err
		}
		if err := repo.DeleteByID(ctx, task.ID); err != nil {
			return nil, fmt.Errorf("error deleting task: %w", err)
		}
		return task, nil
	})
}

func (s *TaskService) owned(ctx context.Context, find func(context.Context, string) (*models.Task, error), ownerID, taskID string) (*models.Task, error) {
	task, err := find(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("error loading task: %w", err)
	}
	if task.OwnerID != ownerID {
		return nil, common.ErrorForbidden
	}
	return task, nil
}
