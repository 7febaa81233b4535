package services

import (
	"context"
	"database/sql"
	"slices"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/models"
	servermodels "github.com/dmitrijs2005/gophtasks/internal/server/models"
	tasksrepo "github.com/dmitrijs2005/gophtasks/internal/server/repositories/tasks"
	usersrepo "github.com/dmitrijs2005/gophtasks/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fakeTasksRepo is an in-memory task store keyed by id.
type fakeTasksRepo struct {
	byID  map[string]models.Task
	order []string
	seq   int

	findErr   error
	insertErr error
	updateErr error
	deleteErr error

	updates int
	deletes int
}

func newFakeTasksRepo(tasks ...models.Task) *fakeTasksRepo {
	f := &fakeTasksRepo{byID: map[string]models.Task{}}
	for _, t := range tasks {
		f.byID[t.ID] = t
		f.order = append(f.order, t.ID)
	}
	return f
}

func (f *fakeTasksRepo) FindByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := []models.Task{}
	for _, id := range slices.Backward(f.order) {
		if t := f.byID[id]; t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasksRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t.Tags = slices.Clone(t.Tags)
	return &t, nil
}

func (f *fakeTasksRepo) Insert(ctx context.Context, task *models.Task) (*models.Task, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.seq++
	t := *task
	t.ID = "task-" + string(rune('0'+f.seq))
	f.byID[t.ID] = t
	f.order = append(f.order, t.ID)
	return &t, nil
}

func (f *fakeTasksRepo) UpdateByID(ctx context.Context, task *models.Task) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[task.ID]; !ok {
		return common.ErrorNotFound
	}
	f.updates++
	f.byID[task.ID] = *task
	return nil
}

func (f *fakeTasksRepo) DeleteByID(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	f.deletes++
	delete(f.byID, id)
	f.order = slices.DeleteFunc(f.order, func(s string) bool { return s == id })
	return nil
}

type fakeUsersRepo struct {
	createErr error
	created   *servermodels.User

	getOut *servermodels.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *servermodels.User) (*servermodels.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "u-new"
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*servermodels.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRepoManager struct {
	t *fakeTasksRepo
	u *fakeUsersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository        { return m.u }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository        { return m.t }

type fakeCredentials struct {
	issued string
	err    error
}

func (f *fakeCredentials) Issue(userID, userName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued = userID
	return "token-for-" + userID, nil
}

func (f *fakeCredentials) Verify(token string) (string, error) {
	return "", common.ErrInvalidToken
}
