package tasks

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var cols = []string{"id", "owner_id", "text", "completed", "priority", "tags", "due_date", "archived", "important", "created_at", "updated_at"}

const (
	selectByOwnerQ = `(?s)^SELECT\s+id,.*updated_at\s+FROM\s+tasks\s+WHERE\s+owner_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC\s*$`
	selectByIDQ    = `(?s)^SELECT\s+id,.*updated_at\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s*$`
	insertQ        = `(?s)^INSERT\s+INTO\s+tasks\s*\(id,\s*owner_id,.*\)\s*VALUES\s*\(\$1,.*\$11\)\s*$`
	updateQ        = `^UPDATE tasks SET text = \$1, completed = \$2, priority = \$3, tags = \$4, due_date = \$5, archived = \$6, important = \$7, updated_at = \$8 WHERE id = \$9$`
	deleteQ        = `^DELETE FROM tasks WHERE id = \$1$`
)

var (
	created = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	updated = created.Add(time.Hour)
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestFindByOwner_MapsRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	due := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(cols).
		AddRow("t2", "u1", "Pay rent", false, "high", []byte(`["home","money"]`), due, false, true, updated, updated).
		AddRow("t1", "u1", "Gym", true, "low", []byte(`[]`), nil, true, false, created, created)
	mock.ExpectQuery(selectByOwnerQ).WithArgs("u1").WillReturnRows(rows)

	got, err := repo.FindByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindByOwner error: %v", err)
	}

	d := models.MustParseDate("2024-06-03")
	want := []models.Task{
		{ID: "t2", OwnerID: "u1", Text: "Pay rent", Priority: models.PriorityHigh, Tags: []string{"home", "money"},
			DueDate: &d, Important: true, CreatedAt: updated, UpdatedAt: updated},
		{ID: "t1", OwnerID: "u1", Text: "Gym", Completed: true, Priority: models.PriorityLow, Tags: []string{},
			Archived: true, CreatedAt: created, UpdatedAt: created},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByOwner_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByOwnerQ).WithArgs("u1").WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.FindByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindByOwner error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestFindByOwner_Errors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByOwnerQ).WithArgs("u1").WillReturnError(errors.New("db down"))
	if _, err := repo.FindByOwner(context.Background(), "u1"); err == nil ||
		!regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}

	rows := sqlmock.NewRows(cols).
		AddRow("t1", "u1", "x", false, "low", []byte(`[]`), nil, false, false, created, created).
		RowError(0, errors.New("row broke"))
	mock.ExpectQuery(selectByOwnerQ).WithArgs("u1").WillReturnRows(rows)
	if _, err := repo.FindByOwner(context.Background(), "u1"); err == nil {
		t.Fatal("expected row error")
	}
}

func TestFindByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByIDQ).WithArgs("t1").WillReturnRows(sqlmock.NewRows(cols).
		AddRow("t1", "u1", "Gym", false, "medium", []byte(`["health"]`), nil, false, false, created, created))

	got, err := repo.FindByID(context.Background(), "t1")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got.OwnerID != "u1" || got.DueDate != nil || got.Tags[0] != "health" {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByIDQ).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(selectByIDQ).WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation})

	if _, err := repo.FindByID(context.Background(), "missing"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if _, err := repo.FindByID(context.Background(), "not-a-uuid"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectByIDQ).WithArgs("t1").WillReturnError(errors.New("boom"))
	_, err := repo.FindByID(context.Background(), "t1")
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want db error, got %v", err)
	}
}

func TestInsert_AssignsID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	orig := newID
	newID = func() (string, error) { return "new-id", nil }
	defer func() { newID = orig }()

	d := models.MustParseDate("2024-06-05")
	mock.ExpectExec(insertQ).
		WithArgs("new-id", "u1", "Write report", false, "high", `["work"]`,
			time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), false, false, created, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	in := &models.Task{OwnerID: "u1", Text: "Write report", Priority: models.PriorityHigh,
		Tags: []string{"work"}, DueDate: &d, CreatedAt: created, UpdatedAt: created}
	got, err := repo.Insert(context.Background(), in)
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if got.ID != "new-id" || in.ID != "" {
		t.Fatalf("id not assigned on copy: got=%q in=%q", got.ID, in.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsert_NilTagsStoredAsEmptyArray(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WithArgs(sqlmock.AnyArg(), "u1", "x", false, "medium", `[]`, nil, false, false, created, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Insert(context.Background(), &models.Task{OwnerID: "u1", Text: "x",
		Priority: models.PriorityMedium, CreatedAt: created, UpdatedAt: created})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if got.Tags == nil || got.ID == "" {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestInsert_Errors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	orig := newID
	defer func() { newID = orig }()

	newID = func() (string, error) { return "", errors.New("no entropy") }
	if _, err := repo.Insert(context.Background(), &models.Task{}); err == nil {
		t.Fatal("expected id error")
	}

	newID = func() (string, error) { return "id", nil }
	mock.ExpectExec(insertQ).WillReturnError(errors.New("db down"))
	if _, err := repo.Insert(context.Background(), &models.Task{}); err == nil ||
		!regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdateByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQ).
		WithArgs("new text", true, "low", `["a"]`, nil, true, false, updated, "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateByID(context.Background(), &models.Task{ID: "t1", OwnerID: "u1", Text: "new text",
		Completed: true, Priority: models.PriorityLow, Tags: []string{"a"}, Archived: true, UpdatedAt: updated})
	if err != nil {
		t.Fatalf("UpdateByID error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateByID_NoRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQ).WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateByID(context.Background(), &models.Task{ID: "t1", Priority: models.PriorityLow})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDeleteByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQ).WithArgs("t2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteQ).WithArgs("t3").WillReturnError(errors.New("db down"))

	if err := repo.DeleteByID(context.Background(), "t1"); err != nil {
		t.Fatalf("DeleteByID error: %v", err)
	}
	if err := repo.DeleteByID(context.Background(), "t2"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := repo.DeleteByID(context.Background(), "t3"); err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want db error, got %v", err)
	}
}

func TestDeleteByID_RowsAffectedError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs("t1").WillReturnResult(sqlmock.NewErrorResult(errors.New("no count")))
	if err := repo.DeleteByID(context.Background(), "t1"); err == nil {
		t.Fatal("expected error")
	}
}
