package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hmasuda/todo-api/internal/models"
)

type TodoRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo TodoRepository
}

func (suite *TodoRepositoryTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{}, &models.Todo{})
	suite.Require().NoError(err)

	suite.repo = NewTodoRepository(suite.db)
}

func (suite *TodoRepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TodoRepositoryTestSuite) createTodo(ownerID uint64, text string, mutate ...func(*models.Todo)) *models.Todo {
	todo := &models.Todo{
		Text:    text,
		OwnerID: ownerID,
	}
	for _, m := range mutate {
		m(todo)
	}
	suite.Require().NoError(suite.db.Create(todo).Error)
	return todo
}

func (suite *TodoRepositoryTestSuite) orderOf(id uint64) int {
	var todo models.Todo
	suite.Require().NoError(suite.db.First(&todo, id).Error)
	return todo.Order
}

func (suite *TodoRepositoryTestSuite) TestReorder_AssignsPositions() {
	a := suite.createTodo(1, "a")
	b := suite.createTodo(1, "b")
	c := suite.createTodo(1, "c")

	err := suite.repo.Reorder(1, []uint64{c.ID, a.ID, b.ID})
	suite.Require().NoError(err)

	suite.Equal(0, suite.orderOf(c.ID))
	suite.Equal(1, suite.orderOf(a.ID))
	suite.Equal(2, suite.orderOf(b.ID))
}

func (suite *TodoRepositoryTestSuite) TestReorder_Idempotent() {
	a := suite.createTodo(1, "a")
	b := suite.createTodo(1, "b")

	ids := []uint64{b.ID, a.ID}
	suite.Require().NoError(suite.repo.Reorder(1, ids))
	suite.Require().NoError(suite.repo.Reorder(1, ids))

	suite.Equal(0, suite.orderOf(b.ID))
	suite.Equal(1, suite.orderOf(a.ID))
}

func (suite *TodoRepositoryTestSuite) TestReorder_MissingIDsGetZero() {
	a := suite.createTodo(1, "a")
	b := suite.createTodo(1, "b")
	suite.Require().NoError(suite.db.Model(&models.Todo{}).Where("id = ?", b.ID).Update("sort_order", 7).Error)

	err := suite.repo.Reorder(1, []uint64{a.ID})
	suite.Require().NoError(err)

	suite.Equal(0, suite.orderOf(a.ID))
	suite.Equal(0, suite.orderOf(b.ID))
}

func (suite *TodoRepositoryTestSuite) TestReorder_ForeignIDsIgnored() {
	mine := suite.createTodo(1, "mine")
	other := suite.createTodo(2, "other")
	suite.Require().NoError(suite.db.Model(&models.Todo{}).Where("id = ?", other.ID).Update("sort_order", 5).Error)

	err := suite.repo.Reorder(1, []uint64{other.ID, mine.ID})
	suite.Require().NoError(err)

	// The other user's todo keeps its position; mine takes its list index.
	suite.Equal(5, suite.orderOf(other.ID))
	suite.Equal(1, suite.orderOf(mine.ID))
}

func (suite *TodoRepositoryTestSuite) TestReorder_EmptyListZeroesEverything() {
	a := suite.createTodo(1, "a")
	suite.Require().NoError(suite.db.Model(&models.Todo{}).Where("id = ?", a.ID).Update("sort_order", 3).Error)

	err := suite.repo.Reorder(1, []uint64{})
	suite.Require().NoError(err)

	suite.Equal(0, suite.orderOf(a.ID))
}

func (suite *TodoRepositoryTestSuite) TestFindDueRecurring() {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	daily := models.RecurrenceDaily
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	anchor := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)

	never := suite.createTodo(1, "never scheduled", func(t *models.Todo) {
		t.Recurrence = &daily
		t.Date = &anchor
	})
	due := suite.createTodo(1, "due", func(t *models.Todo) {
		t.Recurrence = &daily
		t.Date = &anchor
		t.NextRecurrence = &past
	})
	notDue := suite.createTodo(1, "not due", func(t *models.Todo) {
		t.Recurrence = &daily
		t.Date = &anchor
		t.NextRecurrence = &future
	})
	suite.createTodo(1, "one-off")
	suite.createTodo(1, "generated instance", func(t *models.Todo) {
		t.Recurrence = &daily
		t.Date = &anchor
		t.IsRecurringInstance = true
	})

	todos, err := suite.repo.FindDueRecurring(now)
	suite.Require().NoError(err)

	ids := make([]uint64, len(todos))
	for i, t := range todos {
		ids[i] = t.ID
	}
	suite.ElementsMatch([]uint64{never.ID, due.ID}, ids)
	suite.NotContains(ids, notDue.ID)
}

func (suite *TodoRepositoryTestSuite) TestDeleteCompletedBefore() {
	cutoff := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)
	daily := models.RecurrenceDaily

	swept := suite.createTodo(1, "old completed", func(t *models.Todo) {
		t.Completed = true
		t.Date = &old
	})
	keptRecent := suite.createTodo(1, "recent completed", func(t *models.Todo) {
		t.Completed = true
		t.Date = &recent
	})
	keptOpen := suite.createTodo(1, "old open", func(t *models.Todo) {
		t.Date = &old
	})
	keptRecurring := suite.createTodo(1, "old recurring", func(t *models.Todo) {
		t.Completed = true
		t.Date = &old
		t.Recurrence = &daily
	})
	keptDateless := suite.createTodo(1, "completed no date", func(t *models.Todo) {
		t.Completed = true
	})
	keptInstance := suite.createTodo(1, "old instance", func(t *models.Todo) {
		t.Completed = true
		t.Date = &old
		t.IsRecurringInstance = true
	})

	deleted, err := suite.repo.DeleteCompletedBefore(cutoff)
	suite.Require().NoError(err)
	suite.Equal(int64(1), deleted)

	suite.ErrorIs(suite.db.First(&models.Todo{}, swept.ID).Error, gorm.ErrRecordNotFound)
	for _, id := range []uint64{keptRecent.ID, keptOpen.ID, keptRecurring.ID, keptDateless.ID, keptInstance.ID} {
		suite.NoError(suite.db.First(&models.Todo{}, id).Error)
	}
}

func (suite *TodoRepositoryTestSuite) TestFindByOwnerAndID_ScopedToOwner() {
	todo := suite.createTodo(1, "mine")

	found, err := suite.repo.FindByOwnerAndID(1, todo.ID)
	suite.Require().NoError(err)
	suite.Equal(todo.ID, found.ID)

	_, err = suite.repo.FindByOwnerAndID(2, todo.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TodoRepositoryTestSuite) TestCountByOwner() {
	suite.createTodo(1, "a")
	suite.createTodo(1, "b")
	suite.createTodo(2, "c")

	count, err := suite.repo.CountByOwner(1)
	suite.Require().NoError(err)
	suite.Equal(int64(2), count)
}

func TestTodoRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TodoRepositoryTestSuite))
}

// TestReorder_RollsBackOnFailure injects a write failure on the second
// position update and verifies the transaction is rolled back, leaving no
// partial reorder behind.
func TestReorder_RollsBackOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	writeErr := errors.New("write failed")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `todos` WHERE owner_id = .*").
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "completed", "owner_id", "sort_order"}).
			AddRow(1, "a", false, 1, 0).
			AddRow(2, "b", false, 1, 1))
	mock.ExpectExec("UPDATE `todos` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `todos` SET").
		WillReturnError(writeErr)
	mock.ExpectRollback()

	repo := NewTodoRepository(db)
	err = repo.Reorder(1, []uint64{2, 1})
	require.ErrorIs(t, err, writeErr)

	require.NoError(t, mock.ExpectationsWereMet())
}
