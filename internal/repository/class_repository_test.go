package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grindhub/grindhub-api/internal/models"
)

func newClassMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestClassRepositoryListByUserReturnsDateStrings(t *testing.T) {
	db, mock, cleanup := newClassMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"classid", "userid", "modulename", "classtype", "classlocation", "startdate", "starttime", "enddate", "endtime"}).
		AddRow("c1", "u1", "CS2040", "Lecture", "LT19", "2026-03-10", 840, "2026-03-10", 960)
	mock.ExpectQuery("SELECT classid, userid, modulename").
		WithArgs("u1").
		WillReturnRows(rows)

	classes, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "2026-03-10", classes[0].StartDate)
	assert.Equal(t, 840, classes[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newClassMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO class").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	class := &models.Class{UserID: "u1", ModuleName: "CS2040", ClassType: "Lecture", StartDate: "2026-03-10", StartTime: 840, EndDate: "2026-03-10", EndTime: 960}
	err := repo.Create(context.Background(), class)
	require.NoError(t, err)
	assert.NotEmpty(t, class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
