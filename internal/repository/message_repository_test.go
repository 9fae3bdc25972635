package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMessageRepositoryHistory(t *testing.T) {
	db, mock, cleanup := newMessageMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	rows := sqlmock.NewRows([]string{"messageid", "groupid", "userid", "username", "messagecontent", "datesent", "timesent"}).
		AddRow("m1", "g1", "u1", "ana", "hello", "2026-03-10", 34215).
		AddRow("m2", "g1", "u2", "bob", "hi", "2026-03-10", 34230)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT m.messageid, m.groupid, m.userid, u.username, m.messagecontent, to_char(m.datesent, 'YYYY-MM-DD') AS datesent, m.timesent FROM messagecollections m JOIN users u ON m.userid = u.userid WHERE m.groupid = $1 ORDER BY m.datesent ASC, m.timesent ASC LIMIT $2")).
		WithArgs("g1", 200).
		WillReturnRows(rows)

	messages, err := repo.History(context.Background(), "g1", 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "ana", messages[0].Username)
	assert.Equal(t, 34230, messages[1].TimeSent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryHistoryEmptyGroup(t *testing.T) {
	db, mock, cleanup := newMessageMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	mock.ExpectQuery("SELECT m.messageid").
		WithArgs("g1", 50).
		WillReturnRows(sqlmock.NewRows([]string{"messageid", "groupid", "userid", "username", "messagecontent", "datesent", "timesent"}))

	messages, err := repo.History(context.Background(), "g1", 50)
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryAppend(t *testing.T) {
	db, mock, cleanup := newMessageMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	rows := sqlmock.NewRows([]string{"messageid", "groupid", "userid", "messagecontent", "datesent", "timesent"}).
		AddRow("m1", "g1", "u1", "hello", "2026-03-10", 34215)
	mock.ExpectQuery("INSERT INTO messagecollections").
		WithArgs(sqlmock.AnyArg(), "g1", "u1", "hello", 34215).
		WillReturnRows(rows)

	msg, err := repo.Append(context.Background(), "g1", "u1", "hello", 34215)
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "2026-03-10", msg.DateSent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryLatestPerGroup(t *testing.T) {
	db, mock, cleanup := newMessageMock(t)
	defer cleanup()
	repo := NewMessageRepository(db)

	rows := sqlmock.NewRows([]string{"groupid", "messagecontent"}).
		AddRow("g1", "see you tomorrow").
		AddRow("g2", "done with the draft")
	mock.ExpectQuery("SELECT groupid, messagecontent FROM").
		WithArgs("u1").
		WillReturnRows(rows)

	latest, err := repo.LatestPerGroup(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "see you tomorrow", latest[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}
