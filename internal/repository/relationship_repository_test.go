package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/ChungangLions/backend/internal/models"
)

func newRelationshipRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRelationshipRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRelationshipRepoMock(t)
	defer cleanup()

	repo := NewRelationshipRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO relationship_signals")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	signal := &models.RelationshipSignal{FromID: "student-1", ToID: "owner-1", Kind: models.SignalLike}
	require.NoError(t, repo.Create(context.Background(), signal))
	require.NotEmpty(t, signal.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRelationshipRepositoryCreateUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRelationshipRepoMock(t)
	defer cleanup()

	repo := NewRelationshipRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO relationship_signals")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.RelationshipSignal{FromID: "student-1", ToID: "owner-1", Kind: models.SignalLike})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRelationshipRepositoryDeleteReportsExistence(t *testing.T) {
	db, mock, cleanup := newRelationshipRepoMock(t)
	defer cleanup()

	repo := NewRelationshipRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM relationship_signals")).
		WithArgs("student-1", "owner-1", "LIKE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	removed, err := repo.Delete(context.Background(), "student-1", "owner-1", models.SignalLike)
	require.NoError(t, err)
	require.True(t, removed)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM relationship_signals")).
		WithArgs("student-1", "owner-1", "LIKE").
		WillReturnResult(sqlmock.NewResult(0, 0))
	removed, err = repo.Delete(context.Background(), "student-1", "owner-1", models.SignalLike)
	require.NoError(t, err)
	require.False(t, removed)

	require.NoError(t, mock.ExpectationsWereMet())
}
