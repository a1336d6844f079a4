package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ChungangLions/backend/internal/models"
)

func newProposalRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestProposalRepositoryCreateSeedsLedgerInOneTx(t *testing.T) {
	db, mock, cleanup := newProposalRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO proposals")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO proposal_status_events")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	proposal := &models.Proposal{
		AuthorID:           "group-1",
		RecipientID:        "owner-1",
		SenderName:         "council",
		RecipientName:      "cafe",
		Title:              "Fall partnership",
		Contents:           "details",
		ContactInfo:        "council@example.com",
		PartnershipTypes:   models.PartnershipTypeList{models.PartnershipDiscount},
		ApplyTarget:        models.ApplyTargetGroupMembers,
		TimeWindows:        models.TimeWindowList{},
		BenefitDescription: "10% off",
	}
	seed := &models.ProposalStatusEvent{Status: models.StatusUnread, ChangedByID: "owner-1"}

	require.NoError(t, repo.Create(context.Background(), proposal, seed))
	require.NotEmpty(t, proposal.ID)
	require.NotEmpty(t, seed.ID)
	require.Equal(t, proposal.ID, seed.ProposalID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryCreateRollsBackOnSeedFailure(t *testing.T) {
	db, mock, cleanup := newProposalRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO proposals")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO proposal_status_events")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Proposal{AuthorID: "a", RecipientID: "b"},
		&models.ProposalStatusEvent{Status: models.StatusUnread, ChangedByID: "b"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryAppendStatusEvent(t *testing.T) {
	db, mock, cleanup := newProposalRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)

	event := &models.ProposalStatusEvent{
		ProposalID:  "prop-1",
		Status:      models.StatusRead,
		ChangedByID: "owner-1",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM proposals WHERE id = $1 FOR UPDATE")).
		WithArgs("prop-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("prop-1"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO proposal_status_events")).
		WithArgs(sqlmock.AnyArg(), "prop-1", "READ", "owner-1", sqlmock.AnyArg(), "", "evt-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.AppendStatusEvent(context.Background(), event, "evt-1"))
	require.NotEmpty(t, event.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryAppendStatusEventConflict(t *testing.T) {
	db, mock, cleanup := newProposalRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)

	// The guard matched nothing: a competing append already advanced the
	// ledger past the expected prior event. The transaction rolls back and
	// the caller re-reads.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM proposals WHERE id = $1 FOR UPDATE")).
		WithArgs("prop-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("prop-1"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO proposal_status_events")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.AppendStatusEvent(context.Background(), &models.ProposalStatusEvent{
		ProposalID:  "prop-1",
		Status:      models.StatusRead,
		ChangedByID: "owner-1",
	}, "stale-evt")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryAppendStatusEventProposalGone(t *testing.T) {
	db, mock, cleanup := newProposalRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM proposals WHERE id = $1 FOR UPDATE")).
		WithArgs("prop-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.AppendStatusEvent(context.Background(), &models.ProposalStatusEvent{
		ProposalID:  "prop-1",
		Status:      models.StatusRead,
		ChangedByID: "owner-1",
	}, "evt-1")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryLatestStatusEvent(t *testing.T) {
	db, mock, cleanup := newProposalRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)

	rows := sqlmock.NewRows([]string{"id", "proposal_id", "status", "changed_by", "changed_at", "comment"}).
		AddRow("evt-2", "prop-1", "READ", "owner-1", time.Now().UTC(), "")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, proposal_id, status, changed_by, changed_at, comment")).
		WithArgs("prop-1").
		WillReturnRows(rows)

	event, err := repo.LatestStatusEvent(context.Background(), "prop-1")
	require.NoError(t, err)
	require.Equal(t, "evt-2", event.ID)
	require.Equal(t, models.StatusRead, event.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryGetByIDDerivesStatus(t *testing.T) {
	db, mock, cleanup := newProposalRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "author_id", "recipient_id", "sender_name", "recipient_name",
		"title", "contents", "expected_effects", "contact_info",
		"partnership_types", "apply_target", "apply_target_other",
		"time_windows", "benefit_description", "period_start", "period_end",
		"is_ai_generated", "created_at", "modified_at",
		"author_role", "recipient_role", "current_status",
	}).AddRow(
		"prop-1", "group-1", "owner-1", "council", "cafe",
		"Fall partnership", "details", "", "council@example.com",
		`["DISCOUNT"]`, "GROUP_MEMBERS", "",
		`[]`, "10% off", nil, nil,
		false, now, now,
		"STUDENT_GROUP", "OWNER", "UNREAD",
	)
	mock.ExpectQuery("SELECT p.id, p.author_id").
		WithArgs("prop-1").
		WillReturnRows(rows)

	proposal, err := repo.GetByID(context.Background(), "prop-1")
	require.NoError(t, err)
	require.Equal(t, models.StatusUnread, proposal.CurrentStatus)
	require.Equal(t, models.RoleStudentGroup, proposal.AuthorRole)
	require.Equal(t, models.PartnershipTypeList{models.PartnershipDiscount}, proposal.PartnershipTypes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func emptyProposalRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "author_id", "recipient_id", "sender_name", "recipient_name",
		"title", "contents", "expected_effects", "contact_info",
		"partnership_types", "apply_target", "apply_target_other",
		"time_windows", "benefit_description", "period_start", "period_end",
		"is_ai_generated", "created_at", "modified_at",
		"author_role", "recipient_role", "current_status",
	})
}

func TestProposalRepositoryListCountSkipsLedgerJoin(t *testing.T) {
	db, mock, cleanup := newProposalRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)

	mock.ExpectQuery("SELECT p.id, p.author_id").
		WithArgs("group-1").
		WillReturnRows(emptyProposalRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM proposals p WHERE")).
		WithArgs("group-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.ProposalFilter{ActorID: "group-1", Box: models.BoxAll})
	require.NoError(t, err)
	require.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalRepositoryListCountJoinsLedgerForStatusFilter(t *testing.T) {
	db, mock, cleanup := newProposalRepoMock(t)
	defer cleanup()

	repo := NewProposalRepository(db)

	mock.ExpectQuery("SELECT p.id, p.author_id").
		WithArgs("group-1", "READ").
		WillReturnRows(emptyProposalRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM proposals p JOIN LATERAL")).
		WithArgs("group-1", "READ").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.ProposalFilter{
		ActorID: "group-1",
		Box:     models.BoxSent,
		Status:  "READ",
	})
	require.NoError(t, err)
	require.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
