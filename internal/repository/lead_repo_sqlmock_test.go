package repository_test

import (
	"context"
	"errors"
	"testing"

	"propertycrm/internal/domain"
	"propertycrm/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*repository.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return repository.NewStore(gdb), mock
}

func TestActiveCountsByAgentPostgres(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"agent_id", "cnt"}).
		AddRow(int64(1), 3).
		AddRow(int64(4), 1)
	mock.ExpectQuery(`SELECT assigned_agent_id AS agent_id, COUNT\(\*\) AS cnt FROM "leads" WHERE .*assigned_agent_id IS NOT NULL AND status IN .*GROUP BY "assigned_agent_id"`).
		WillReturnRows(rows)

	got, err := s.Leads.ActiveCountsByAgent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 3, 4: 1}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveCountsByAgentSurfacesQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM "leads"`).WillReturnError(errors.New("connection reset"))

	_, err := s.Leads.ActiveCountsByAgent(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestListUnassignedUsesPriorityRankOrdering(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "leads" WHERE assigned_agent_id IS NULL AND status IN \(\$1,\$2\) ORDER BY CASE priority WHEN 'urgent' THEN 4 .* END DESC,created_at ASC,id ASC`).
		WithArgs("new", "contacted").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "priority"}).AddRow(int64(9), "new", "urgent"))

	leads, err := s.Leads.ListUnassigned(context.Background(), domain.SweepableLeadStatuses)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.EqualValues(t, 9, leads[0].ID)
	assert.Equal(t, domain.PriorityUrgent, leads[0].Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUniqueViolationMapsToDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "agents"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := s.Agents.Create(context.Background(), &domain.Agent{Name: "Amy", Email: "amy@example.com", IsActive: true})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
