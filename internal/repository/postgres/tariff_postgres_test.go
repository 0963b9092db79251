package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariffapi/internal/model"
	"tariffapi/internal/repository"
)

var columns = []string{"id", "route", "origin", "destination", "price", "discounted", "km", "unit", "meta", "uploaded_by", "uploaded_at"}

func newMockRepo(t *testing.T) (*TariffPostgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewTariffPostgres(db)
	n := 0
	repo.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return repo, mock
}

func TestTariffPostgres_Append(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	price := 450.0
	records := []model.TariffRecord{
		{Route: "Ankara - İzmir", Origin: "Ankara", Destination: "İzmir", Price: &price, Meta: map[string]any{"firma": "Metro"}, UploadedBy: "alice", UploadedAt: now},
		{Route: "Bursa - Bolu", Price: nil, UploadedBy: "alice", UploadedAt: now},
	}

	t.Run("success", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO tariffs").
			WithArgs("id-1", "Ankara - İzmir", "Ankara", "İzmir", 450.0, "", "", "", []byte(`{"firma":"Metro"}`), "alice", now).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO tariffs").
			WithArgs("id-2", "Bursa - Bolu", "", "", nil, "", "", "", []byte(`{}`), "alice", now).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		ids, err := repo.Append(context.Background(), records)
		require.NoError(t, err)
		assert.Equal(t, []string{"id-1", "id-2"}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO tariffs").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO tariffs").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		ids, err := repo.Append(context.Background(), records)
		assert.ErrorContains(t, err, "disk full")
		assert.Nil(t, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin().WillReturnError(errors.New("conn closed"))

		_, err := repo.Append(context.Background(), records)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTariffPostgres_List(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("all", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		rows := sqlmock.NewRows(columns).
			AddRow("id-1", "A - B", "A", "B", 100.0, "", "", "", []byte(`{"firma":"Metro"}`), "alice", now).
			AddRow("id-2", "C - D", "", "", nil, "90", "120", "TL", nil, "bob", now)
		mock.ExpectQuery(regexp.QuoteMeta("FROM tariffs ORDER BY seq")).WillReturnRows(rows)

		got, err := repo.ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 100.0, *got[0].Price)
		assert.Equal(t, "Metro", got[0].Meta["firma"])
		assert.Nil(t, got[1].Price)
		assert.Equal(t, map[string]any{}, got[1].Meta)
		assert.Equal(t, "TL", got[1].Unit)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by owner", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE uploaded_by = $1 ORDER BY seq")).
			WithArgs("carol").
			WillReturnRows(sqlmock.NewRows(columns))

		got, err := repo.ListByOwner(context.Background(), "carol")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("boom"))

		_, err := repo.ListAll(context.Background())
		assert.Error(t, err)
	})
}

func TestTariffPostgres_FindByID(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM tariffs WHERE id = $1")).
			WithArgs("id-1").
			WillReturnRows(sqlmock.NewRows(columns).AddRow("id-1", "A - B", "", "", 5.5, "", "", "", []byte(`{}`), "alice", now))

		got, err := repo.FindByID(context.Background(), "id-1")
		require.NoError(t, err)
		assert.Equal(t, "A - B", got.Route)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM tariffs WHERE id = $1")).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestTariffPostgres_Delete(t *testing.T) {
	const lockQuery = "SELECT uploaded_by FROM tariffs WHERE id = $1 FOR UPDATE"

	tests := []struct {
		name      string
		owner     string
		found     bool
		requester string
		admin     bool
		wantErr   error
	}{
		{name: "owner deletes", owner: "alice", found: true, requester: "alice"},
		{name: "admin deletes", owner: "alice", found: true, admin: true},
		{name: "other user forbidden", owner: "alice", found: true, requester: "bob", wantErr: repository.ErrForbidden},
		{name: "unknown id", found: false, requester: "bob", wantErr: repository.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectBegin()
			q := mock.ExpectQuery(regexp.QuoteMeta(lockQuery)).WithArgs("id-1")
			if tt.found {
				q.WillReturnRows(sqlmock.NewRows([]string{"uploaded_by"}).AddRow(tt.owner))
			} else {
				q.WillReturnError(sql.ErrNoRows)
			}
			if tt.wantErr == nil {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tariffs WHERE id = $1")).
					WithArgs("id-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err := repo.Delete(context.Background(), "id-1", tt.requester, tt.admin)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
