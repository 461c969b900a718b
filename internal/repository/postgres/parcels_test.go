package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/repository"
)

func newMockParcelRepo(t *testing.T) (*ParcelRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool failed: %v", err)
	}
	t.Cleanup(mock.Close)

	repo := &ParcelRepository{
		exec:    mock,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	return repo, mock
}

func TestExistsDuplicate(t *testing.T) {
	t.Run("no matching row", func(t *testing.T) {
		repo, mock := newMockParcelRepo(t)

		mock.ExpectQuery("SELECT 1 FROM wanaship.parcels").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(pgx.ErrNoRows)

		exists, err := repo.ExistsDuplicate(context.Background(), "owner-1", "addr-1", "TRACK-1")
		if err != nil {
			t.Fatalf("ExistsDuplicate failed: %v", err)
		}
		if exists {
			t.Error("expected no duplicate")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("matching row", func(t *testing.T) {
		repo, mock := newMockParcelRepo(t)

		mock.ExpectQuery("SELECT 1 FROM wanaship.parcels").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"1"}).AddRow(1))

		exists, err := repo.ExistsDuplicate(context.Background(), "owner-1", "addr-1", "TRACK-1")
		if err != nil {
			t.Fatalf("ExistsDuplicate failed: %v", err)
		}
		if !exists {
			t.Error("expected a duplicate")
		}
	})
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockParcelRepo(t)

	mock.ExpectQuery("SELECT .+ FROM wanaship.parcels").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected repository.ErrNotFound, got %v", err)
	}
}

func TestAssign(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := newMockParcelRepo(t)

		mock.ExpectExec("UPDATE wanaship.parcels").
			WithArgs("reshipper-1", pgxmock.AnyArg(), "parcel-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		if err := repo.Assign(context.Background(), "parcel-1", "reshipper-1"); err != nil {
			t.Fatalf("Assign failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("unknown parcel", func(t *testing.T) {
		repo, mock := newMockParcelRepo(t)

		mock.ExpectExec("UPDATE wanaship.parcels").
			WithArgs("reshipper-1", pgxmock.AnyArg(), "missing").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Assign(context.Background(), "missing", "reshipper-1")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected repository.ErrNotFound, got %v", err)
		}
	})
}

func TestUpdateStatusOnly(t *testing.T) {
	repo, mock := newMockParcelRepo(t)

	status := domain.ParcelStatusSent
	mock.ExpectExec("UPDATE wanaship.parcels SET updated_at = .+, status = .+").
		WithArgs(pgxmock.AnyArg(), status, "parcel-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.Update(context.Background(), "parcel-1", port.ParcelUpdate{Status: &status}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSetDeleted(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := newMockParcelRepo(t)

		deletedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		mock.ExpectExec("UPDATE wanaship.parcels").
			WithArgs(true, false, deletedAt, deletedAt, "parcel-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		if err := repo.SetDeleted(context.Background(), "parcel-1", deletedAt); err != nil {
			t.Fatalf("SetDeleted failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("unknown parcel", func(t *testing.T) {
		repo, mock := newMockParcelRepo(t)

		mock.ExpectExec("UPDATE wanaship.parcels").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SetDeleted(context.Background(), "missing", time.Now())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected repository.ErrNotFound, got %v", err)
		}
	})
}

func TestTrackingNumberFilterIsSubstringMatch(t *testing.T) {
	conditions := parcelFilterConditions(port.ParcelFilter{
		OwnerID:        "owner-1",
		TrackingNumber: "TRACK",
	})

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id").From("wanaship.parcels")
	for _, cond := range conditions {
		query = query.Where(cond)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if !strings.Contains(stmt, "tracking_number ILIKE") {
		t.Errorf("tracking filter built %q, want an ILIKE condition", stmt)
	}

	found := false
	for _, arg := range args {
		if arg == "%TRACK%" {
			found = true
		}
	}
	if !found {
		t.Errorf("args %v missing the %%TRACK%% pattern", args)
	}
}
