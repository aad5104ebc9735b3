package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestTransactionManagerReadWriteCommit(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	tm := NewTransactionManager(mock)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit()

	err = tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		if _, ok := txFromContext(ctx); !ok {
			t.Fatalf("transaction not injected into context")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("WithinReadWrite returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransactionManagerReadOnlyRollbackOnError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	tm := NewTransactionManager(mock)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectRollback()

	wantErr := errors.New("usecase failure")
	err = tm.WithinReadOnly(context.Background(), func(ctx context.Context) error {
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransactionManagerNestedCallJoinsOuterTx(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	tm := NewTransactionManager(mock)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit()

	err = tm.WithinReadWrite(context.Background(), func(outer context.Context) error {
		return tm.WithinReadOnly(outer, func(inner context.Context) error {
			if _, ok := txFromContext(inner); !ok {
				t.Fatalf("nested call lost the outer transaction")
			}
			return nil
		})
	})

	if err != nil {
		t.Fatalf("nested transaction returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQuerierFromContextFallsBack(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	got := QuerierFromContext(context.Background(), mock)
	if got != Querier(mock) {
		t.Fatalf("expected fallback querier when no transaction is active")
	}
}
