package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/ogurasousui/hr-attendance-api/internal/core/directory"
	"github.com/ogurasousui/hr-attendance-api/internal/core/payroll"
)

func TestScanPayroll_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Now().UTC()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 13 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*int64)) = 11
		*(dest[1].(*int64)) = 7
		*(dest[2].(*int)) = 2025
		*(dest[3].(*int)) = 3
		*(dest[4].(*decimal.Decimal)) = decimal.RequireFromString("4000.00")
		*(dest[5].(*decimal.Decimal)) = decimal.RequireFromString("170.00")
		*(dest[6].(*decimal.Decimal)) = decimal.RequireFromString("10.00")
		*(dest[7].(*decimal.Decimal)) = decimal.RequireFromString("375.00")
		*(dest[8].(*decimal.Decimal)) = decimal.Zero
		*(dest[9].(*decimal.Decimal)) = decimal.RequireFromString("4375.00")
		*(dest[10].(*decimal.Decimal)) = decimal.RequireFromString("656.25")
		*(dest[11].(*decimal.Decimal)) = decimal.RequireFromString("3718.75")
		*(dest[12].(*time.Time)) = createdAt
		return nil
	}}

	p, err := scanPayroll(row)
	if err != nil {
		t.Fatalf("scanPayroll returned error: %v", err)
	}

	if p.ID != 11 || p.EmployeeID != 7 || p.Year != 2025 || p.Month != 3 {
		t.Fatalf("unexpected payroll %+v", p)
	}
	if !p.NetSalary.Equal(decimal.RequireFromString("3718.75")) {
		t.Fatalf("unexpected net salary %s", p.NetSalary)
	}
}

func TestTranslatePayrollPgError(t *testing.T) {
	t.Parallel()

	unique := &pgconn.PgError{Code: uniqueViolationCode}
	if !errors.Is(translatePayrollPgError(unique), payroll.ErrDuplicatePeriod) {
		t.Fatalf("expected duplicate period mapping")
	}

	fk := &pgconn.PgError{Code: foreignKeyViolationCode}
	if !errors.Is(translatePayrollPgError(fk), directory.ErrEmployeeNotFound) {
		t.Fatalf("expected unknown employee mapping")
	}
}

func TestPayrollRepository_FindByEmployeeAndPeriod_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPayrollRepository(mock)

	mock.ExpectQuery(`SELECT`).
		WithArgs(int64(7), 2025, 3).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.FindByEmployeeAndPeriod(context.Background(), 7, 2025, 3)
	if !errors.Is(err, payroll.ErrPayrollNotFound) {
		t.Fatalf("expected ErrPayrollNotFound, got %v", err)
	}
}

func TestPayrollRepository_ListByEmployeeAndYear(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPayrollRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "employee_id", "year", "month", "base_salary", "total_work_hours",
		"overtime_hours", "overtime_pay", "bonus", "gross_salary", "deductions",
		"net_salary", "created_at",
	}).AddRow(
		int64(1), int64(7), 2025, 2,
		decimal.RequireFromString("4000.00"), decimal.RequireFromString("160.00"),
		decimal.Zero, decimal.Zero, decimal.Zero,
		decimal.RequireFromString("4000.00"), decimal.RequireFromString("600.00"),
		decimal.RequireFromString("3400.00"), createdAt,
	).AddRow(
		int64(2), int64(7), 2025, 3,
		decimal.RequireFromString("4000.00"), decimal.RequireFromString("170.00"),
		decimal.RequireFromString("10.00"), decimal.RequireFromString("375.00"), decimal.Zero,
		decimal.RequireFromString("4375.00"), decimal.RequireFromString("656.25"),
		decimal.RequireFromString("3718.75"), createdAt,
	)

	mock.ExpectQuery(`FROM payrolls`).
		WithArgs(int64(7), 2025).
		WillReturnRows(rows)

	payrolls, err := repo.ListByEmployeeAndYear(context.Background(), 7, 2025)
	if err != nil {
		t.Fatalf("ListByEmployeeAndYear returned error: %v", err)
	}

	if len(payrolls) != 2 {
		t.Fatalf("expected 2 payrolls, got %d", len(payrolls))
	}
	if payrolls[0].Month != 2 || payrolls[1].Month != 3 {
		t.Fatalf("unexpected ordering: %+v", payrolls)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPayrollRepository_Delete_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPayrollRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM payrolls WHERE id = $1`)).
		WithArgs(int64(404)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), 404); !errors.Is(err, payroll.ErrPayrollNotFound) {
		t.Fatalf("expected ErrPayrollNotFound, got %v", err)
	}
}
