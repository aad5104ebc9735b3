package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/ogurasousui/hr-attendance-api/internal/core/directory"
)

type stubRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func TestScanEmployee_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Now().UTC()
	salary := decimal.RequireFromString("4000.00")

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 12 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*int64)) = 7
		*(dest[1].(*string)) = "Hana"
		*(dest[2].(*string)) = "Suzuki"
		*(dest[3].(*string)) = "hana@example.com"
		*(dest[4].(*string)) = "Engineering"
		*(dest[5].(*string)) = "Engineer"
		*(dest[6].(*string)) = string(directory.RoleEmployee)
		*(dest[7].(*string)) = string(directory.StatusApproved)
		token := "QR-1A2B3C4D"
		*(dest[8].(**string)) = &token
		*(dest[9].(*decimal.NullDecimal)) = decimal.NullDecimal{Decimal: salary, Valid: true}
		*(dest[10].(*time.Time)) = createdAt
		*(dest[11].(**time.Time)) = nil
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}

	if emp.ID != 7 || emp.FullName() != "Hana Suzuki" {
		t.Fatalf("unexpected employee %+v", emp)
	}
	if emp.Token == nil || *emp.Token != "QR-1A2B3C4D" {
		t.Fatalf("unexpected token %v", emp.Token)
	}
	if emp.BaseSalary == nil || !emp.BaseSalary.Equal(salary) {
		t.Fatalf("unexpected base salary %v", emp.BaseSalary)
	}
}

func TestScanEmployee_NullSalary(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		*(dest[0].(*int64)) = 1
		*(dest[1].(*string)) = "Taro"
		*(dest[2].(*string)) = "Sato"
		*(dest[3].(*string)) = "taro@example.com"
		*(dest[6].(*string)) = string(directory.RoleHR)
		*(dest[7].(*string)) = string(directory.StatusApproved)
		*(dest[9].(*decimal.NullDecimal)) = decimal.NullDecimal{}
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}

	if emp.BaseSalary != nil {
		t.Fatalf("expected nil base salary, got %v", emp.BaseSalary)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: uniqueViolationCode}
	if !errors.Is(translateEmployeePgError(pgErr), directory.ErrTokenAlreadyAssigned) {
		t.Fatalf("expected token conflict mapping")
	}

	otherErr := errors.New("random")
	if translateEmployeePgError(otherErr) != otherErr {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestEmployeeRepository_UpdateToken(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`
        UPDATE employees
           SET qr_code = $1
         WHERE id = $2
    `)).
		WithArgs("QR-AAAA1111", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateToken(context.Background(), 7, "QR-AAAA1111"); err != nil {
		t.Fatalf("UpdateToken returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_UpdateToken_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`
        UPDATE employees
           SET qr_code = $1
         WHERE id = $2
    `)).
		WithArgs("QR-AAAA1111", int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateToken(context.Background(), 99, "QR-AAAA1111")
	if !errors.Is(err, directory.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestEmployeeRepository_UpdateTokens_AppliesAll(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	query := regexp.QuoteMeta(`
            UPDATE employees
               SET qr_code = $1
             WHERE id = $2
        `)

	mock.ExpectExec(query).
		WithArgs("QR-AAAA1111", int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(query).
		WithArgs("QR-BBBB2222", int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateTokens(context.Background(), []directory.TokenAssignment{
		{EmployeeID: 1, Token: "QR-AAAA1111"},
		{EmployeeID: 2, Token: "QR-BBBB2222"},
	})
	if err != nil {
		t.Fatalf("UpdateTokens returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
