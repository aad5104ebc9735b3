package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ogurasousui/hr-attendance-api/internal/core/directory"
	pgdb "github.com/ogurasousui/hr-attendance-api/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

const employeeColumns = `
        id, first_name, last_name, email, department, position,
        role, status, qr_code, base_salary, created_at, approved_at`

// EmployeeRepository は PostgreSQL を利用した従業員ディレクトリの実装です。
type EmployeeRepository struct {
	pool pgdb.Querier
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Querier) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// FindByID はIDで従業員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*directory.Employee, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrEmployeeNotFound
		}
		return nil, err
	}
	return found, nil
}

// FindByToken は現在有効なチェックイン用トークンで従業員を取得します。
func (r *EmployeeRepository) FindByToken(ctx context.Context, token string) (*directory.Employee, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+employeeColumns+`
          FROM employees
         WHERE qr_code = $1
         LIMIT 1
    `, token)

	found, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrTokenNotRecognized
		}
		return nil, err
	}
	return found, nil
}

// ListApprovedWithToken は承認済みかつトークンを保持する従業員を列挙します。
func (r *EmployeeRepository) ListApprovedWithToken(ctx context.Context) ([]*directory.Employee, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+employeeColumns+`
          FROM employees
         WHERE status = $1
           AND qr_code IS NOT NULL
         ORDER BY id
    `, string(directory.StatusApproved))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*directory.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// UpdateToken は単一従業員のトークンを差し替えます。
func (r *EmployeeRepository) UpdateToken(ctx context.Context, employeeID int64, token string) error {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employees
           SET qr_code = $1
         WHERE id = $2
    `, token, employeeID)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return directory.ErrEmployeeNotFound
	}
	return nil
}

// UpdateTokens は複数従業員のトークンをまとめて差し替えます。
// 呼び出し側のトランザクション内で逐次適用されます。
func (r *EmployeeRepository) UpdateTokens(ctx context.Context, assignments []directory.TokenAssignment) error {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	for _, a := range assignments {
		tag, err := exec.Exec(ctx, `
            UPDATE employees
               SET qr_code = $1
             WHERE id = $2
        `, a.Token, a.EmployeeID)
		if err != nil {
			return translateEmployeePgError(err)
		}
		if tag.RowsAffected() == 0 {
			return directory.ErrEmployeeNotFound
		}
	}
	return nil
}

func scanEmployee(row pgx.Row) (*directory.Employee, error) {
	var (
		id                   int64
		firstName, lastName  string
		email                string
		department, position string
		role, status         string
		token                *string
		baseSalary           decimal.NullDecimal
		createdAt            time.Time
		approvedAt           *time.Time
	)

	if err := row.Scan(
		&id, &firstName, &lastName, &email, &department, &position,
		&role, &status, &token, &baseSalary, &createdAt, &approvedAt,
	); err != nil {
		return nil, err
	}

	emp := &directory.Employee{
		ID:         id,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Department: department,
		Position:   position,
		Role:       directory.Role(role),
		Status:     directory.Status(status),
		Token:      token,
		CreatedAt:  createdAt,
		ApprovedAt: approvedAt,
	}
	if baseSalary.Valid {
		salary := baseSalary.Decimal
		emp.BaseSalary = &salary
	}
	return emp, nil
}

func translateEmployeePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			return directory.ErrTokenAlreadyAssigned
		}
	}
	return err
}
