package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ogurasousui/hr-attendance-api/internal/core/directory"
	"github.com/ogurasousui/hr-attendance-api/internal/core/payroll"
	pgdb "github.com/ogurasousui/hr-attendance-api/internal/platform/db/postgres"
)

const payrollColumns = `
        id, employee_id, year, month, base_salary, total_work_hours,
        overtime_hours, overtime_pay, bonus, gross_salary, deductions,
        net_salary, created_at`

// PayrollRepository は PostgreSQL を利用した給与明細永続化の実装です。
type PayrollRepository struct {
	pool pgdb.Querier
}

// NewPayrollRepository は PayrollRepository を生成します。
func NewPayrollRepository(pool pgdb.Querier) *PayrollRepository {
	return &PayrollRepository{pool: pool}
}

// Create は給与明細を新規作成します。
func (r *PayrollRepository) Create(ctx context.Context, p *payroll.Payroll) (*payroll.Payroll, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO payrolls (employee_id, year, month, base_salary, total_work_hours,
                              overtime_hours, overtime_pay, bonus, gross_salary,
                              deductions, net_salary, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING`+payrollColumns+`
    `,
		p.EmployeeID,
		p.Year,
		p.Month,
		p.BaseSalary,
		p.TotalWorkHours,
		p.OvertimeHours,
		p.OvertimePay,
		p.Bonus,
		p.GrossSalary,
		p.Deductions,
		p.NetSalary,
		p.CreatedAt,
	)

	created, err := scanPayroll(row)
	if err != nil {
		return nil, translatePayrollPgError(err)
	}
	return created, nil
}

// Update は既存の給与明細を再計算結果で上書きします。
func (r *PayrollRepository) Update(ctx context.Context, p *payroll.Payroll) (*payroll.Payroll, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE payrolls
           SET base_salary = $1,
               total_work_hours = $2,
               overtime_hours = $3,
               overtime_pay = $4,
               bonus = $5,
               gross_salary = $6,
               deductions = $7,
               net_salary = $8
         WHERE id = $9
        RETURNING`+payrollColumns+`
    `,
		p.BaseSalary,
		p.TotalWorkHours,
		p.OvertimeHours,
		p.OvertimePay,
		p.Bonus,
		p.GrossSalary,
		p.Deductions,
		p.NetSalary,
		p.ID,
	)

	updated, err := scanPayroll(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrPayrollNotFound
		}
		return nil, translatePayrollPgError(err)
	}
	return updated, nil
}

// Delete は給与明細を削除します。
func (r *PayrollRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM payrolls WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

// FindByID はIDで給与明細を取得します。
func (r *PayrollRepository) FindByID(ctx context.Context, id int64) (*payroll.Payroll, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+payrollColumns+`
          FROM payrolls
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanPayroll(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrPayrollNotFound
		}
		return nil, err
	}
	return found, nil
}

// FindByEmployeeAndPeriod は従業員と対象年月の組で給与明細を取得します。
func (r *PayrollRepository) FindByEmployeeAndPeriod(ctx context.Context, employeeID int64, year, month int) (*payroll.Payroll, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+payrollColumns+`
          FROM payrolls
         WHERE employee_id = $1
           AND year = $2
           AND month = $3
         LIMIT 1
    `, employeeID, year, month)

	found, err := scanPayroll(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrPayrollNotFound
		}
		return nil, err
	}
	return found, nil
}

// ListByEmployeeAndYear は従業員の年内の給与明細を月昇順で返します。
func (r *PayrollRepository) ListByEmployeeAndYear(ctx context.Context, employeeID int64, year int) ([]*payroll.Payroll, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+payrollColumns+`
          FROM payrolls
         WHERE employee_id = $1
           AND year = $2
         ORDER BY month
    `, employeeID, year)
	if err != nil {
		return nil, err
	}
	return collectPayrolls(rows)
}

// ListByEmployee は従業員の全給与明細を対象年月の降順で返します。
func (r *PayrollRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]*payroll.Payroll, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+payrollColumns+`
          FROM payrolls
         WHERE employee_id = $1
         ORDER BY year DESC, month DESC
    `, employeeID)
	if err != nil {
		return nil, err
	}
	return collectPayrolls(rows)
}

func scanPayroll(row pgx.Row) (*payroll.Payroll, error) {
	var (
		id         int64
		employeeID int64
		year       int
		month      int
		base       decimal.Decimal
		totalHours decimal.Decimal
		otHours    decimal.Decimal
		otPay      decimal.Decimal
		bonus      decimal.Decimal
		gross      decimal.Decimal
		deductions decimal.Decimal
		net        decimal.Decimal
		createdAt  time.Time
	)

	if err := row.Scan(
		&id, &employeeID, &year, &month, &base, &totalHours,
		&otHours, &otPay, &bonus, &gross, &deductions, &net, &createdAt,
	); err != nil {
		return nil, err
	}

	return &payroll.Payroll{
		ID:             id,
		EmployeeID:     employeeID,
		Year:           year,
		Month:          month,
		BaseSalary:     base,
		TotalWorkHours: totalHours,
		OvertimeHours:  otHours,
		OvertimePay:    otPay,
		Bonus:          bonus,
		GrossSalary:    gross,
		Deductions:     deductions,
		NetSalary:      net,
		CreatedAt:      createdAt,
	}, nil
}

func collectPayrolls(rows pgx.Rows) ([]*payroll.Payroll, error) {
	defer rows.Close()

	var payrolls []*payroll.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		payrolls = append(payrolls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payrolls, nil
}

func translatePayrollPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return payroll.ErrDuplicatePeriod
		case foreignKeyViolationCode:
			return directory.ErrEmployeeNotFound
		}
	}
	return err
}
