package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ogurasousui/hr-attendance-api/internal/core/attendance"
	"github.com/ogurasousui/hr-attendance-api/internal/core/directory"
	pgdb "github.com/ogurasousui/hr-attendance-api/internal/platform/db/postgres"
)

const attendanceColumns = `
        a.id, a.employee_id, e.first_name || ' ' || e.last_name,
        a.date, a.check_in_time, a.check_out_time, a.hours_worked, a.status`

// AttendanceRepository は PostgreSQL を利用した勤怠台帳の実装です。
type AttendanceRepository struct {
	pool pgdb.Querier
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Querier) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Create は勤怠レコードを新規作成します。
func (r *AttendanceRepository) Create(ctx context.Context, record *attendance.Record) (*attendance.Record, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO attendance (employee_id, date, check_in_time, check_out_time, hours_worked, status)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, employee_id, date, check_in_time, check_out_time, hours_worked, status
        )
        SELECT a.id, a.employee_id, e.first_name || ' ' || e.last_name,
               a.date, a.check_in_time, a.check_out_time, a.hours_worked, a.status
          FROM inserted a
          JOIN employees e ON e.id = a.employee_id
    `,
		record.EmployeeID,
		record.Date,
		record.CheckInTime,
		record.CheckOutTime,
		record.HoursWorked,
		record.Status,
	)

	created, err := scanAttendance(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return created, nil
}

// Update は勤怠レコードを更新します。
func (r *AttendanceRepository) Update(ctx context.Context, record *attendance.Record) (*attendance.Record, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE attendance
               SET date = $1,
                   check_in_time = $2,
                   check_out_time = $3,
                   hours_worked = $4,
                   status = $5
             WHERE id = $6
            RETURNING id, employee_id, date, check_in_time, check_out_time, hours_worked, status
        )
        SELECT a.id, a.employee_id, e.first_name || ' ' || e.last_name,
               a.date, a.check_in_time, a.check_out_time, a.hours_worked, a.status
          FROM updated a
          JOIN employees e ON e.id = a.employee_id
    `,
		record.Date,
		record.CheckInTime,
		record.CheckOutTime,
		record.HoursWorked,
		record.Status,
		record.ID,
	)

	updated, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, translateAttendancePgError(err)
	}
	return updated, nil
}

// Delete は勤怠レコードを削除します。
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

// FindByID はIDで勤怠レコードを取得します。
func (r *AttendanceRepository) FindByID(ctx context.Context, id int64) (*attendance.Record, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+attendanceColumns+`
          FROM attendance a
          JOIN employees e ON e.id = a.employee_id
         WHERE a.id = $1
         LIMIT 1
    `, id)

	found, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, err
	}
	return found, nil
}

// FindByEmployeeAndDate は従業員と日付の組で勤怠レコードを取得します。
func (r *AttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*attendance.Record, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+attendanceColumns+`
          FROM attendance a
          JOIN employees e ON e.id = a.employee_id
         WHERE a.employee_id = $1
           AND a.date = $2
         LIMIT 1
    `, employeeID, date)

	found, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, err
	}
	return found, nil
}

// ListByEmployee は従業員の全勤怠レコードを日付降順で返します。
func (r *AttendanceRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]*attendance.Record, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+attendanceColumns+`
          FROM attendance a
          JOIN employees e ON e.id = a.employee_id
         WHERE a.employee_id = $1
         ORDER BY a.date DESC
    `, employeeID)
	if err != nil {
		return nil, err
	}
	return collectAttendance(rows)
}

// ListByEmployeeAndDateRange は従業員の期間内の勤怠レコードを日付昇順で返します。
func (r *AttendanceRepository) ListByEmployeeAndDateRange(ctx context.Context, employeeID int64, from, to time.Time) ([]*attendance.Record, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+attendanceColumns+`
          FROM attendance a
          JOIN employees e ON e.id = a.employee_id
         WHERE a.employee_id = $1
           AND a.date >= $2
           AND a.date <= $3
         ORDER BY a.date
    `, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	return collectAttendance(rows)
}

// ListRecent は従業員の直近の勤怠レコードを日付降順で最大 limit 件返します。
func (r *AttendanceRepository) ListRecent(ctx context.Context, employeeID int64, limit int) ([]*attendance.Record, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+attendanceColumns+`
          FROM attendance a
          JOIN employees e ON e.id = a.employee_id
         WHERE a.employee_id = $1
         ORDER BY a.date DESC
         LIMIT $2
    `, employeeID, limit)
	if err != nil {
		return nil, err
	}
	return collectAttendance(rows)
}

// List は絞り込み条件付きで勤怠レコードを検索します。
func (r *AttendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]*attendance.Record, error) {
	var (
		conds []string
		args  []any
	)

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conds = append(conds, fmt.Sprintf("a.employee_id = $%d", len(args)))
	}
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conds = append(conds, fmt.Sprintf("(e.first_name || ' ' || e.last_name) ILIKE $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("a.date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("a.date <= $%d", len(args)))
	}

	query := `
        SELECT` + attendanceColumns + `
          FROM attendance a
          JOIN employees e ON e.id = a.employee_id`
	if len(conds) > 0 {
		query += "\n         WHERE " + strings.Join(conds, "\n           AND ")
	}
	query += "\n         ORDER BY a.date DESC, a.id DESC"

	exec := pgdb.QuerierFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectAttendance(rows)
}

// SumHoursWorked は従業員の期間内の労働時間合計を返します。
func (r *AttendanceRepository) SumHoursWorked(ctx context.Context, employeeID int64, from, to time.Time) (decimal.Decimal, error) {
	exec := pgdb.QuerierFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT COALESCE(SUM(hours_worked), 0)
          FROM attendance
         WHERE employee_id = $1
           AND date >= $2
           AND date <= $3
    `, employeeID, from, to)

	var total decimal.Decimal
	if err := row.Scan(&total); err != nil {
		return decimal.Decimal{}, err
	}
	return total, nil
}

func scanAttendance(row pgx.Row) (*attendance.Record, error) {
	var (
		id           int64
		employeeID   int64
		employeeName string
		date         time.Time
		checkIn      *time.Time
		checkOut     *time.Time
		hours        decimal.Decimal
		status       string
	)

	if err := row.Scan(&id, &employeeID, &employeeName, &date, &checkIn, &checkOut, &hours, &status); err != nil {
		return nil, err
	}

	return &attendance.Record{
		ID:           id,
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		Date:         date,
		CheckInTime:  checkIn,
		CheckOutTime: checkOut,
		HoursWorked:  hours,
		Status:       status,
	}, nil
}

func collectAttendance(rows pgx.Rows) ([]*attendance.Record, error) {
	defer rows.Close()

	var records []*attendance.Record
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func translateAttendancePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return attendance.ErrAlreadyCheckedIn
		case foreignKeyViolationCode:
			return directory.ErrEmployeeNotFound
		}
	}
	return err
}
