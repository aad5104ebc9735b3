package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository は給与明細永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, payroll *Payroll) (*Payroll, error)
	Update(ctx context.Context, payroll *Payroll) (*Payroll, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Payroll, error)
	FindByEmployeeAndPeriod(ctx context.Context, employeeID int64, year, month int) (*Payroll, error)
	ListByEmployeeAndYear(ctx context.Context, employeeID int64, year int) ([]*Payroll, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]*Payroll, error)
}

// HoursSource は勤怠台帳から期間内の労働時間合計を取得する抽象です。
type HoursSource interface {
	SumHoursWorked(ctx context.Context, employeeID int64, from, to time.Time) (decimal.Decimal, error)
}
