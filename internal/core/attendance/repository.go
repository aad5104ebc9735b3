package attendance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ListFilter は全件検索用の絞り込み条件です。全条件は AND で評価され、
// Name は氏名に対する大文字小文字を無視した部分一致です。
type ListFilter struct {
	EmployeeID *int64
	Name       string
	From       *time.Time
	To         *time.Time
}

// Repository は勤怠レコード永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Record, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*Record, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]*Record, error)
	ListByEmployeeAndDateRange(ctx context.Context, employeeID int64, from, to time.Time) ([]*Record, error)
	ListRecent(ctx context.Context, employeeID int64, limit int) ([]*Record, error)
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
	SumHoursWorked(ctx context.Context, employeeID int64, from, to time.Time) (decimal.Decimal, error)
}
