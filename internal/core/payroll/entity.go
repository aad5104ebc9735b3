package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payroll は (従業員, 年, 月) ごとに一意な給与明細です。
// 金額フィールドはすべて小数点以下 2 桁(四捨五入)で確定済みの値です。
type Payroll struct {
	ID             int64
	EmployeeID     int64
	Year           int
	Month          int
	BaseSalary     decimal.Decimal
	TotalWorkHours decimal.Decimal
	OvertimeHours  decimal.Decimal
	OvertimePay    decimal.Decimal
	Bonus          decimal.Decimal
	GrossSalary    decimal.Decimal
	Deductions     decimal.Decimal
	NetSalary      decimal.Decimal
	CreatedAt      time.Time
}
