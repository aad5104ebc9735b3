package payroll

import "errors"

var (
	// ErrPayrollNotFound は給与明細が存在しない場合に返却されます。
	ErrPayrollNotFound = errors.New("payroll not found")
	// ErrInvalidPayrollID は給与明細IDが不正な場合に返却されます。
	ErrInvalidPayrollID = errors.New("invalid payroll id")
	// ErrInvalidMonth は月が 1..12 の範囲外の場合に返却されます。
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	// ErrInvalidYear は年が妥当な範囲外の場合に返却されます。
	ErrInvalidYear = errors.New("year out of range")
	// ErrFuturePeriod は現在の暦月より後の期間を指定した場合に返却されます。
	ErrFuturePeriod = errors.New("cannot generate payroll for a future period")
	// ErrInvalidStandardHours は標準月間労働時間が 0 以下の場合に返却されます。
	ErrInvalidStandardHours = errors.New("standard monthly hours must be positive")
	// ErrInvalidTaxRate は所得税率が [0,1] の範囲外の場合に返却されます。
	ErrInvalidTaxRate = errors.New("income tax rate must be between 0 and 1")
	// ErrInvalidBonus はボーナスが負の場合に返却されます。
	ErrInvalidBonus = errors.New("bonus must not be negative")
	// ErrInvalidDeduction は追加控除が負の場合に返却されます。
	ErrInvalidDeduction = errors.New("extra deduction must not be negative")
	// ErrInvalidBaseSalary は基本給が負の場合に返却されます。
	ErrInvalidBaseSalary = errors.New("base salary must not be negative")
	// ErrBaseSalaryRequired は従業員に基本給が登録されておらず、リクエストにも
	// 無い場合に返却されます。
	ErrBaseSalaryRequired = errors.New("base salary required")
	// ErrDeductionsExceedGross は控除合計が総支給額を上回る場合に返却されます。
	ErrDeductionsExceedGross = errors.New("deductions exceed gross salary")
	// ErrDuplicatePeriod は同一期間の明細が同時に書き込まれた場合に返却されます。
	ErrDuplicatePeriod = errors.New("payroll already exists for this period")
	// ErrPermissionDenied は HR/Admin 以外が削除を試みた場合に返却されます。
	ErrPermissionDenied = errors.New("requester must be hr or admin")
)
