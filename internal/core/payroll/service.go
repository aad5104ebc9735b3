package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ogurasousui/hr-attendance-api/internal/core/directory"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultStandardMonthlyHours = 160
	hourlyRateScale             = 6
	moneyScale                  = 2
	minYear                     = 1900
	maxYear                     = 3000
)

var (
	defaultOvertimeMultiplier = decimal.RequireFromString("1.5")
	defaultIncomeTaxRate      = decimal.RequireFromString("0.15")
)

// Service は給与計算に関するユースケースをまとめます。
type Service struct {
	repo      Repository
	employees directory.Repository
	hours     HoursSource
	clock     Clock
	tx        TransactionManager
}

// UseCase は給与ユースケースの公開インターフェースです。
type UseCase interface {
	Generate(ctx context.Context, in GenerateInput) (*Payroll, error)
	GetByID(ctx context.Context, id int64) (*Payroll, error)
	GetByEmployeeAndPeriod(ctx context.Context, employeeID int64, year, month int) (*Payroll, error)
	ListByEmployeeYear(ctx context.Context, employeeID int64, year int) ([]*Payroll, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]*Payroll, error)
	Delete(ctx context.Context, id, requesterID int64) error
}

// NewService は Service を生成します。
func NewService(repo Repository, employees directory.Repository, hours HoursSource, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, employees: employees, hours: hours, clock: clock, tx: tx}
}

// GenerateInput は給与明細生成の入力です。nil の任意項目には既定値が
// 適用されます: 標準月間労働時間 160、残業倍率 1.5、所得税率 0.15、
// ボーナスと追加控除は 0。
type GenerateInput struct {
	EmployeeID           int64
	Year                 int
	Month                int
	StandardMonthlyHours *int
	OvertimeMultiplier   *decimal.Decimal
	IncomeTaxRate        *decimal.Decimal
	Bonus                *decimal.Decimal
	ExtraDeduction       *decimal.Decimal
	BaseSalary           *decimal.Decimal
}

// Generate は期間内の勤怠時間を集計して給与明細を導出し、
// (従業員, 年, 月) をキーに upsert します。同一入力と同一勤怠に対して
// 冪等であり、検証に失敗した場合は何も書き込みません。
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*Payroll, error) {
	if in.EmployeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}
	if in.Month < 1 || in.Month > 12 {
		return nil, ErrInvalidMonth
	}
	if in.Year < minYear || in.Year > maxYear {
		return nil, ErrInvalidYear
	}

	now := s.clock.Now()
	if in.Year > now.Year() || (in.Year == now.Year() && in.Month > int(now.Month())) {
		return nil, ErrFuturePeriod
	}

	standardHours := defaultStandardMonthlyHours
	if in.StandardMonthlyHours != nil {
		if *in.StandardMonthlyHours <= 0 {
			return nil, ErrInvalidStandardHours
		}
		standardHours = *in.StandardMonthlyHours
	}

	multiplier := defaultOvertimeMultiplier
	if in.OvertimeMultiplier != nil {
		multiplier = *in.OvertimeMultiplier
		if multiplier.IsNegative() {
			multiplier = decimal.Zero
		}
	}

	taxRate := defaultIncomeTaxRate
	if in.IncomeTaxRate != nil {
		taxRate = *in.IncomeTaxRate
		if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, ErrInvalidTaxRate
		}
	}

	bonus := decimal.Zero
	if in.Bonus != nil {
		if in.Bonus.IsNegative() {
			return nil, ErrInvalidBonus
		}
		bonus = *in.Bonus
	}

	extraDeduction := decimal.Zero
	if in.ExtraDeduction != nil {
		if in.ExtraDeduction.IsNegative() {
			return nil, ErrInvalidDeduction
		}
		extraDeduction = *in.ExtraDeduction
	}

	var generated *Payroll
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByID(txCtx, in.EmployeeID)
		if err != nil {
			return err
		}

		baseSalary, err := resolveBaseSalary(in.BaseSalary, emp)
		if err != nil {
			return err
		}

		from := time.Date(in.Year, time.Month(in.Month), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, -1)

		totalHours, err := s.hours.SumHoursWorked(txCtx, in.EmployeeID, from, to)
		if err != nil {
			return err
		}

		standardHoursDec := decimal.NewFromInt(int64(standardHours))
		hourlyRate := baseSalary.DivRound(standardHoursDec, hourlyRateScale)

		overtimeHours := totalHours.Sub(standardHoursDec)
		if overtimeHours.IsNegative() {
			overtimeHours = decimal.Zero
		}

		overtimePay := overtimeHours.Mul(hourlyRate).Mul(multiplier)
		gross := baseSalary.Add(overtimePay).Add(bonus)
		tax := gross.Mul(taxRate)
		deductions := tax.Add(extraDeduction)
		net := gross.Sub(deductions)
		if net.IsNegative() {
			return ErrDeductionsExceedGross
		}

		existing, err := s.repo.FindByEmployeeAndPeriod(txCtx, in.EmployeeID, in.Year, in.Month)
		if err != nil && !errors.Is(err, ErrPayrollNotFound) {
			return err
		}

		payroll := existing
		if payroll == nil {
			payroll = &Payroll{
				EmployeeID: in.EmployeeID,
				Year:       in.Year,
				Month:      in.Month,
				CreatedAt:  now,
			}
		}

		payroll.BaseSalary = baseSalary.Round(moneyScale)
		payroll.TotalWorkHours = totalHours.Round(moneyScale)
		payroll.OvertimeHours = overtimeHours.Round(moneyScale)
		payroll.OvertimePay = overtimePay.Round(moneyScale)
		payroll.Bonus = bonus.Round(moneyScale)
		payroll.GrossSalary = gross.Round(moneyScale)
		payroll.Deductions = deductions.Round(moneyScale)
		payroll.NetSalary = net.Round(moneyScale)

		if existing == nil {
			generated, err = s.repo.Create(txCtx, payroll)
		} else {
			generated, err = s.repo.Update(txCtx, payroll)
		}
		return err
	}); err != nil {
		return nil, err
	}

	return generated, nil
}

// GetByID は ID で給与明細を取得します。
func (s *Service) GetByID(ctx context.Context, id int64) (*Payroll, error) {
	if id <= 0 {
		return nil, ErrInvalidPayrollID
	}

	var result *Payroll
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// GetByEmployeeAndPeriod は (従業員, 年, 月) で給与明細を取得します。
// 存在しない場合はエラーではなく nil を返します(存在確認用)。
func (s *Service) GetByEmployeeAndPeriod(ctx context.Context, employeeID int64, year, month int) (*Payroll, error) {
	if employeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}

	var result *Payroll
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByEmployeeAndPeriod(txCtx, employeeID, year, month)
		if errors.Is(err, ErrPayrollNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListByEmployeeYear は指定年の給与明細を月順で返します。
func (s *Service) ListByEmployeeYear(ctx context.Context, employeeID int64, year int) ([]*Payroll, error) {
	if employeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}

	var result []*Payroll
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ListByEmployeeAndYear(txCtx, employeeID, year)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListByEmployee は従業員の全給与明細を新しい期間から順に返します。
func (s *Service) ListByEmployee(ctx context.Context, employeeID int64) ([]*Payroll, error) {
	if employeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}

	var result []*Payroll
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ListByEmployee(txCtx, employeeID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// Delete は HR/Admin による給与明細の物理削除です。
func (s *Service) Delete(ctx context.Context, id, requesterID int64) error {
	if id <= 0 {
		return ErrInvalidPayrollID
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authorize(txCtx, requesterID); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, id)
	})
}

func (s *Service) authorize(ctx context.Context, requesterID int64) error {
	if requesterID <= 0 {
		return ErrPermissionDenied
	}
	requester, err := s.employees.FindByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, directory.ErrEmployeeNotFound) {
			return ErrPermissionDenied
		}
		return err
	}
	if !requester.Role.IsHROrAdmin() {
		return ErrPermissionDenied
	}
	return nil
}

// resolveBaseSalary はリクエストの基本給を優先し、無ければ従業員に
// 登録された値を使用します。
func resolveBaseSalary(requested *decimal.Decimal, emp *directory.Employee) (decimal.Decimal, error) {
	var baseSalary decimal.Decimal
	switch {
	case requested != nil:
		baseSalary = *requested
	case emp.BaseSalary != nil:
		baseSalary = *emp.BaseSalary
	default:
		return decimal.Zero, ErrBaseSalaryRequired
	}
	if baseSalary.IsNegative() {
		return decimal.Zero, ErrInvalidBaseSalary
	}
	return baseSalary, nil
}
