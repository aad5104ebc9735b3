package attendance

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

// TokenIssuer はチェックイン成功後に従業員のトークンを再発行します。
type TokenIssuer interface {
	Issue(ctx context.Context, employeeID int64) (string, error)
}

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 200
)

// Service は勤怠台帳に関するユースケースをまとめます。
type Service struct {
	repo      Repository
	employees directory.Repository
	tokens    TokenIssuer
	clock     Clock
	tx        TransactionManager
}

// UseCase は勤怠ユースケースの公開インターフェースです。
type UseCase interface {
	CheckIn(ctx context.Context, in CheckInInput) (*Record, error)
	CheckOut(ctx context.Context, in CheckOutInput) (*Record, error)
	CheckInByToken(ctx context.Context, token string) (*TokenCheckResult, error)
	CheckOutByToken(ctx context.Context, token string) (*TokenCheckResult, error)
	SaveRecord(ctx context.Context, in SaveRecordInput) (*Record, error)
	UpdateRecord(ctx context.Context, in UpdateRecordInput) (*Record, error)
	DeleteRecord(ctx context.Context, id, requesterID int64) error
	TodayStatus(ctx context.Context, employeeID int64) (*Record, error)
	WeeklyRecords(ctx context.Context, employeeID int64) ([]*Record, error)
	MonthlyRecords(ctx context.Context, employeeID int64, year, month int) ([]*Record, error)
	RecentRecords(ctx context.Context, employeeID int64, limit int) ([]*Record, error)
	ListRecords(ctx context.Context, filter ListFilter) ([]*Record, error)
	TotalHours(ctx context.Context, employeeID int64) (*TotalHoursResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, employees directory.Repository, tokens TokenIssuer, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, employees: employees, tokens: tokens, clock: clock, tx: tx}
}

// CheckInInput はチェックイン時の入力です。Date と At が nil の場合は
// 現在日時が使用されます。
type CheckInInput struct {
	EmployeeID int64
	Date       *time.Time
	At         *time.Time
}

// CheckOutInput はチェックアウト時の入力です。
type CheckOutInput struct {
	EmployeeID int64
	Date       *time.Time
	At         *time.Time
}

// SaveRecordInput は管理画面からの upsert 保存の入力です。
type SaveRecordInput struct {
	EmployeeID   int64
	Date         *time.Time
	CheckInTime  *time.Time
	CheckOutTime *time.Time
}

// UpdateRecordInput は HR/Admin による修正の入力です。nil のフィールドは
// 変更されません。
type UpdateRecordInput struct {
	ID           int64
	RequesterID  int64
	Date         *time.Time
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	Status       *string
}

// TokenCheckResult はトークン経由のチェックイン・チェックアウトの結果です。
// NewToken は旧トークンを無効化して新たに発行された値です。
type TokenCheckResult struct {
	Record   *Record
	NewToken string
}

// TotalHoursResult は従業員の累計労働時間と直近レコードの時刻です。
type TotalHoursResult struct {
	EmployeeID       int64
	TotalHours       decimal.Decimal
	LastCheckInTime  *time.Time
	LastCheckOutTime *time.Time
}

// CheckIn は (従業員, 暦日) ごとに一意な勤怠レコードを作成します。
// 同日に既にレコードがある場合は ErrAlreadyCheckedIn で失敗します。
func (s *Service) CheckIn(ctx context.Context, in CheckInInput) (*Record, error) {
	if in.EmployeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}

	var created *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByID(txCtx, in.EmployeeID)
		if err != nil {
			return err
		}

		date := s.targetDate(in.Date)
		at := s.targetTime(in.At)

		created, err = s.performCheckIn(txCtx, emp, date, at)
		return err
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// CheckOut は当該日のレコードにチェックアウト時刻を記録し、労働時間を
// 再計算します。レコードが無い場合は ErrRecordNotFound、チェックアウト済み
// の場合は ErrAlreadyCheckedOut で失敗します。
func (s *Service) CheckOut(ctx context.Context, in CheckOutInput) (*Record, error) {
	if in.EmployeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}

	var updated *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		date := s.targetDate(in.Date)
		at := s.targetTime(in.At)

		var err error
		updated, err = s.performCheckOut(txCtx, in.EmployeeID, date, at)
		return err
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// CheckInByToken はトークンから従業員を解決して当日のチェックインを行い、
// 成功時に新しいトークンを発行して返します。
func (s *Service) CheckInByToken(ctx context.Context, token string) (*TokenCheckResult, error) {
	if token == "" {
		return nil, directory.ErrTokenNotRecognized
	}

	var result *TokenCheckResult
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByToken(txCtx, token)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		record, err := s.performCheckIn(txCtx, emp, dateOf(now), now)
		if err != nil {
			return err
		}

		fresh, err := s.tokens.Issue(txCtx, emp.ID)
		if err != nil {
			return err
		}

		result = &TokenCheckResult{Record: record, NewToken: fresh}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// CheckOutByToken はトークンから従業員を解決して当日のチェックアウトを行い、
// 成功時に新しいトークンを発行して返します。
func (s *Service) CheckOutByToken(ctx context.Context, token string) (*TokenCheckResult, error) {
	if token == "" {
		return nil, directory.ErrTokenNotRecognized
	}

	var result *TokenCheckResult
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByToken(txCtx, token)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		record, err := s.performCheckOut(txCtx, emp.ID, dateOf(now), now)
		if err != nil {
			return err
		}

		fresh, err := s.tokens.Issue(txCtx, emp.ID)
		if err != nil {
			return err
		}

		result = &TokenCheckResult{Record: record, NewToken: fresh}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// SaveRecord は (従業員, 暦日) をキーとした冪等な upsert です。既存レコードが
// あれば nil でないフィールドのみ上書きし、無ければ新規作成します。
func (s *Service) SaveRecord(ctx context.Context, in SaveRecordInput) (*Record, error) {
	if in.EmployeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}

	var saved *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByID(txCtx, in.EmployeeID)
		if err != nil {
			return err
		}

		date := s.targetDate(in.Date)

		record, err := s.repo.FindByEmployeeAndDate(txCtx, in.EmployeeID, date)
		create := false
		if errors.Is(err, ErrRecordNotFound) {
			create = true
			record = &Record{
				EmployeeID:   emp.ID,
				EmployeeName: emp.FullName(),
				Date:         date,
				Status:       StatusPresent,
			}
		} else if err != nil {
			return err
		}

		if in.CheckInTime != nil {
			t := onDate(record.Date, *in.CheckInTime)
			record.CheckInTime = &t
		}
		if in.CheckOutTime != nil {
			t := onDate(record.Date, *in.CheckOutTime)
			record.CheckOutTime = &t
		}

		if err := recompute(record); err != nil {
			return err
		}

		if create {
			saved, err = s.repo.Create(txCtx, record)
		} else {
			saved, err = s.repo.Update(txCtx, record)
		}
		return err
	}); err != nil {
		return nil, err
	}

	return saved, nil
}

// UpdateRecord は HR/Admin による勤怠修正を行います。時刻が変わった場合は
// 労働時間を再計算します。
func (s *Service) UpdateRecord(ctx context.Context, in UpdateRecordInput) (*Record, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidRecordID
	}

	var updated *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authorize(txCtx, in.RequesterID); err != nil {
			return err
		}

		record, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Date != nil {
			record.Date = dateOf(*in.Date)
		}
		if in.CheckInTime != nil {
			record.CheckInTime = in.CheckInTime
		}
		if in.CheckOutTime != nil {
			record.CheckOutTime = in.CheckOutTime
		}
		if in.Status != nil {
			record.Status = *in.Status
		}

		// 日付の変更に追従して時刻を同日に繋ぎ直す。
		if record.CheckInTime != nil {
			t := onDate(record.Date, *record.CheckInTime)
			record.CheckInTime = &t
		}
		if record.CheckOutTime != nil {
			t := onDate(record.Date, *record.CheckOutTime)
			record.CheckOutTime = &t
		}

		if err := recompute(record); err != nil {
			return err
		}

		updated, err = s.repo.Update(txCtx, record)
		return err
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteRecord は HR/Admin による勤怠レコードの削除を行います。
func (s *Service) DeleteRecord(ctx context.Context, id, requesterID int64) error {
	if id <= 0 {
		return ErrInvalidRecordID
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authorize(txCtx, requesterID); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, id)
	})
}

// TodayStatus は当日のレコードを返します。未打刻の場合は nil を返します。
func (s *Service) TodayStatus(ctx context.Context, employeeID int64) (*Record, error) {
	if employeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}

	var record *Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByEmployeeAndDate(txCtx, employeeID, dateOf(s.clock.Now()))
		if errors.Is(err, ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		record = found
		return nil
	}); err != nil {
		return nil, err
	}

	return record, nil
}

// WeeklyRecords は今週(月曜から日曜)のレコードを返します。
func (s *Service) WeeklyRecords(ctx context.Context, employeeID int64) ([]*Record, error) {
	if employeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}

	today := dateOf(s.clock.Now())
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	sunday := monday.AddDate(0, 0, 6)

	return s.listRange(ctx, employeeID, monday, sunday)
}

// MonthlyRecords は指定した年月のレコードを返します。
func (s *Service) MonthlyRecords(ctx context.Context, employeeID int64, year, month int) ([]*Record, error) {
	if employeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	return s.listRange(ctx, employeeID, first, last)
}

// RecentRecords は直近のレコードを日付降順で返します。limit が 0 以下の
// 場合は 10 件です。
func (s *Service) RecentRecords(ctx context.Context, employeeID int64, limit int) ([]*Record, error) {
	if employeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return nil, ErrInvalidLimit
	}

	var records []*Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ListRecent(txCtx, employeeID, limit)
		if err != nil {
			return err
		}
		records = found
		return nil
	}); err != nil {
		return nil, err
	}

	return records, nil
}

// ListRecords は任意の絞り込み条件で全レコードを検索します。
func (s *Service) ListRecords(ctx context.Context, filter ListFilter) ([]*Record, error) {
	if filter.EmployeeID != nil && *filter.EmployeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, ErrInvalidDateRange
	}
	if filter.From != nil {
		from := dateOf(*filter.From)
		filter.From = &from
	}
	if filter.To != nil {
		to := dateOf(*filter.To)
		filter.To = &to
	}

	var records []*Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		records = found
		return nil
	}); err != nil {
		return nil, err
	}

	return records, nil
}

// TotalHours は従業員の全レコードの労働時間合計と直近レコードの時刻を
// 返します。レコードが 1 件も無い場合は nil を返します。
func (s *Service) TotalHours(ctx context.Context, employeeID int64) (*TotalHoursResult, error) {
	if employeeID <= 0 {
		return nil, directory.ErrInvalidEmployeeID
	}

	var result *TotalHoursResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		records, err := s.repo.ListByEmployee(txCtx, employeeID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		total := decimal.Zero
		for _, record := range records {
			total = total.Add(record.HoursWorked)
		}

		last := records[len(records)-1]
		result = &TotalHoursResult{
			EmployeeID:       employeeID,
			TotalHours:       total,
			LastCheckInTime:  last.CheckInTime,
			LastCheckOutTime: last.CheckOutTime,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) performCheckIn(ctx context.Context, emp *directory.Employee, date, at time.Time) (*Record, error) {
	if _, err := s.repo.FindByEmployeeAndDate(ctx, emp.ID, date); err == nil {
		return nil, ErrAlreadyCheckedIn
	} else if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	checkIn := onDate(date, at)
	record := &Record{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName(),
		Date:         date,
		CheckInTime:  &checkIn,
		HoursWorked:  decimal.Zero,
		Status:       StatusPresent,
	}
	return s.repo.Create(ctx, record)
}

func (s *Service) performCheckOut(ctx context.Context, employeeID int64, date, at time.Time) (*Record, error) {
	record, err := s.repo.FindByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	if record.CheckOutTime != nil {
		return nil, ErrAlreadyCheckedOut
	}

	checkOut := onDate(date, at)
	if record.CheckInTime != nil {
		if !checkOut.After(*record.CheckInTime) {
			return nil, ErrInvalidTimeOrder
		}
		record.HoursWorked = Worked(*record.CheckInTime, checkOut)
	}
	record.CheckOutTime = &checkOut

	return s.repo.Update(ctx, record)
}

func (s *Service) listRange(ctx context.Context, employeeID int64, from, to time.Time) ([]*Record, error) {
	var records []*Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ListByEmployeeAndDateRange(txCtx, employeeID, from, to)
		if err != nil {
			return err
		}
		records = found
		return nil
	}); err != nil {
		return nil, err
	}
	return records, nil
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

func (s *Service) targetDate(date *time.Time) time.Time {
	if date != nil {
		return dateOf(*date)
	}
	return dateOf(s.clock.Now())
}

func (s *Service) targetTime(at *time.Time) time.Time {
	if at != nil {
		return *at
	}
	return s.clock.Now()
}

// recompute は両時刻が揃っている場合に HoursWorked を引き直します。
func recompute(record *Record) error {
	if record.CheckInTime != nil && record.CheckOutTime != nil {
		if !record.CheckOutTime.After(*record.CheckInTime) {
			return ErrInvalidTimeOrder
		}
		record.HoursWorked = Worked(*record.CheckInTime, *record.CheckOutTime)
		return nil
	}
	record.HoursWorked = decimal.Zero
	return nil
}

func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func onDate(date time.Time, at time.Time) time.Time {
	u := at.UTC()
	return time.Date(date.Year(), date.Month(), date.Day(), u.Hour(), u.Minute(), u.Second(), 0, time.UTC)
}
