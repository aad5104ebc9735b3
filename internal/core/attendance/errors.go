package attendance

import "errors"

var (
	// ErrRecordNotFound は勤怠レコードが存在しない場合に返却されます。
	ErrRecordNotFound = errors.New("attendance record not found")
	// ErrAlreadyCheckedIn は同一日に 2 回目のチェックインを試みた場合に返却されます。
	ErrAlreadyCheckedIn = errors.New("already checked in for this date")
	// ErrAlreadyCheckedOut はチェックアウト済みレコードへの再チェックアウトで返却されます。
	ErrAlreadyCheckedOut = errors.New("already checked out")
	// ErrInvalidTimeOrder はチェックアウトがチェックインより前または同時刻の場合に返却されます。
	ErrInvalidTimeOrder = errors.New("check-out must be after check-in")
	// ErrInvalidRecordID はレコードIDが不正な場合に返却されます。
	ErrInvalidRecordID = errors.New("invalid attendance record id")
	// ErrInvalidLimit は取得件数が不正な場合に返却されます。
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrInvalidMonth は月が 1..12 の範囲外の場合に返却されます。
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	// ErrInvalidDateRange は from が to より後の場合に返却されます。
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrPermissionDenied は HR/Admin 以外が保護された変更を試みた場合に返却されます。
	ErrPermissionDenied = errors.New("requester must be hr or admin")
)
