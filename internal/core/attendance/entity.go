package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusPresent は出勤済みレコードの既定ステータスです。
const StatusPresent = "PRESENT"

// Record は 1 従業員 1 暦日の勤怠レコードです。
// Date は UTC 深夜 0 時に正規化された暦日で、チェックイン・チェックアウトは
// 同日内の時刻のみを許容します(日をまたぐシフトは扱いません)。
type Record struct {
	ID           int64
	EmployeeID   int64
	EmployeeName string
	Date         time.Time
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	HoursWorked  decimal.Decimal
	Status       string
}

// Worked はチェックインからチェックアウトまでの経過時間(時間単位)を返します。
// 秒単位で切り捨ててから 3600 で割るため、9:00→17:30 は 8.5 になります。
func Worked(checkIn, checkOut time.Time) decimal.Decimal {
	seconds := int64(checkOut.Sub(checkIn) / time.Second)
	return decimal.NewFromInt(seconds).Div(decimal.NewFromInt(3600))
}
