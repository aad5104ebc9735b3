package directory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role は従業員の権限区分を表します。
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleHR       Role = "HR"
	RoleAdmin    Role = "ADMIN"
)

// IsHROrAdmin は保護された操作を実行できる権限かどうかを返します。
func (r Role) IsHROrAdmin() bool {
	return r == RoleHR || r == RoleAdmin
}

// Status は従業員の承認状態を表します。
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Employee は従業員エンティティです。登録や承認のライフサイクルは
// このコアの外側にあり、勤怠・給与計算が参照する範囲のみを持ちます。
type Employee struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Department string
	Position   string
	Role       Role
	Status     Status
	Token      *string
	BaseSalary *decimal.Decimal
	CreatedAt  time.Time
	ApprovedAt *time.Time
}

// FullName は表示用の氏名を返します。
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
