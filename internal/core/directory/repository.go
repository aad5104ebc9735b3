package directory

import "context"

// TokenAssignment は一括ローテーションで適用するトークンの割り当てです。
type TokenAssignment struct {
	EmployeeID int64
	Token      string
}

// Repository は従業員ディレクトリへの参照とトークン書き込みの抽象です。
// 従業員の登録・承認 CRUD は外部コラボレーターが持つため含めません。
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Employee, error)
	FindByToken(ctx context.Context, token string) (*Employee, error)
	ListApprovedWithToken(ctx context.Context) ([]*Employee, error)
	UpdateToken(ctx context.Context, employeeID int64, token string) error
	UpdateTokens(ctx context.Context, assignments []TokenAssignment) error
}
