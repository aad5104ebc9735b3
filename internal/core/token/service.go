package token

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ogurasousui/hr-attendance-api/internal/core/directory"
)

// Generator は新しいトークン値を生成します。
type Generator interface {
	NewToken() string
}

type qrGenerator struct{}

// NewToken は "QR-" + UUID 先頭 8 文字(大文字)の形式でトークンを生成します。
func (qrGenerator) NewToken() string {
	return "QR-" + strings.ToUpper(uuid.NewString()[:8])
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// 衝突時の再生成回数。トークン空間に対し割り当て数は十分小さいため
// これを使い切ることは実質的にありません。
const maxIssueAttempts = 5

// Rotator は出席トークンの発行と一括ローテーションを提供します。
type Rotator struct {
	employees directory.Repository
	gen       Generator
	tx        TransactionManager
}

// NewRotator は Rotator を生成します。
func NewRotator(employees directory.Repository, gen Generator, tx TransactionManager) *Rotator {
	if gen == nil {
		gen = qrGenerator{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Rotator{employees: employees, gen: gen, tx: tx}
}

// Issue は従業員に新しいトークンを割り当て、割り当てた値を返します。
// 旧トークンはこの書き込みの時点で解決できなくなります。
func (r *Rotator) Issue(ctx context.Context, employeeID int64) (string, error) {
	if employeeID <= 0 {
		return "", directory.ErrInvalidEmployeeID
	}

	var issued string
	if err := r.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		for attempt := 0; attempt < maxIssueAttempts; attempt++ {
			candidate := r.gen.NewToken()
			err := r.employees.UpdateToken(txCtx, employeeID, candidate)
			if errors.Is(err, directory.ErrTokenAlreadyAssigned) {
				continue
			}
			if err != nil {
				return err
			}
			issued = candidate
			return nil
		}
		return fmt.Errorf("token: exhausted %d attempts to find an unused token", maxIssueAttempts)
	}); err != nil {
		return "", err
	}

	return issued, nil
}

// RotateAll は承認済みかつトークンを保持する全従業員のトークンを
// 1 トランザクションで一括再発行し、対象となった人数を返します。
// 直前にチェックインで発行されたトークンも上書きします(last write wins)。
func (r *Rotator) RotateAll(ctx context.Context) (int, error) {
	var rotated int
	if err := r.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		employees, err := r.employees.ListApprovedWithToken(txCtx)
		if err != nil {
			return err
		}
		if len(employees) == 0 {
			return nil
		}

		assignments := make([]directory.TokenAssignment, 0, len(employees))
		seen := make(map[string]struct{}, len(employees))
		for _, emp := range employees {
			candidate := r.gen.NewToken()
			for attempt := 0; attempt < maxIssueAttempts; attempt++ {
				if _, dup := seen[candidate]; !dup {
					break
				}
				candidate = r.gen.NewToken()
			}
			seen[candidate] = struct{}{}
			assignments = append(assignments, directory.TokenAssignment{EmployeeID: emp.ID, Token: candidate})
		}

		if err := r.employees.UpdateTokens(txCtx, assignments); err != nil {
			return err
		}
		rotated = len(assignments)
		return nil
	}); err != nil {
		return 0, err
	}

	return rotated, nil
}
