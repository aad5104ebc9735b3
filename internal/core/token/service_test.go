package token

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"

	"github.com/ogurasousui/hr-attendance-api/internal/core/directory"
)

type fakeDirectory struct {
	employees map[int64]*directory.Employee
	updates   []directory.TokenAssignment
	batches   []int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{employees: make(map[int64]*directory.Employee)}
}

func (f *fakeDirectory) add(id int64, status directory.Status, token *string) {
	f.employees[id] = &directory.Employee{ID: id, Status: status, Token: token}
}

func (f *fakeDirectory) FindByID(_ context.Context, id int64) (*directory.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return nil, directory.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeDirectory) FindByToken(_ context.Context, token string) (*directory.Employee, error) {
	for _, emp := range f.employees {
		if emp.Token != nil && *emp.Token == token {
			return emp, nil
		}
	}
	return nil, directory.ErrTokenNotRecognized
}

func (f *fakeDirectory) ListApprovedWithToken(_ context.Context) ([]*directory.Employee, error) {
	var result []*directory.Employee
	for _, emp := range f.employees {
		if emp.Status == directory.StatusApproved && emp.Token != nil {
			result = append(result, emp)
		}
	}
	return result, nil
}

func (f *fakeDirectory) UpdateToken(_ context.Context, employeeID int64, token string) error {
	emp, ok := f.employees[employeeID]
	if !ok {
		return directory.ErrEmployeeNotFound
	}
	for _, other := range f.employees {
		if other.ID != employeeID && other.Token != nil && *other.Token == token {
			return directory.ErrTokenAlreadyAssigned
		}
	}
	emp.Token = &token
	f.updates = append(f.updates, directory.TokenAssignment{EmployeeID: employeeID, Token: token})
	return nil
}

func (f *fakeDirectory) UpdateTokens(ctx context.Context, assignments []directory.TokenAssignment) error {
	for _, a := range assignments {
		if err := f.UpdateToken(ctx, a.EmployeeID, a.Token); err != nil {
			return err
		}
	}
	f.batches = append(f.batches, len(assignments))
	return nil
}

type sequenceGenerator struct {
	values []string
	index  int
}

func (g *sequenceGenerator) NewToken() string {
	if g.index >= len(g.values) {
		g.index++
		return "QR-OVERFLOW" + strconv.Itoa(g.index)
	}
	v := g.values[g.index]
	g.index++
	return v
}

func TestQrGenerator_Format(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^QR-[0-9A-F]{8}$`)
	gen := qrGenerator{}
	for i := 0; i < 10; i++ {
		if got := gen.NewToken(); !pattern.MatchString(got) {
			t.Fatalf("unexpected token format: %s", got)
		}
	}
}

func TestRotator_Issue_OverwritesPreviousToken(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	old := "QR-OLD11111"
	dir.add(1, directory.StatusApproved, &old)

	rotator := NewRotator(dir, &sequenceGenerator{values: []string{"QR-NEW11111"}}, nil)

	issued, err := rotator.Issue(context.Background(), 1)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if issued != "QR-NEW11111" {
		t.Errorf("unexpected issued token: %s", issued)
	}

	if _, err := dir.FindByToken(context.Background(), old); !errors.Is(err, directory.ErrTokenNotRecognized) {
		t.Errorf("old token still resolves after rotation")
	}
	if emp, err := dir.FindByToken(context.Background(), issued); err != nil || emp.ID != 1 {
		t.Errorf("new token does not resolve to employee 1: %v", err)
	}
}

func TestRotator_Issue_RetriesOnCollision(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	taken := "QR-TAKEN111"
	dir.add(1, directory.StatusApproved, &taken)
	dir.add(2, directory.StatusApproved, nil)

	gen := &sequenceGenerator{values: []string{"QR-TAKEN111", "QR-FRESH111"}}
	rotator := NewRotator(dir, gen, nil)

	issued, err := rotator.Issue(context.Background(), 2)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if issued != "QR-FRESH111" {
		t.Errorf("expected retry to yield QR-FRESH111, got %s", issued)
	}
}

func TestRotator_Issue_UnknownEmployee(t *testing.T) {
	t.Parallel()

	rotator := NewRotator(newFakeDirectory(), &sequenceGenerator{values: []string{"QR-AAAA0000"}}, nil)

	if _, err := rotator.Issue(context.Background(), 99); !errors.Is(err, directory.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if _, err := rotator.Issue(context.Background(), 0); !errors.Is(err, directory.ErrInvalidEmployeeID) {
		t.Fatalf("expected ErrInvalidEmployeeID, got %v", err)
	}
}

func TestRotator_RotateAll_OnlyApprovedWithToken(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	t1, t2 := "QR-EMP10000", "QR-EMP20000"
	dir.add(1, directory.StatusApproved, &t1)
	dir.add(2, directory.StatusApproved, &t2)
	dir.add(3, directory.StatusPending, nil)
	dir.add(4, directory.StatusApproved, nil) // approved but never issued a token

	gen := &sequenceGenerator{values: []string{"QR-ROT10000", "QR-ROT20000"}}
	rotator := NewRotator(dir, gen, nil)

	rotated, err := rotator.RotateAll(context.Background())
	if err != nil {
		t.Fatalf("RotateAll returned error: %v", err)
	}
	if rotated != 2 {
		t.Fatalf("expected 2 rotations, got %d", rotated)
	}

	if _, err := dir.FindByToken(context.Background(), t1); !errors.Is(err, directory.ErrTokenNotRecognized) {
		t.Errorf("employee 1 old token still resolves")
	}
	if _, err := dir.FindByToken(context.Background(), t2); !errors.Is(err, directory.ErrTokenNotRecognized) {
		t.Errorf("employee 2 old token still resolves")
	}
	if dir.employees[3].Token != nil || dir.employees[4].Token != nil {
		t.Errorf("rotation touched employees outside the sweep population")
	}
	if len(dir.batches) != 1 {
		t.Errorf("expected a single batch write, got %d", len(dir.batches))
	}
}

func TestRotator_RotateAll_Empty(t *testing.T) {
	t.Parallel()

	rotator := NewRotator(newFakeDirectory(), nil, nil)

	rotated, err := rotator.RotateAll(context.Background())
	if err != nil {
		t.Fatalf("RotateAll returned error: %v", err)
	}
	if rotated != 0 {
		t.Fatalf("expected 0 rotations, got %d", rotated)
	}
}
