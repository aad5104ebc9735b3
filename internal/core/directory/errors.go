package directory

import "errors"

var (
	// ErrEmployeeNotFound は従業員が存在しない場合に返却されます。
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrTokenNotRecognized はトークンがどの従業員にも割り当てられていない場合に返却されます。
	ErrTokenNotRecognized = errors.New("token not recognized")
	// ErrTokenAlreadyAssigned はトークンが別の従業員に割り当て済みの場合に返却されます。
	ErrTokenAlreadyAssigned = errors.New("token already assigned")
	// ErrInvalidEmployeeID は従業員IDが不正な場合に返却されます。
	ErrInvalidEmployeeID = errors.New("invalid employee id")
)
