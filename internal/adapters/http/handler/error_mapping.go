package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/hr-attendance-api/internal/core/attendance"
	"github.com/ogurasousui/hr-attendance-api/internal/core/directory"
	"github.com/ogurasousui/hr-attendance-api/internal/core/payroll"
)

func statusFromError(err error) int {
	switch {
	case errors.Is(err, directory.ErrInvalidEmployeeID),
		errors.Is(err, attendance.ErrInvalidRecordID),
		errors.Is(err, attendance.ErrInvalidTimeOrder),
		errors.Is(err, attendance.ErrInvalidLimit),
		errors.Is(err, attendance.ErrInvalidMonth),
		errors.Is(err, attendance.ErrInvalidDateRange),
		errors.Is(err, payroll.ErrInvalidPayrollID),
		errors.Is(err, payroll.ErrInvalidMonth),
		errors.Is(err, payroll.ErrInvalidYear),
		errors.Is(err, payroll.ErrFuturePeriod),
		errors.Is(err, payroll.ErrInvalidStandardHours),
		errors.Is(err, payroll.ErrInvalidTaxRate),
		errors.Is(err, payroll.ErrInvalidBonus),
		errors.Is(err, payroll.ErrInvalidDeduction),
		errors.Is(err, payroll.ErrInvalidBaseSalary),
		errors.Is(err, payroll.ErrBaseSalaryRequired),
		errors.Is(err, payroll.ErrDeductionsExceedGross):
		return http.StatusBadRequest
	case errors.Is(err, directory.ErrTokenNotRecognized):
		return http.StatusUnauthorized
	case errors.Is(err, attendance.ErrPermissionDenied),
		errors.Is(err, payroll.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, directory.ErrEmployeeNotFound),
		errors.Is(err, attendance.ErrRecordNotFound),
		errors.Is(err, payroll.ErrPayrollNotFound):
		return http.StatusNotFound
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, directory.ErrTokenAlreadyAssigned),
		errors.Is(err, payroll.ErrDuplicatePeriod):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFromError(err), gin.H{"error": err.Error()})
}
