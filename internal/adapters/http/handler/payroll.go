package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ogurasousui/hr-attendance-api/internal/core/directory"
	"github.com/ogurasousui/hr-attendance-api/internal/core/payroll"
)

// PayrollHandler は給与ユースケースを HTTP に公開します。
type PayrollHandler struct {
	uc payroll.UseCase
}

// NewPayrollHandler は PayrollHandler を生成します。
func NewPayrollHandler(uc payroll.UseCase) *PayrollHandler {
	return &PayrollHandler{uc: uc}
}

// Register は /api/payroll 配下のルートを登録します。
func (h *PayrollHandler) Register(r gin.IRouter) {
	g := r.Group("/api/payroll")
	g.POST("/generate", h.Generate)
	g.GET("/employee/:employeeId", h.GetByEmployeeAndPeriod)
	g.GET("/employee/:employeeId/year/:year", h.ListByEmployeeYear)
	g.GET("/employee/:employeeId/all", h.ListByEmployee)
	g.GET("/:id", h.GetByID)
	g.DELETE("/:id", h.Delete)
}

type payrollGenerateRequest struct {
	EmployeeID           int64            `json:"employeeId"`
	Year                 int              `json:"year"`
	Month                int              `json:"month"`
	StandardMonthlyHours *int             `json:"standardMonthlyHours"`
	OvertimeMultiplier   *decimal.Decimal `json:"overtimeMultiplier"`
	IncomeTaxRate        *decimal.Decimal `json:"incomeTaxRate"`
	Bonus                *decimal.Decimal `json:"bonus"`
	ExtraDeduction       *decimal.Decimal `json:"extraDeduction"`
	BaseSalary           *decimal.Decimal `json:"baseSalary"`
}

type payrollResponse struct {
	ID             int64       `json:"id"`
	EmployeeID     int64       `json:"employeeId"`
	Year           int         `json:"year"`
	Month          int         `json:"month"`
	BaseSalary     json.Number `json:"baseSalary"`
	TotalWorkHours json.Number `json:"totalWorkHours"`
	OvertimeHours  json.Number `json:"overtimeHours"`
	OvertimePay    json.Number `json:"overtimePay"`
	Bonus          json.Number `json:"bonus"`
	GrossSalary    json.Number `json:"grossSalary"`
	Deductions     json.Number `json:"deductions"`
	NetSalary      json.Number `json:"netSalary"`
	CreatedAt      string      `json:"createdAt"`
}

// Generate は対象年月の勤怠を集計して給与明細を生成(再生成)します。
func (h *PayrollHandler) Generate(c *gin.Context) {
	var req payrollGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.Generate(c.Request.Context(), payroll.GenerateInput{
		EmployeeID:           req.EmployeeID,
		Year:                 req.Year,
		Month:                req.Month,
		StandardMonthlyHours: req.StandardMonthlyHours,
		OvertimeMultiplier:   req.OvertimeMultiplier,
		IncomeTaxRate:        req.IncomeTaxRate,
		Bonus:                req.Bonus,
		ExtraDeduction:       req.ExtraDeduction,
		BaseSalary:           req.BaseSalary,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPayrollResponse(result))
}

// GetByID はIDで給与明細を返します。
func (h *PayrollHandler) GetByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, payroll.ErrInvalidPayrollID)
		return
	}

	result, err := h.uc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPayrollResponse(result))
}

// GetByEmployeeAndPeriod は従業員と年月の組で給与明細を返します。
// 対象が存在しない場合は null を返します。
func (h *PayrollHandler) GetByEmployeeAndPeriod(c *gin.Context) {
	employeeID, err := parseID(c.Param("employeeId"))
	if err != nil {
		respondError(c, directory.ErrInvalidEmployeeID)
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		respondError(c, payroll.ErrInvalidYear)
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		respondError(c, payroll.ErrInvalidMonth)
		return
	}

	result, err := h.uc.GetByEmployeeAndPeriod(c.Request.Context(), employeeID, year, month)
	if err != nil {
		respondError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, toPayrollResponse(result))
}

// ListByEmployeeYear は従業員の年内の給与明細一覧を返します。
func (h *PayrollHandler) ListByEmployeeYear(c *gin.Context) {
	employeeID, err := parseID(c.Param("employeeId"))
	if err != nil {
		respondError(c, directory.ErrInvalidEmployeeID)
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		respondError(c, payroll.ErrInvalidYear)
		return
	}

	payrolls, err := h.uc.ListByEmployeeYear(c.Request.Context(), employeeID, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPayrollResponses(payrolls))
}

// ListByEmployee は従業員の全給与明細を新しい期間順に返します。
func (h *PayrollHandler) ListByEmployee(c *gin.Context) {
	employeeID, err := parseID(c.Param("employeeId"))
	if err != nil {
		respondError(c, directory.ErrInvalidEmployeeID)
		return
	}

	payrolls, err := h.uc.ListByEmployee(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPayrollResponses(payrolls))
}

// Delete は HR/Admin による給与明細の削除です。
func (h *PayrollHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, payroll.ErrInvalidPayrollID)
		return
	}
	requesterID, err := parseID(c.Query("requesterId"))
	if err != nil {
		respondError(c, directory.ErrInvalidEmployeeID)
		return
	}

	if err := h.uc.Delete(c.Request.Context(), id, requesterID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toPayrollResponse(p *payroll.Payroll) payrollResponse {
	return payrollResponse{
		ID:             p.ID,
		EmployeeID:     p.EmployeeID,
		Year:           p.Year,
		Month:          p.Month,
		BaseSalary:     json.Number(p.BaseSalary.String()),
		TotalWorkHours: json.Number(p.TotalWorkHours.String()),
		OvertimeHours:  json.Number(p.OvertimeHours.String()),
		OvertimePay:    json.Number(p.OvertimePay.String()),
		Bonus:          json.Number(p.Bonus.String()),
		GrossSalary:    json.Number(p.GrossSalary.String()),
		Deductions:     json.Number(p.Deductions.String()),
		NetSalary:      json.Number(p.NetSalary.String()),
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

func toPayrollResponses(payrolls []*payroll.Payroll) []payrollResponse {
	out := make([]payrollResponse, 0, len(payrolls))
	for _, p := range payrolls {
		out = append(out, toPayrollResponse(p))
	}
	return out
}
