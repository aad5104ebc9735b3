package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/hr-attendance-api/internal/core/attendance"
	"github.com/ogurasousui/hr-attendance-api/internal/core/directory"
)

// AttendanceHandler は勤怠ユースケースを HTTP に公開します。
type AttendanceHandler struct {
	uc attendance.UseCase
}

// NewAttendanceHandler は AttendanceHandler を生成します。
func NewAttendanceHandler(uc attendance.UseCase) *AttendanceHandler {
	return &AttendanceHandler{uc: uc}
}

// Register は /api/attendance 配下のルートを登録します。
func (h *AttendanceHandler) Register(r gin.IRouter) {
	g := r.Group("/api/attendance")
	g.POST("/checkin", h.CheckIn)
	g.POST("/checkout", h.CheckOut)
	g.POST("/checkin/token", h.CheckInByToken)
	g.POST("/checkout/token", h.CheckOutByToken)
	g.POST("/save", h.SaveRecord)
	g.GET("/today/:employeeId", h.TodayStatus)
	g.GET("/weekly/:employeeId", h.WeeklyRecords)
	g.GET("/monthly/:employeeId", h.MonthlyRecords)
	g.GET("/recent/:employeeId", h.RecentRecords)
	g.GET("/totalhours/:employeeId", h.TotalHours)
	g.GET("", h.List)
	g.PUT("/:id", h.UpdateRecord)
	g.DELETE("/:id", h.DeleteRecord)
}

type attendanceCheckRequest struct {
	EmployeeID   int64  `json:"employeeId"`
	Date         string `json:"date"`
	CheckInTime  string `json:"checkInTime"`
	CheckOutTime string `json:"checkOutTime"`
}

type tokenCheckRequest struct {
	Token string `json:"token"`
}

type attendanceUpdateRequest struct {
	Date         *string `json:"date"`
	CheckInTime  *string `json:"checkInTime"`
	CheckOutTime *string `json:"checkOutTime"`
	Status       *string `json:"status"`
}

type attendanceResponse struct {
	ID           int64       `json:"id"`
	EmployeeID   int64       `json:"employeeId"`
	EmployeeName string      `json:"employeeName,omitempty"`
	Date         string      `json:"date"`
	CheckInTime  *string     `json:"checkInTime"`
	CheckOutTime *string     `json:"checkOutTime"`
	HoursWorked  json.Number `json:"hoursWorked"`
	Status       string      `json:"status"`
	NewToken     string      `json:"newToken,omitempty"`
}

type totalHoursResponse struct {
	EmployeeID       int64       `json:"employeeId"`
	TotalHours       json.Number `json:"totalHours"`
	LastCheckInTime  *string     `json:"lastCheckInTime"`
	LastCheckOutTime *string     `json:"lastCheckOutTime"`
}

// CheckIn は当日(または指定日)のチェックインを記録します。
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req attendanceCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := attendance.CheckInInput{EmployeeID: req.EmployeeID}
	if !bindOptionalDate(c, req.Date, &in.Date) {
		return
	}
	if !bindOptionalTime(c, req.CheckInTime, &in.At) {
		return
	}

	record, err := h.uc.CheckIn(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponse(record, ""))
}

// CheckOut はチェックアウトを記録し労働時間を確定します。
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	var req attendanceCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := attendance.CheckOutInput{EmployeeID: req.EmployeeID}
	if !bindOptionalDate(c, req.Date, &in.Date) {
		return
	}
	if !bindOptionalTime(c, req.CheckOutTime, &in.At) {
		return
	}

	record, err := h.uc.CheckOut(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponse(record, ""))
}

// CheckInByToken はトークンで従業員を解決してチェックインし、
// 新しく発行されたトークンを応答に含めます。
func (h *AttendanceHandler) CheckInByToken(c *gin.Context) {
	var req tokenCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.CheckInByToken(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponse(result.Record, result.NewToken))
}

// CheckOutByToken はトークンで従業員を解決してチェックアウトします。
func (h *AttendanceHandler) CheckOutByToken(c *gin.Context) {
	var req tokenCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.CheckOutByToken(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponse(result.Record, result.NewToken))
}

// SaveRecord は (従業員, 日付) キーの upsert 保存です。
func (h *AttendanceHandler) SaveRecord(c *gin.Context) {
	var req attendanceCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := attendance.SaveRecordInput{EmployeeID: req.EmployeeID}
	if !bindOptionalDate(c, req.Date, &in.Date) {
		return
	}
	if !bindOptionalTime(c, req.CheckInTime, &in.CheckInTime) {
		return
	}
	if !bindOptionalTime(c, req.CheckOutTime, &in.CheckOutTime) {
		return
	}

	record, err := h.uc.SaveRecord(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponse(record, ""))
}

// UpdateRecord は HR/Admin による勤怠レコードの修正です。
func (h *AttendanceHandler) UpdateRecord(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, attendance.ErrInvalidRecordID)
		return
	}
	requesterID, err := parseID(c.Query("requesterId"))
	if err != nil {
		respondError(c, directory.ErrInvalidEmployeeID)
		return
	}

	var req attendanceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := attendance.UpdateRecordInput{ID: id, RequesterID: requesterID, Status: req.Status}
	if req.Date != nil && !bindOptionalDate(c, *req.Date, &in.Date) {
		return
	}
	if req.CheckInTime != nil && !bindOptionalTime(c, *req.CheckInTime, &in.CheckInTime) {
		return
	}
	if req.CheckOutTime != nil && !bindOptionalTime(c, *req.CheckOutTime, &in.CheckOutTime) {
		return
	}

	record, err := h.uc.UpdateRecord(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponse(record, ""))
}

// DeleteRecord は HR/Admin による勤怠レコードの削除です。
func (h *AttendanceHandler) DeleteRecord(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, attendance.ErrInvalidRecordID)
		return
	}
	requesterID, err := parseID(c.Query("requesterId"))
	if err != nil {
		respondError(c, directory.ErrInvalidEmployeeID)
		return
	}

	if err := h.uc.DeleteRecord(c.Request.Context(), id, requesterID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TodayStatus は当日のレコードを返します。未チェックインなら null です。
func (h *AttendanceHandler) TodayStatus(c *gin.Context) {
	employeeID, err := parseID(c.Param("employeeId"))
	if err != nil {
		respondError(c, directory.ErrInvalidEmployeeID)
		return
	}

	record, err := h.uc.TodayStatus(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponse(record, ""))
}

// WeeklyRecords は今週(月曜始まり)のレコード一覧を返します。
func (h *AttendanceHandler) WeeklyRecords(c *gin.Context) {
	employeeID, err := parseID(c.Param("employeeId"))
	if err != nil {
		respondError(c, directory.ErrInvalidEmployeeID)
		return
	}

	records, err := h.uc.WeeklyRecords(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponses(records))
}

// MonthlyRecords は指定年月のレコード一覧を返します。
func (h *AttendanceHandler) MonthlyRecords(c *gin.Context) {
	employeeID, err := parseID(c.Param("employeeId"))
	if err != nil {
		respondError(c, directory.ErrInvalidEmployeeID)
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		respondError(c, attendance.ErrInvalidMonth)
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		respondError(c, attendance.ErrInvalidMonth)
		return
	}

	records, err := h.uc.MonthlyRecords(c.Request.Context(), employeeID, year, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponses(records))
}

// RecentRecords は直近のレコードを新しい順に返します。
func (h *AttendanceHandler) RecentRecords(c *gin.Context) {
	employeeID, err := parseID(c.Param("employeeId"))
	if err != nil {
		respondError(c, directory.ErrInvalidEmployeeID)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			respondError(c, attendance.ErrInvalidLimit)
			return
		}
	}

	records, err := h.uc.RecentRecords(c.Request.Context(), employeeID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponses(records))
}

// List は絞り込み条件付きの全件検索です。
func (h *AttendanceHandler) List(c *gin.Context) {
	var filter attendance.ListFilter

	if raw := c.Query("employeeId"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			respondError(c, directory.ErrInvalidEmployeeID)
			return
		}
		filter.EmployeeID = &id
	}
	filter.Name = c.Query("name")
	if raw := c.Query("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			respondError(c, attendance.ErrInvalidDateRange)
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			respondError(c, attendance.ErrInvalidDateRange)
			return
		}
		filter.To = &to
	}

	records, err := h.uc.ListRecords(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAttendanceResponses(records))
}

// TotalHours は従業員の累計労働時間を返します。
func (h *AttendanceHandler) TotalHours(c *gin.Context) {
	employeeID, err := parseID(c.Param("employeeId"))
	if err != nil {
		respondError(c, directory.ErrInvalidEmployeeID)
		return
	}

	result, err := h.uc.TotalHours(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, totalHoursResponse{
		EmployeeID:       result.EmployeeID,
		TotalHours:       json.Number(result.TotalHours.String()),
		LastCheckInTime:  formatTimePtr(result.LastCheckInTime),
		LastCheckOutTime: formatTimePtr(result.LastCheckOutTime),
	})
}

func bindOptionalDate(c *gin.Context, raw string, dst **time.Time) bool {
	if raw == "" {
		return true
	}
	d, err := parseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	*dst = &d
	return true
}

func bindOptionalTime(c *gin.Context, raw string, dst **time.Time) bool {
	if raw == "" {
		return true
	}
	ts, err := parseTimestamp(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	*dst = &ts
	return true
}

func toAttendanceResponse(record *attendance.Record, newToken string) attendanceResponse {
	return attendanceResponse{
		ID:           record.ID,
		EmployeeID:   record.EmployeeID,
		EmployeeName: record.EmployeeName,
		Date:         record.Date.Format(dateLayout),
		CheckInTime:  formatTimePtr(record.CheckInTime),
		CheckOutTime: formatTimePtr(record.CheckOutTime),
		HoursWorked:  json.Number(record.HoursWorked.String()),
		Status:       record.Status,
		NewToken:     newToken,
	}
}

func toAttendanceResponses(records []*attendance.Record) []attendanceResponse {
	out := make([]attendanceResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toAttendanceResponse(record, ""))
	}
	return out
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
