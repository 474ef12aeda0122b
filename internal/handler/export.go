package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/models"
	"github.com/faxingberling1/internal-crm-sub001/internal/util"
)

// ExportHandler exports attendance history. Admin only (route-level).
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

// exportRows loads records filtered by optional employee_id and month
// (YYYY-MM) query parameters.
func (h *ExportHandler) exportRows(c *gin.Context) ([]models.AttendanceRecord, bool) {
	q := h.DB.Model(&models.AttendanceRecord{}).Preload("Employee")

	if v := c.Query("employee_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid employee id")
			return nil, false
		}
		q = q.Where("employee_id = ?", uint(id))
	}

	if v := c.Query("month"); v != "" {
		from, err := time.Parse("2006-01", v)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month must be YYYY-MM")
			return nil, false
		}
		q = q.Where("check_in >= ? AND check_in < ?", from, from.AddDate(0, 1, 0))
	}

	var records []models.AttendanceRecord
	if err := q.Order("check_in DESC").Find(&records).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query attendance failed")
		return nil, false
	}
	return records, true
}

func exportCells(rec *models.AttendanceRecord) []string {
	fmtTime := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	}
	worked := ""
	if rec.CheckOut != nil {
		worked = strconv.FormatFloat(rec.CheckOut.Sub(rec.CheckIn).Hours(), 'f', 1, 64)
	}
	return []string{
		rec.Employee.Name,
		rec.CheckIn.Format("2006-01-02 15:04"),
		fmtTime(rec.CheckOut),
		fmtTime(rec.BreakStart),
		fmtTime(rec.BreakEnd),
		worked,
		rec.Status,
	}
}

var exportHeaders = []string{
	"Employee", "Check In", "Check Out", "Break Start", "Break End", "Hours", "Status",
}

// ExportCSV writes the attendance history as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	records, ok := h.exportRows(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"attendance_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range records {
		writer.Write(exportCells(&records[i]))
	}
}

// ExportXLSX writes the attendance history as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	records, ok := h.exportRows(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Attendance"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, hd := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, hd)
	}

	for idx := range records {
		row := idx + 2
		for col, val := range exportCells(&records[idx]) {
			f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+col, row), val)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "E", 17)
	f.SetColWidth(sheetName, "F", "G", 10)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"attendance_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
