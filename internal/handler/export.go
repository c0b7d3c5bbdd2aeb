package handler

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"campus-complaints/internal/middleware"
	"campus-complaints/internal/models"
	"campus-complaints/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler streams every complaint as CSV or XLSX for admins.
type ExportHandler struct {
	*View
	Complaints *service.ComplaintService
}

func NewExportHandler(view *View, complaints *service.ComplaintService) *ExportHandler {
	return &ExportHandler{View: view, Complaints: complaints}
}

var exportHeaders = []string{"Number", "Submitted At", "Submitter", "Email", "Title", "Category", "Status", "Reply", "Description"}

func exportRecord(c *models.Complaint) []string {
	email := ""
	if c.Email != nil {
		email = *c.Email
	}
	return []string{
		strconv.FormatUint(uint64(c.Number), 10),
		c.SubmittedAt,
		c.Submitter,
		email,
		c.Title,
		c.Category,
		string(c.Status),
		c.Reply,
		c.Description,
	}
}

func (h *ExportHandler) load(c *gin.Context) ([]models.Complaint, bool) {
	list, err := h.Complaints.List(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.Fail(c, err, "export complaints")
		return nil, false
	}
	return list, true
}

func attachmentName(ext string) string {
	return fmt.Sprintf("attachment; filename=\"complaints_%s.%s\"", time.Now().Format("20060102"), ext)
}

// ExportCSV writes the complaint list as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	list, ok := h.load(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", attachmentName("csv"))

	// UTF-8 BOM so spreadsheet apps pick the right encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeaders)
	for i := range list {
		_ = w.Write(exportRecord(&list[i]))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.Log.Warn().Err(err).Msg("write csv export")
	}
}

// ExportXLSX writes the complaint list as a single-sheet workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	list, ok := h.load(c)
	if !ok {
		return
	}

	f, err := buildWorkbook(list)
	if err != nil {
		h.Fail(c, err, "build xlsx export")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", attachmentName("xlsx"))
	if err := f.Write(c.Writer); err != nil {
		h.Log.Warn().Err(err).Msg("write xlsx export")
	}
}

const exportSheet = "Complaints"

func buildWorkbook(list []models.Complaint) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(exportHeaders))
	for i, v := range exportHeaders {
		header[i] = v
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i := range list {
		rec := exportRecord(&list[i])
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		// numbers as numbers so the column sorts
		row[0] = list[i].Number
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	f.SetColWidth(exportSheet, "A", "A", 10)
	f.SetColWidth(exportSheet, "B", "B", 24)
	f.SetColWidth(exportSheet, "C", "D", 22)
	f.SetColWidth(exportSheet, "E", "E", 30)
	f.SetColWidth(exportSheet, "F", "G", 14)
	f.SetColWidth(exportSheet, "H", "I", 40)
	return f, nil
}
