package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hospital-equipment-tracker/internal/middleware"
	"hospital-equipment-tracker/internal/service"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 10 << 20

var contentTypes = map[string]string{
	service.FormatCSV:  "text/csv; charset=utf-8",
	service.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// TransferHandler serves spreadsheet import/export and the PDF status report
type TransferHandler struct {
	importExportService *service.ImportExportService
	reportService       *service.ReportService
}

func NewTransferHandler(importExportService *service.ImportExportService, reportService *service.ReportService) *TransferHandler {
	return &TransferHandler{
		importExportService: importExportService,
		reportService:       reportService,
	}
}

// Export streams /export/:type?format=csv|xlsx as an attachment
func (h *TransferHandler) Export(c *gin.Context) {
	kind, err := service.ParseKind(c.Param("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", service.FormatCSV))
	contentType, ok := contentTypes[format]
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}

	// Buffer so that a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.importExportService.Export(kind, format, &buf); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("%s_equipment_%s.%s", kind, time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Import reads the multipart "file" field (.csv or .xlsx)
func (h *TransferHandler) Import(c *gin.Context) {
	kind, err := service.ParseKind(c.Param("type"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	fh, err := c.FormFile("file")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unreadable upload")
		return
	}
	defer f.Close()

	result, err := h.importExportService.Import(kind, fh.Filename, f, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

func (h *TransferHandler) StatusReport(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reportService.StatusReport(&buf); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("maintenance_status_%s.pdf", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
