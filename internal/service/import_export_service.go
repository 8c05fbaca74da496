package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// EquipmentKind selects the PPM or OCM register
type EquipmentKind string

const (
	KindPPM EquipmentKind = "ppm"
	KindOCM EquipmentKind = "ocm"
)

func ParseKind(s string) (EquipmentKind, error) {
	switch EquipmentKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPPM:
		return KindPPM, nil
	case KindOCM:
		return KindOCM, nil
	}
	return "", invalidInput("unknown equipment type %q", s)
}

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Column names follow the spreadsheets the biomedical department already keeps
var (
	ppmColumns = []string{
		"NO", "Department", "Name", "MODEL", "SERIAL", "MANUFACTURER", "LOG_Number",
		"Installation_Date", "Warranty_End",
		"PPM_Q_I_date", "PPM_Q_I_engineer", "PPM_Q_II_date", "PPM_Q_II_engineer",
		"PPM_Q_III_date", "PPM_Q_III_engineer", "PPM_Q_IV_date", "PPM_Q_IV_engineer",
		"Status",
	}
	ppmRequired = []string{"Department", "Name", "MODEL", "SERIAL", "MANUFACTURER", "LOG_Number", "PPM_Q_I_date"}

	ocmColumns = []string{
		"NO", "Department", "Name", "Model", "Serial", "Manufacturer", "Log Number",
		"Installation Date", "Warranty End", "Service Date", "Engineer", "Next Maintenance", "Status",
	}
	ocmRequired = []string{"Department", "Name", "Model", "Serial", "Manufacturer", "Log Number", "Installation Date", "Service Date", "Next Maintenance"}

	columnAliases = map[string]string{
		"Installation_date:": "Installation_Date",
		"Installation_date":  "Installation_Date",
		"Warranty_end":       "Warranty_End",
	}
)

// ImportResult reports what an import did. Row errors never abort the import.
type ImportResult struct {
	TotalRows int      `json:"total_rows"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

type ImportExportService struct {
	ppmService *PPMService
	ocmService *OCMService
	audit      auditor
	log        *zap.Logger
}

func NewImportExportService(ppmService *PPMService, ocmService *OCMService, log *zap.Logger) *ImportExportService {
	return &ImportExportService{
		ppmService: ppmService,
		ocmService: ocmService,
		audit:      ppmService.audit,
		log:        log,
	}
}

// Export writes every record of the given kind as CSV or XLSX
func (s *ImportExportService) Export(kind EquipmentKind, format string, w io.Writer) error {
	rows, err := s.table(kind)
	if err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case FormatCSV, "":
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		return nil
	case FormatXLSX:
		return writeXLSX(strings.ToUpper(string(kind)), rows, w)
	default:
		return invalidInput("unsupported export format %q", format)
	}
}

func (s *ImportExportService) table(kind EquipmentKind) ([][]string, error) {
	switch kind {
	case KindPPM:
		items, err := s.ppmService.All()
		if err != nil {
			return nil, err
		}
		rows := [][]string{ppmColumns}
		for i, e := range items {
			row := []string{strconv.Itoa(i + 1), e.Department, e.Name, e.Model, e.Serial, e.Manufacturer, e.LogNumber, e.InstallationDate, e.WarrantyEnd}
			for _, q := range e.Quarters {
				row = append(row, q.Date, q.Engineer)
			}
			rows = append(rows, append(row, string(e.Status)))
		}
		return rows, nil
	case KindOCM:
		items, err := s.ocmService.All()
		if err != nil {
			return nil, err
		}
		rows := [][]string{ocmColumns}
		for i, e := range items {
			no := e.No
			if no == 0 {
				no = i + 1
			}
			rows = append(rows, []string{
				strconv.Itoa(no), e.Department, e.Name, e.Model, e.Serial, e.Manufacturer, e.LogNumber,
				e.InstallationDate, e.WarrantyEnd, e.ServiceDate, e.Engineer, e.NextMaintenance, string(e.Status),
			})
		}
		return rows, nil
	}
	return nil, invalidInput("unknown equipment type %q", kind)
}

func writeXLSX(sheet string, rows [][]string, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// Import reads a .csv or .xlsx file and upserts each row by serial number.
// For PPM rows only the Q1 date is read; later quarters are re-derived.
func (s *ImportExportService) Import(kind EquipmentKind, filename string, r io.Reader, userID uint) (*ImportResult, error) {
	records, err := readRecords(filename, r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, invalidInput("file is empty")
	}

	header := newHeader(records[0])
	detected := header.detect()
	if detected == "" {
		return nil, invalidInput("required columns missing")
	}
	if detected != kind {
		return nil, invalidInput("file appears to be %s format, but %s was requested", detected, kind)
	}

	result := &ImportResult{TotalRows: len(records) - 1, Errors: []string{}}
	for i, row := range records[1:] {
		line := i + 2
		if blankRow(row) {
			result.Skipped++
			continue
		}

		var created bool
		switch kind {
		case KindPPM:
			created, err = s.ppmService.Upsert(header.ppmInput(row), userID)
		case KindOCM:
			created, err = s.ocmService.Upsert(header.ocmInput(row), userID)
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.audit.record(userID, "import_"+string(kind), "Imported %s from %s: %d created, %d updated, %d skipped, %d errors",
		strings.ToUpper(string(kind)), filepath.Base(filename), result.Created, result.Updated, result.Skipped, len(result.Errors))
	s.log.Info("Import finished",
		zap.String("kind", string(kind)),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

func readRecords(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		records, err := cr.ReadAll()
		if err != nil {
			return nil, invalidInput("unreadable csv: %v", err)
		}
		if len(records) > 0 && len(records[0]) > 0 {
			records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
		}
		return records, nil
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, invalidInput("unreadable xlsx: %v", err)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, invalidInput("workbook has no sheets")
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, invalidInput("unreadable xlsx: %v", err)
		}
		return rows, nil
	default:
		return nil, invalidInput("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(filename))
	}
}

type header map[string]int

func newHeader(cols []string) header {
	h := make(header, len(cols))
	for i, col := range cols {
		col = strings.TrimSpace(col)
		if alias, ok := columnAliases[col]; ok {
			col = alias
		}
		if _, seen := h[col]; !seen {
			h[col] = i
		}
	}
	return h
}

func (h header) has(cols []string) bool {
	for _, col := range cols {
		if _, ok := h[col]; !ok {
			return false
		}
	}
	return true
}

func (h header) detect() EquipmentKind {
	switch {
	case h.has(ppmRequired):
		return KindPPM
	case h.has(ocmRequired):
		return KindOCM
	}
	return ""
}

func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h header) ppmInput(row []string) PPMInput {
	return PPMInput{
		Serial:           h.get(row, "SERIAL"),
		Department:       h.get(row, "Department"),
		Name:             h.get(row, "Name"),
		Model:            h.get(row, "MODEL"),
		Manufacturer:     h.get(row, "MANUFACTURER"),
		LogNumber:        h.get(row, "LOG_Number"),
		InstallationDate: h.get(row, "Installation_Date"),
		WarrantyEnd:      h.get(row, "Warranty_End"),
		Q1Date:           h.get(row, "PPM_Q_I_date"),
		Q1Engineer:       h.get(row, "PPM_Q_I_engineer"),
		Q2Engineer:       h.get(row, "PPM_Q_II_engineer"),
		Q3Engineer:       h.get(row, "PPM_Q_III_engineer"),
		Q4Engineer:       h.get(row, "PPM_Q_IV_engineer"),
	}
}

func (h header) ocmInput(row []string) OCMInput {
	// a blank or non-numeric NO falls back to the next free number
	no, _ := strconv.Atoi(h.get(row, "NO"))
	return OCMInput{
		No:               max(no, 0),
		Serial:           h.get(row, "Serial"),
		Department:       h.get(row, "Department"),
		Name:             h.get(row, "Name"),
		Model:            h.get(row, "Model"),
		Manufacturer:     h.get(row, "Manufacturer"),
		LogNumber:        h.get(row, "Log Number"),
		InstallationDate: h.get(row, "Installation Date"),
		WarrantyEnd:      h.get(row, "Warranty End"),
		ServiceDate:      h.get(row, "Service Date"),
		Engineer:         h.get(row, "Engineer"),
		NextMaintenance:  h.get(row, "Next Maintenance"),
	}
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
