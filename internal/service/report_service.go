package service

import (
	"fmt"
	"io"
	"time"

	"hospital-equipment-tracker/internal/maintenance"

	"github.com/go-pdf/fpdf"
)

type ReportService struct {
	ppmService *PPMService
	ocmService *OCMService
	clock
}

func NewReportService(ppmService *PPMService, ocmService *OCMService) *ReportService {
	return &ReportService{ppmService: ppmService, ocmService: ocmService}
}

var (
	ppmReportHeader = []string{"Serial", "Department", "Name", "Model", "Q1", "Q2", "Q3", "Q4", "Status"}
	ppmReportWidths = []float64{30, 38, 40, 30, 30, 30, 30, 30, 19}
	ocmReportHeader = []string{"Serial", "Department", "Name", "Model", "Service", "Engineer", "Next", "Status"}
	ocmReportWidths = []float64{32, 40, 44, 34, 28, 40, 28, 31}
)

// StatusReport renders the maintenance status of every PPM and OCM record as a PDF
func (s *ReportService) StatusReport(w io.Writer) error {
	ppm, err := s.ppmService.All()
	if err != nil {
		return err
	}
	ocm, err := s.ocmService.All()
	if err != nil {
		return err
	}

	today := s.today()
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Equipment Maintenance Status", false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Equipment Maintenance Status Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, "Generated "+maintenance.FormatDate(today)+" at "+time.Now().Format("15:04"))
	pdf.Ln(10)

	var ppmCounts, ocmCounts StatusCounts
	for _, e := range ppm {
		ppmCounts.add(e.Status)
	}
	for _, e := range ocm {
		ocmCounts.add(e.Status)
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("PPM: %d total, %d overdue, %d upcoming, %d maintained",
		ppmCounts.Total, ppmCounts.Overdue, ppmCounts.Upcoming, ppmCounts.Maintained))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("OCM: %d total, %d overdue, %d upcoming, %d maintained",
		ocmCounts.Total, ocmCounts.Overdue, ocmCounts.Upcoming, ocmCounts.Maintained))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 9, "Planned Preventive Maintenance")
	pdf.Ln(9)
	tableHeader(pdf, ppmReportHeader, ppmReportWidths)
	for _, e := range ppm {
		row := []string{e.Serial, e.Department, e.Name, e.Model}
		for _, q := range e.Quarters {
			row = append(row, q.Date)
		}
		tableRow(pdf, append(row, string(e.Status)), ppmReportWidths, e.Status)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 9, "On-Call Maintenance")
	pdf.Ln(9)
	tableHeader(pdf, ocmReportHeader, ocmReportWidths)
	for _, e := range ocm {
		tableRow(pdf, []string{e.Serial, e.Department, e.Name, e.Model, e.ServiceDate, e.Engineer, e.NextMaintenance, string(e.Status)},
			ocmReportWidths, e.Status)
	}

	return pdf.Output(w)
}

func tableHeader(pdf *fpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 7, col, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func tableRow(pdf *fpdf.Fpdf, values []string, widths []float64, status maintenance.Status) {
	pdf.SetFont("Arial", "", 8)
	for i, v := range values {
		if i == len(values)-1 {
			switch status {
			case maintenance.StatusOverdue:
				pdf.SetTextColor(190, 30, 30)
			case maintenance.StatusMaintained:
				pdf.SetTextColor(30, 130, 60)
			}
		}
		pdf.CellFormat(widths[i], 6, truncate(v, widths[i]), "1", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(-1)
}

// truncate keeps a cell value on one line for the given column width
func truncate(s string, width float64) string {
	limit := int(width / 1.7)
	if len(s) <= limit {
		return s
	}
	if limit <= 1 {
		return s[:limit]
	}
	return s[:limit-1] + "."
}
