package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fleetops/distance-report/internal/model"
	"github.com/fleetops/distance-report/internal/normalize"
	"github.com/fleetops/distance-report/internal/summary"
)

const (
	summarySheet = "Summary"
	recordsSheet = "Records"
	maxSheetName = 31
)

var recordHeaders = []string{
	"S.No",
	"Area",
	"Vehicle No.",
	"Tanker Type",
	"Transporter Name",
	"Report Date",
	"Trip Distance / Engine Hour",
	"Trip Count",
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes a summary sheet, a sheet with every row and one sheet per
// vehicle. Rows are written in the order given.
func (g *Generator) Generate(report model.ReportRequest) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	totals := summary.ByVehicle(report.Rows)
	if err := g.writeSummary(file, report, totals); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(recordsSheet); err != nil {
		return nil, err
	}
	if err := g.writeRecords(file, recordsSheet, report.Rows); err != nil {
		return nil, err
	}

	used := map[string]struct{}{summarySheet: {}, recordsSheet: {}}
	for _, vehicle := range totals.Vehicles {
		sheet := buildSheetName(vehicle.VehicleNumber, used)
		used[sheet] = struct{}{}
		if _, err := file.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := g.writeRecords(file, sheet, rowsOf(report.Rows, vehicle.VehicleNumber)); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.ReportRequest, totals summary.Summary) error {
	var firstErr error
	set := func(cell string, value interface{}) {
		if err := file.SetCellValue(summarySheet, cell, value); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	set("A1", "Report")
	set("B1", report.Title)
	set("A2", "From")
	set("B2", formatDate(report.DateFrom))
	set("A3", "To")
	set("B3", formatDate(report.DateTo))
	set("A4", "Generated by")
	set("B4", report.GeneratedBy)
	set("A5", "Generated at")
	set("B5", formatDateTime(report.GeneratedAt))
	set("A6", "Total distance")
	set("B6", totals.FormattedDistance())
	set("A7", "Total trips")
	set("B7", totals.TotalTrips)

	tableRow := 9
	headers := []string{"Vehicle No.", "Area", "Tanker Type", "Transporter Name", "Total Distance", "Total Trips"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}
	for i, vehicle := range totals.Vehicles {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), vehicle.VehicleNumber)
		set(fmt.Sprintf("B%d", row), vehicle.Area)
		set(fmt.Sprintf("C%d", row), vehicle.TankerType)
		set(fmt.Sprintf("D%d", row), vehicle.TransporterName)
		set(fmt.Sprintf("E%d", row), vehicle.TotalDistance)
		set(fmt.Sprintf("F%d", row), vehicle.TotalTrips)
	}
	if firstErr != nil {
		return firstErr
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 18)
	_ = file.SetColWidth(summarySheet, "B", "D", 24)
	_ = file.SetColWidth(summarySheet, "E", "F", 16)
	return nil
}

func (g *Generator) writeRecords(file *excelize.File, sheet string, rows []model.TripRecord) error {
	header := make([]interface{}, len(recordHeaders))
	for i, h := range recordHeaders {
		header[i] = h
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, rec := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			i + 1,
			rec.Area,
			rec.VehicleNumber,
			rec.TankerType,
			rec.TransporterName,
			rec.ReportDate,
			rec.TripDistance,
			rec.TripCount,
		}
		if err := file.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 8)
	_ = file.SetColWidth(sheet, "B", "D", 16)
	_ = file.SetColWidth(sheet, "E", "E", 28)
	_ = file.SetColWidth(sheet, "F", "F", 14)
	_ = file.SetColWidth(sheet, "G", "G", 26)
	_ = file.SetColWidth(sheet, "H", "H", 12)
	return nil
}

func rowsOf(rows []model.TripRecord, vehicle string) []model.TripRecord {
	var out []model.TripRecord
	for _, row := range rows {
		if row.VehicleNumber == vehicle {
			out = append(out, row)
		}
	}
	return out
}

func buildSheetName(name string, used map[string]struct{}) string {
	base := sanitizeSheetName(name)
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}

	candidate := base
	counter := 2
	for {
		if _, exists := used[candidate]; !exists {
			return candidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		candidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
		"'", "",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Vehicle"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return normalize.FormatDate(t)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return normalize.FormatDate(t) + " " + t.Format("15:04:05")
}
