// Package ingest turns decoded spreadsheet sheets into trip records.
package ingest

import (
	"regexp"
	"strings"

	"github.com/fleetops/distance-report/internal/model"
	"github.com/fleetops/distance-report/internal/normalize"
)

// Sheet is one worksheet as a grid of stringified cell values.
type Sheet struct {
	Name string
	Rows [][]string
}

type Field string

const (
	FieldVehicle     Field = "vehicle"
	FieldArea        Field = "area"
	FieldTankerType  Field = "tanker_type"
	FieldTransporter Field = "transporter"
	FieldReportDate  Field = "report_date"
	FieldDistance    Field = "distance"
	FieldTripCount   Field = "trip_count"
)

type SkipReason string

const (
	SkipBlank          SkipReason = "blank"
	SkipRepeatedHeader SkipReason = "repeated_header"
	SkipMalformedDate  SkipReason = "malformed_date"
	SkipMissingVehicle SkipReason = "missing_vehicle"
)

type columnLabels struct {
	field  Field
	labels []string
}

// columnTable lists the accepted header spellings per field. Fields are
// resolved in this order and a column is claimed by at most one field.
var columnTable = []columnLabels{
	{FieldVehicle, []string{"Vehicle No.", "Vehicle Number", "Vehicle", "Vehicle ID", "Vehicle Reg No", "Registration No", "Reg No"}},
	{FieldReportDate, []string{"Report Date", "Date", "Trip Date", "Day"}},
	{FieldDistance, []string{"Trip Distance / Engine Hour", "Trip Distance", "Distance", "Distance (km)", "Total Distance", "KM", "Kms"}},
	{FieldTripCount, []string{"Trip Count", "Trips", "No. of Trips", "Number of Trips", "Total Trips", "Trip"}},
	{FieldArea, []string{"Area", "Zone", "Region", "Location"}},
	{FieldTankerType, []string{"Tanker Type", "Vehicle Type", "Tanker", "Type"}},
	{FieldTransporter, []string{"Transporter Name", "Transporter", "Transport Name", "Vendor", "Vendor Name"}},
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeHeader lower-cases text and strips everything but letters and digits.
func NormalizeHeader(text string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(text), "")
}

type Result struct {
	Records      []model.TripRecord
	Sheets       int
	HeaderSheets int
	ContextRows  int
	Skipped      map[SkipReason]int
}

type Ingester struct {
	table []columnLabels
}

func NewIngester() *Ingester {
	table := make([]columnLabels, len(columnTable))
	for i, entry := range columnTable {
		labels := make([]string, len(entry.labels))
		for j, label := range entry.labels {
			labels[j] = NormalizeHeader(label)
		}
		table[i] = columnLabels{field: entry.field, labels: labels}
	}
	return &Ingester{table: table}
}

// Ingest scans every sheet in order and returns the records in source row
// order. Noisy rows are counted in Result.Skipped, never returned as errors.
func (in *Ingester) Ingest(sheets []Sheet) Result {
	result := Result{Skipped: make(map[SkipReason]int)}
	for _, sheet := range sheets {
		result.Sheets++
		in.scanSheet(sheet, &result)
	}
	return result
}

type carryForward struct {
	vehicle     string
	area        string
	tankerType  string
	transporter string
}

type scanContext struct {
	headerFound bool
	columns     map[Field]int
	dateLabel   string
	carry       carryForward
}

func (in *Ingester) scanSheet(sheet Sheet, result *Result) {
	var sc scanContext

	for _, row := range sheet.Rows {
		if !sc.headerFound {
			if columns, ok := in.matchHeader(row); ok {
				sc.headerFound = true
				sc.columns = columns
				sc.dateLabel = NormalizeHeader(row[columns[FieldReportDate]])
				result.HeaderSheets++
			}
			continue
		}

		if isBlank(row) {
			result.Skipped[SkipBlank]++
			continue
		}

		dateCell := sc.cell(row, FieldReportDate)
		if NormalizeHeader(dateCell) == sc.dateLabel {
			result.Skipped[SkipRepeatedHeader]++
			continue
		}

		if normalize.IsRange(dateCell) {
			sc.carry = carryForward{
				vehicle:     sc.cell(row, FieldVehicle),
				area:        sc.cell(row, FieldArea),
				tankerType:  sc.cell(row, FieldTankerType),
				transporter: sc.cell(row, FieldTransporter),
			}
			result.ContextRows++
			continue
		}

		reportDate, ok := normalize.Date(dateCell)
		if !ok {
			result.Skipped[SkipMalformedDate]++
			continue
		}

		record := model.TripRecord{
			VehicleNumber:   firstNonEmpty(sc.cell(row, FieldVehicle), sc.carry.vehicle),
			Area:            firstNonEmpty(sc.cell(row, FieldArea), sc.carry.area),
			TankerType:      firstNonEmpty(sc.cell(row, FieldTankerType), sc.carry.tankerType),
			TransporterName: firstNonEmpty(sc.cell(row, FieldTransporter), sc.carry.transporter),
			ReportDate:      reportDate,
			TripDistance:    normalize.Distance(sc.cell(row, FieldDistance)),
			TripCount:       normalize.TripCount(sc.cell(row, FieldTripCount)),
		}
		if record.VehicleNumber == "" {
			result.Skipped[SkipMissingVehicle]++
			continue
		}
		result.Records = append(result.Records, record)
	}
}

// matchHeader reports whether row holds both a vehicle and a report date
// label and returns the resolved column index per field.
func (in *Ingester) matchHeader(row []string) (map[Field]int, bool) {
	normalized := make([]string, len(row))
	for i, cell := range row {
		normalized[i] = NormalizeHeader(cell)
	}

	columns := make(map[Field]int, len(in.table))
	claimed := make(map[int]bool, len(in.table))
	for _, entry := range in.table {
		if idx, ok := findColumn(normalized, entry.labels, claimed); ok {
			columns[entry.field] = idx
			claimed[idx] = true
		}
	}

	if _, ok := columns[FieldVehicle]; !ok {
		return nil, false
	}
	if _, ok := columns[FieldReportDate]; !ok {
		return nil, false
	}

	if _, ok := columns[FieldTripCount]; !ok {
		last := lastNonEmpty(normalized)
		if last >= 0 && !claimed[last] {
			columns[FieldTripCount] = last
		}
	}
	return columns, true
}

func findColumn(normalized []string, labels []string, claimed map[int]bool) (int, bool) {
	for _, label := range labels {
		for idx, cell := range normalized {
			if cell != "" && cell == label && !claimed[idx] {
				return idx, true
			}
		}
	}
	return -1, false
}

func (sc *scanContext) cell(row []string, field Field) string {
	idx, ok := sc.columns[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func lastNonEmpty(cells []string) int {
	for i := len(cells) - 1; i >= 0; i-- {
		if cells[i] != "" {
			return i
		}
	}
	return -1
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
