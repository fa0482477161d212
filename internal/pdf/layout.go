package pdf

import (
	"strconv"
	"time"

	"github.com/fleetops/distance-report/internal/model"
	"github.com/fleetops/distance-report/internal/normalize"
)

// All measurements are PDF points.
const (
	RowsPerPage = 21

	pageWidth  = 810.0
	margin     = 30.0
	rowHeight  = 20.0
	bandHeight = 22.0
	// pageHeight fits the table header, a full page of rows and the footer.
	pageHeight = margin + bandHeight + RowsPerPage*rowHeight + footerReserve
	// footerReserve is the space between the last row and the bottom edge.
	footerReserve = 60.0
	footerOffset  = 30.0

	logoWidth        = 150.0
	logoMaxHeight    = 120.0
	logoStretch      = 1.5
	logoBottomOffset = 4.0
	titleGap         = 6.0
	titleHeight      = 18.0
	qrSize           = 96.0
	captionHeight    = 12.0
	headerGap        = 10.0
)

var columnWidths = [8]float64{40, 85, 95, 85, 165, 80, 130, 70}

var columnTitles = [8]string{
	"S.No",
	"Area",
	"Vehicle No.",
	"Tanker Type",
	"Transporter Name",
	"Report Date",
	"Trip Distance / Engine Hour",
	"Trip Count",
}

// PageLayout is the slice of rows drawn on one page. Offset is the global
// index of the first row so banding and numbering continue across pages.
type PageLayout struct {
	Index           int
	Offset          int
	Rows            []model.TripRecord
	IsFirstPage     bool
	IncludesSummary bool
}

// Paginate splits rows into pages of RowsPerPage. There is always at least
// one page and only the first one carries the summary band.
func Paginate(rows []model.TripRecord) []PageLayout {
	total := PageCount(len(rows))
	pages := make([]PageLayout, 0, total)
	for i := 0; i < total; i++ {
		start := i * RowsPerPage
		end := start + RowsPerPage
		if end > len(rows) {
			end = len(rows)
		}
		pages = append(pages, PageLayout{
			Index:           i,
			Offset:          start,
			Rows:            rows[start:end],
			IsFirstPage:     i == 0,
			IncludesSummary: i == 0 && len(rows) > 0,
		})
	}
	return pages
}

func PageCount(rows int) int {
	if rows <= 0 {
		return 1
	}
	return (rows + RowsPerPage - 1) / RowsPerPage
}

type rgb struct{ r, g, b int }

var (
	accentFill    = rgb{31, 78, 121}
	accentText    = rgb{255, 255, 255}
	summaryFill   = rgb{214, 228, 240}
	bodyText      = rgb{33, 33, 33}
	evenRowFill   = rgb{255, 255, 255}
	oddRowFill    = rgb{242, 242, 242}
	footerText    = rgb{90, 90, 90}
	headerCaption = rgb{60, 60, 60}
)

// rowFill picks the band colour from the global row index.
func rowFill(globalIndex int) rgb {
	if globalIndex%2 == 0 {
		return evenRowFill
	}
	return oddRowFill
}

// monthBounds widens [from, to] to whole calendar months.
func monthBounds(from, to time.Time) (time.Time, time.Time) {
	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month()+1, 0, 0, 0, 0, 0, to.Location())
	return start, end
}

func titleLine(req model.ReportRequest) string {
	start, end := monthBounds(req.DateFrom, req.DateTo)
	return req.Title + " (From: " + normalize.FormatDate(start) + " To: " + normalize.FormatDate(end) + ")"
}

type summaryBand struct {
	cells [8]string
}

// summarize builds the first page sub-header. The identifying columns come
// from the first row; distance and trips are totals over every row.
func summarize(req model.ReportRequest) summaryBand {
	first := req.Rows[0]
	distances := make([]string, len(req.Rows))
	trips := 0
	for i, row := range req.Rows {
		distances[i] = row.TripDistance
		trips += row.TripCount
	}
	return summaryBand{cells: [8]string{
		"",
		first.Area,
		first.VehicleNumber,
		first.TankerType,
		first.TransporterName,
		normalize.FormatDate(req.DateFrom) + normalize.RangeSeparator + normalize.FormatDate(req.DateTo),
		normalize.FormatKilometres(normalize.SumDistances(distances)),
		strconv.Itoa(trips),
	}}
}

func rowCells(seq int, row model.TripRecord) [8]string {
	return [8]string{
		strconv.Itoa(seq),
		row.Area,
		row.VehicleNumber,
		row.TankerType,
		row.TransporterName,
		row.ReportDate,
		row.TripDistance,
		strconv.Itoa(row.TripCount),
	}
}

func footerLine(req model.ReportRequest) string {
	return "Generated by :- " + req.GeneratedBy +
		", Report Generated At :- " + normalize.FormatDate(req.GeneratedAt) + " " + req.GeneratedAt.Format("15:04:05")
}

// headerGeometry is the first page header block: the logo and title on the
// left, the QR code and its caption on the right, both bottom aligned.
type headerGeometry struct {
	logoHeight  float64
	leftHeight  float64
	rightHeight float64
	height      float64
}

func newHeaderGeometry(logo *Logo) headerGeometry {
	h := logoWidth * float64(logo.Height) / float64(logo.Width)
	if h > logoMaxHeight {
		h = logoMaxHeight
	}
	g := headerGeometry{
		logoHeight:  h,
		leftHeight:  h + titleGap + titleHeight + logoBottomOffset,
		rightHeight: qrSize + captionHeight,
	}
	g.height = g.leftHeight
	if g.rightHeight > g.height {
		g.height = g.rightHeight
	}
	return g
}

// firstPageHeight grows the regular page by the header block and summary band.
func (g headerGeometry) firstPageHeight() float64 {
	return pageHeight + g.height + headerGap + bandHeight
}
