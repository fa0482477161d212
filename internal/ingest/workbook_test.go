package ingest_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fleetops/distance-report/internal/ingest"
)

func buildWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()

	file := excelize.NewFile()
	defer file.Close()

	require.NoError(t, file.SetSheetRow("Sheet1", "A1", &[]interface{}{"Area", "Vehicle No", "Report Date", "Trip Distance", "Trip Count"}))
	require.NoError(t, file.SetSheetRow("Sheet1", "A2", &[]interface{}{"North", "DL1AB1234", time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC), 12.5, 3}))

	_, err := file.NewSheet("August")
	require.NoError(t, err)
	require.NoError(t, file.SetSheetRow("August", "A1", &[]interface{}{"Area", "Vehicle No", "Report Date", "Trip Distance", "Trip Count"}))
	require.NoError(t, file.SetSheetRow("August", "A2", &[]interface{}{"South", "DL9ZZ0001", "02/08/2025", "7 km", "1"}))

	buf, err := file.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestDecode_xlsxReadsEverySheetWithRawDates(t *testing.T) {
	sheets, err := ingest.Decode("upload.xlsx", buildWorkbook(t))
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "Sheet1", sheets[0].Name)
	assert.Equal(t, "August", sheets[1].Name)

	result := ingest.NewIngester().Ingest(sheets)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "05-07-2025", result.Records[0].ReportDate)
	assert.Equal(t, "12.50 km", result.Records[0].TripDistance)
	assert.Equal(t, 3, result.Records[0].TripCount)
	assert.Equal(t, "02-08-2025", result.Records[1].ReportDate)
	assert.Equal(t, "7.00 km", result.Records[1].TripDistance)
}

func TestDecode_csv(t *testing.T) {
	body := "\ufeffVehicle No.,Report Date,Distance,Trips\n" +
		"DL1AB1234,05-07-2025,\"1,5 km\",2\n" +
		"DL1AB1234,06-07-2025,4 km\n"

	sheets, err := ingest.Decode("july.CSV", strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "july", sheets[0].Name)
	assert.Equal(t, "Vehicle No.", sheets[0].Rows[0][0])

	result := ingest.NewIngester().Ingest(sheets)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 2, result.Records[0].TripCount)
	assert.Equal(t, 0, result.Records[1].TripCount)
}

func TestDecode_unsupportedExtension(t *testing.T) {
	_, err := ingest.Decode("legacy.xls", strings.NewReader("whatever"))

	require.ErrorIs(t, err, ingest.ErrUnsupportedFormat)
}

func TestDecode_corruptWorkbook(t *testing.T) {
	_, err := ingest.Decode("broken.xlsx", strings.NewReader("not a zip"))

	require.Error(t, err)
}
